package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"factory-monitor/internal/model"
)

func TestPrintStatus(t *testing.T) {
	snap := &model.BroadcastSnapshot{
		Tick:        9,
		GeneratedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Overall:     model.OverallMetrics{TotalOutput: 900, OverallOEE: 66.6, ActiveLines: 2, TotalLines: 3},
		Lines: []model.ProductionLine{
			{ID: "LINE-A1", Status: model.LineStatusRunning, CurrentSpeed: 118, Efficiency: 98.3, ProductsProduced: 600},
		},
		AlertCounts: model.AlertCounts{Critical: 1, Warning: 2},
	}

	var buf bytes.Buffer
	printStatus(&buf, snap)
	out := buf.String()

	for _, want := range []string{"Tick 9 at 2024-03-01 08:00:00", "66.6%", "2/3", "1 critical, 2 warning", "LINE-A1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintAlerts(t *testing.T) {
	var buf bytes.Buffer
	printAlerts(&buf, nil)
	if buf.String() != "No alerts\n" {
		t.Errorf("printAlerts(nil) = %q", buf.String())
	}

	buf.Reset()
	printAlerts(&buf, []model.Alert{{
		ID: "ALT-00003", LineID: "LINE-B1", Severity: model.SeverityWarning,
		Status: model.AlertStateOpen, Message: "Packaging Line B1: vibration high",
	}})
	if !strings.Contains(buf.String(), "ALT-00003") || !strings.Contains(buf.String(), "vibration high") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	setupLogger("verbose", "json")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level = %v, want info", zerolog.GlobalLevel())
	}

	setupLogger("debug", "console")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("global level = %v, want debug", zerolog.GlobalLevel())
	}
}
