package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"factory-monitor/internal/model"
)

func TestNewRegistry(t *testing.T) {
	t.Run("with nil timezone uses default", func(t *testing.T) {
		r := NewRegistry(nil, "")

		if r == nil {
			t.Fatal("expected non-nil registry")
		}
		if len(r.writers) != 2 {
			t.Errorf("expected 2 writers, got %d", len(r.writers))
		}
		if _, ok := r.writers["excel"]; !ok {
			t.Error("expected excel writer to be registered")
		}
		if _, ok := r.writers["html"]; !ok {
			t.Error("expected html writer to be registered")
		}
		if r.timezone != time.UTC {
			t.Errorf("expected UTC, got %v", r.timezone)
		}
	})

	t.Run("with custom timezone", func(t *testing.T) {
		tz, _ := time.LoadLocation("America/New_York")
		r := NewRegistry(tz, "")

		if len(r.writers) != 2 {
			t.Errorf("expected 2 writers, got %d", len(r.writers))
		}
	})
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil, "")

	for _, format := range []string{"excel", "Excel", " HTML "} {
		w, err := r.Get(format)
		if err != nil {
			t.Errorf("Get(%q) error = %v", format, err)
			continue
		}
		if w.Format() != strings.ToLower(strings.TrimSpace(format)) {
			t.Errorf("Get(%q).Format() = %s", format, w.Format())
		}
	}

	_, err := r.Get("pdf")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "excel, html") {
		t.Errorf("error should list supported formats, got %v", err)
	}
}

func TestRegistry_GetAllAndHas(t *testing.T) {
	r := NewRegistry(nil, "")

	all := r.GetAll()
	if len(all) != 2 || all[0] != "excel" || all[1] != "html" {
		t.Errorf("GetAll() = %v, want [excel html]", all)
	}
	if !r.Has("HTML") {
		t.Error("Has(HTML) should be true")
	}
	if r.Has("csv") {
		t.Error("Has(csv) should be false")
	}
}

func TestRegistry_Filename(t *testing.T) {
	r := NewRegistry(time.UTC, "")
	snap := &model.BroadcastSnapshot{Tick: 12, GeneratedAt: time.Date(2024, 3, 1, 10, 30, 5, 0, time.UTC)}

	name, err := r.Filename("", snap)
	if err != nil {
		t.Fatalf("Filename() error = %v", err)
	}
	if name != "factory_report_20240301" {
		t.Errorf("Filename() = %s", name)
	}

	name, err = r.Filename("snap_{{.Date}}_{{.Time}}_{{.Tick}}", snap)
	if err != nil {
		t.Fatalf("Filename() error = %v", err)
	}
	if name != "snap_20240301_103005_12" {
		t.Errorf("Filename() = %s", name)
	}

	if _, err := r.Filename("{{.Date", snap); err == nil {
		t.Error("expected error for malformed template")
	}
}

func TestRegistry_WriteAll(t *testing.T) {
	r := NewRegistry(time.UTC, "")
	dir := filepath.Join(t.TempDir(), "out")
	snap := &model.BroadcastSnapshot{
		Type:        model.SnapshotMessageType,
		Tick:        1,
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	paths, err := r.WriteAll(snap, []string{"excel", "html"}, dir, "report_{{.Tick}}")
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("WriteAll() wrote %d files, want 2", len(paths))
	}
	for _, want := range []string{"report_1.xlsx", "report_1.html"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("expected %s to exist: %v", want, err)
		}
	}

	if _, err := r.WriteAll(nil, []string{"html"}, dir, ""); err == nil {
		t.Error("expected error for nil snapshot")
	}
	if _, err := r.WriteAll(snap, []string{"pdf"}, dir, ""); err == nil {
		t.Error("expected error for unsupported format")
	}
}
