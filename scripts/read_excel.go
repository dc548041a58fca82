//go:build ignore
// +build ignore

// This script reads and displays the contents of an Excel report for verification.
// Run after scripts/verify_excel.go: go run scripts/read_excel.go [path]
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

func main() {
	path := "sample_factory_report.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}

		fmt.Println()
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  %s (%d rows)\n", sheet, len(rows))
		fmt.Println("═══════════════════════════════════════")

		for i, row := range rows {
			if i >= 12 {
				fmt.Printf("  ... %d more rows\n", len(rows)-i)
				break
			}
			fmt.Println("  " + strings.Join(row, " | "))
		}
	}
}
