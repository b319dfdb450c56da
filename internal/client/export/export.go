// Package export renders a client's entries as a spreadsheet or CSV file.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName  = "Entries"
	DateLayout = "02/01/2006 15:04"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

var header = []string{"Date", "Description", "Cost"}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename builds "<client>_<YYYY-MM-DD>.<ext>" with every character of the
// client name that is not an ASCII letter or digit replaced by '_'.
func Filename(clientName string, now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", unsafeChars.ReplaceAllString(clientName, "_"), now.Format("2006-01-02"), ext)
}

// XLSX renders entries in the given order into a workbook with a single
// sheet titled after the client. Dates are shown in local time and costs
// are stored as numbers.
func XLSX(clientName string, entries []models.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Title: clientName, Subject: SheetName}); err != nil {
		return nil, err
	}
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "C1", bold); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []any{e.CreatedAt.Local().Format(DateLayout), e.Description, e.Cost.InexactFloat64()}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
		costCell, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellStyle(SheetName, costCell, costCell, money); err != nil {
			return nil, err
		}
	}

	for col, width := range map[string]float64{"A": 20, "B": 80, "C": 12} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("workbook writing error: %w", err)
	}
	return buf.Bytes(), nil
}

// CSV renders entries with the same columns as XLSX and costs fixed to two
// decimals.
func CSV(entries []models.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.CreatedAt.Local().Format(DateLayout), e.Description, e.Cost.StringFixed(2)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
