package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleEntries() []models.Entry {
	return []models.Entry{
		{ID: "e2", Description: "Follow-up call", Cost: decimal.RequireFromString("150.5"), CreatedAt: time.Date(2025, 3, 8, 14, 30, 0, 0, time.Local)},
		{ID: "e1", Description: "Consulting, day one", Cost: decimal.Zero, CreatedAt: time.Date(2025, 3, 7, 9, 5, 0, 0, time.Local)},
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name, client, ext, want string
	}{
		{"plain", "Acme", "xlsx", "Acme_2025-03-07.xlsx"},
		{"spaces and punctuation", "Acme S.p.A.", "xlsx", "Acme_S_p_A__2025-03-07.xlsx"},
		{"non ascii", "Caffè Roma", "csv", "Caff__Roma_2025-03-07.csv"},
		{"empty", "", "csv", "_2025-03-07.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.client, now, tt.ext))
		})
	}
}

func TestXLSX(t *testing.T) {
	b, err := XLSX("Acme & Co.", sampleEntries())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Acme & Co.", props.Title)

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Description", "Cost"}, rows[0])
	assert.Equal(t, []string{"08/03/2025 14:30", "Follow-up call", "150.5"}, rows[1])
	assert.Equal(t, []string{"07/03/2025 09:05", "Consulting, day one", "0"}, rows[2])

	w, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, 80.0, w)
}

func TestXLSX_Empty(t *testing.T) {
	b, err := XLSX("Acme", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "Description", "Cost"}}, rows)
}

func TestCSV(t *testing.T) {
	b, err := CSV(sampleEntries())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Description", "Cost"},
		{"08/03/2025 14:30", "Follow-up call", "150.50"},
		{"07/03/2025 09:05", "Consulting, day one", "0.00"},
	}, records)
}
