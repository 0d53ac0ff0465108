package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Reading Group A",
		Headers: []string{"Date", "Time", "Conflicts"},
		Rows: []map[string]string{
			{"Date": "2024-01-08", "Time": "09:00-09:30"},
			{"Date": "2024-01-15", "Time": "09:00-09:30", "Conflicts": "grade 2 Lunch (11:30-12:00)"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Date,Time,Conflicts\n2024-01-08,09:00-09:30,\n2024-01-15,09:00-09:30,grade 2 Lunch (11:30-12:00)\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	for _, r := range []Renderer{NewCSVExporter(), NewPDFExporter(), NewXLSXExporter()} {
		_, err := r.Render(Dataset{})
		assert.Error(t, err, r.Extension())
	}
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(xlsxSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Reading Group A", title)

	header, err := f.GetCellValue(xlsxSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Conflicts", header)

	conflict, err := f.GetCellValue(xlsxSheet, "C4")
	require.NoError(t, err)
	assert.Equal(t, "grade 2 Lunch (11:30-12:00)", conflict)
}

func TestColumnWidths(t *testing.T) {
	assert.Equal(t, []float64{100}, columnWidths(1, 100))
	assert.Equal(t, []float64{25, 25, 50}, columnWidths(3, 100))
}
