package importer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/quizforge/scorm-engine/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var sampleRows = [][]string{
	{"section_id", "section_name", "draw_count", "question_id", "question_type", "prompt", "points", "options", "correct", "left_items", "right_items"},
	{"geo", "Geography", "2", "g1", "single", "Capital of France?", "1", "Paris|London|Berlin", "0", "", ""},
	{"geo", "Geography", "2", "g2", "multiple", "EU members?", "2", "France|Norway|Spain", "0;2", "", ""},
	{"geo", "Geography", "2", "g3", "ranking", "Order by size", "1", "Malta|France|Spain", "1;2;0", "", ""},
	{"hist", "History", "", "h1", "matching", "Match events", "3", "", "0:1;1:0", "WW1|WW2", "1939|1914"},
}

func rowsToCSV(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func rowsToXLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func assertSampleTest(t *testing.T, result *ImportResult) {
	t.Helper()
	require.NotNil(t, result.Test)
	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 4, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)

	require.Len(t, result.Test.Sections, 2)

	geo := result.Test.Sections[0]
	assert.Equal(t, "geo", geo.ID)
	assert.Equal(t, "Geography", geo.Name)
	assert.Equal(t, 2, geo.DrawCount)
	require.Len(t, geo.Questions, 3)

	single := geo.Questions[0]
	assert.Equal(t, models.SingleChoice, single.Type)
	assert.Equal(t, []string{"Paris", "London", "Berlin"}, single.Single.Options)
	assert.Equal(t, 0, single.Single.CorrectIndex)

	multiple := geo.Questions[1]
	assert.Equal(t, 2, multiple.Points)
	assert.Equal(t, []int{0, 2}, multiple.Multiple.CorrectIndexes)

	ranking := geo.Questions[2]
	assert.Equal(t, []int{1, 2, 0}, ranking.Ranking.CorrectOrder)

	hist := result.Test.Sections[1]
	// A blank draw count takes the whole pool.
	assert.Equal(t, 1, hist.DrawCount)
	matching := hist.Questions[0]
	assert.Equal(t, []string{"WW1", "WW2"}, matching.Matching.LeftItems)
	assert.Equal(t, []models.MatchPair{{Left: 0, Right: 1}, {Left: 1, Right: 0}}, matching.Matching.CorrectPairs)
}

func TestImportTestFromCSV(t *testing.T) {
	im := NewImporter(testLogger())

	result, err := im.ImportTestFromFile(strings.NewReader(rowsToCSV(sampleRows)), "pool.csv")
	require.NoError(t, err)
	assertSampleTest(t, result)
}

func TestImportTestFromExcel(t *testing.T) {
	im := NewImporter(testLogger())

	data := rowsToXLSX(t, sampleRows)
	result, err := im.ImportTestFromFile(bytes.NewReader(data), "pool.xlsx")
	require.NoError(t, err)
	assertSampleTest(t, result)
}

func TestImport_RejectsUnsupportedExtension(t *testing.T) {
	im := NewImporter(testLogger())
	_, err := im.ImportTestFromFile(strings.NewReader(""), "pool.pdf")
	assert.Error(t, err)
}

func TestImport_MissingRequiredColumn(t *testing.T) {
	im := NewImporter(testLogger())
	csv := "section_id,prompt\ngeo,hello\n"
	_, err := im.ImportTestFromCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestImport_BadRowsAreCollected(t *testing.T) {
	rows := [][]string{
		sampleRows[0],
		{"geo", "Geography", "1", "g1", "single", "ok?", "1", "a|b", "0", "", ""},
		{"geo", "Geography", "1", "g2", "single", "bad index", "1", "a|b", "x", "", ""},
		{"geo", "Geography", "1", "g3", "teleport", "bad type", "1", "a|b", "0", "", ""},
	}
	im := NewImporter(testLogger())

	result, err := im.ImportTestFromCSV(strings.NewReader(rowsToCSV(rows)))
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "correct", result.Errors[0].Field)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "question_type", result.Errors[1].Field)
}

func TestImport_ValidationRejectsBadReferences(t *testing.T) {
	rows := [][]string{
		sampleRows[0],
		// Correct index out of range for the option list.
		{"geo", "Geography", "1", "g1", "single", "oops", "1", "a|b", "5", "", ""},
	}
	im := NewImporter(testLogger())

	_, err := im.ImportTestFromCSV(strings.NewReader(rowsToCSV(rows)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestExportTestToCSV_RoundTrips(t *testing.T) {
	im := NewImporter(testLogger())

	imported, err := im.ImportTestFromCSV(strings.NewReader(rowsToCSV(sampleRows)))
	require.NoError(t, err)

	exported, err := im.ExportTestToCSV(imported.Test)
	require.NoError(t, err)

	again, err := im.ImportTestFromCSV(bytes.NewReader(exported))
	require.NoError(t, err)

	assert.Equal(t, imported.Test.Sections[0].Questions[0].Single, again.Test.Sections[0].Questions[0].Single)
	assert.Equal(t, imported.Test.Sections[1].Questions[0].Matching, again.Test.Sections[1].Questions[0].Matching)
}
