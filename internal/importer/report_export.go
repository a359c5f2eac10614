package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/quizforge/scorm-engine/internal/results"
)

// ExportReportToExcel renders an attempt report as a workbook: a summary block
// followed by one row per topic.
func (im *Importer) ExportReportToExcel(report *results.Report) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	summary := [][]interface{}{
		{"Test", report.Title},
		{"Completed", report.CompletedAt.Format("2006-01-02 15:04:05")},
		{"Score", fmt.Sprintf("%.1f / %d", report.EarnedPoints, report.PossiblePoints)},
		{"Percent", fmt.Sprintf("%.1f%%", report.Percent)},
		{"Fully Correct", report.FullyCorrect},
		{"Passed", report.Passed},
		{"Time Expired", report.TimeExpired},
	}
	for rowIndex, pair := range summary {
		for colIndex, value := range pair {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	headerRow := len(summary) + 2
	headers := []string{"Topic", "Fully Correct", "Earned", "Possible", "Percent", "Passed"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, headerRow)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, topic := range report.Topics {
		passed := "n/a"
		if topic.Passed != nil {
			passed = fmt.Sprintf("%t", *topic.Passed)
		}
		values := []interface{}{
			topic.Name,
			topic.FullyCorrect,
			topic.EarnedPoints,
			topic.PossiblePoints,
			fmt.Sprintf("%.1f%%", topic.Percent),
			passed,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, headerRow+1+rowIndex)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
