package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/validator"
)

// Importer builds a runnable test definition from an authored spreadsheet.
// One row per question; rows sharing a section id form that section's pool.
type Importer struct {
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImporter(logger *slog.Logger) *Importer {
	return &Importer{
		logger:    logger,
		validator: validator.New(),
	}
}

// RowError describes one rejected spreadsheet row.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Message)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	TotalRows    int        `json:"total_rows"`
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Errors       []RowError `json:"errors,omitempty"`
	Test         *models.Test
}

var requiredColumns = []string{"section_id", "section_name", "question_id", "question_type", "prompt", "correct"}

// ImportTestFromFile dispatches on the file extension.
func (im *Importer) ImportTestFromFile(reader io.Reader, filename string) (*ImportResult, error) {
	im.logger.Info("Starting test import", "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return im.ImportTestFromCSV(reader)
	case ".xlsx", ".xls":
		return im.ImportTestFromExcel(reader)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func (im *Importer) ImportTestFromCSV(reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return im.buildTest(records)
}

func (im *Importer) ImportTestFromExcel(reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return im.buildTest(rows)
}

func (im *Importer) buildTest(records [][]string) (*ImportResult, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("file must have header row and at least one data row")
	}

	headerMap := make(map[string]int)
	for i, header := range records[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	result := &ImportResult{TotalRows: len(records) - 1}

	test := &models.Test{
		ID:    "imported",
		Title: "Imported Test",
	}
	sections := make(map[string]*models.Section)

	for rowIndex, record := range records[1:] {
		rowNum := rowIndex + 2
		question, sectionID, sectionName, drawCount, rowErr := im.parseRow(record, headerMap, rowNum)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			result.ErrorCount++
			continue
		}

		section, ok := sections[sectionID]
		if !ok {
			section = &models.Section{ID: sectionID, Name: sectionName, DrawCount: drawCount}
			sections[sectionID] = section
			test.Sections = append(test.Sections, section)
		}
		section.Questions = append(section.Questions, question)
		result.SuccessCount++
	}

	// Sections with no explicit draw count use their whole pool.
	for _, section := range test.Sections {
		if section.DrawCount == 0 {
			section.DrawCount = len(section.Questions)
		}
	}

	if len(test.Sections) > 0 {
		if err := im.validator.ValidateTest(test); err != nil {
			return nil, fmt.Errorf("imported test failed validation: %w", err)
		}
	}

	result.Test = test
	im.logger.Info("Import completed",
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)
	return result, nil
}

func (im *Importer) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, string, string, int, *RowError) {
	get := func(col string) string {
		idx, ok := headerMap[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	sectionID := get("section_id")
	if sectionID == "" {
		return nil, "", "", 0, &RowError{Row: rowNum, Field: "section_id", Message: "is required"}
	}
	drawCount := 0
	if raw := get("draw_count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, "", "", 0, &RowError{Row: rowNum, Field: "draw_count", Message: "must be a positive integer"}
		}
		drawCount = parsed
	}

	q := &models.Question{
		ID:     get("question_id"),
		Type:   models.QuestionType(get("question_type")),
		Prompt: get("prompt"),
		Points: 1,
	}
	if q.ID == "" || q.Prompt == "" {
		return nil, "", "", 0, &RowError{Row: rowNum, Field: "question_id", Message: "id and prompt are required"}
	}
	if raw := get("points"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, "", "", 0, &RowError{Row: rowNum, Field: "points", Message: "must be a positive integer"}
		}
		q.Points = parsed
	}

	options := splitList(get("options"))
	correct := get("correct")

	switch q.Type {
	case models.SingleChoice:
		idx, err := strconv.Atoi(correct)
		if err != nil {
			return nil, "", "", 0, &RowError{Row: rowNum, Field: "correct", Message: "must be an option index"}
		}
		q.Single = &models.SingleChoiceContent{Options: options, CorrectIndex: idx}
	case models.MultipleChoice:
		indexes, err := parseIndexes(correct)
		if err != nil {
			return nil, "", "", 0, &RowError{Row: rowNum, Field: "correct", Message: err.Error()}
		}
		q.Multiple = &models.MultipleChoiceContent{Options: options, CorrectIndexes: indexes}
	case models.Matching:
		pairs, err := parsePairs(correct)
		if err != nil {
			return nil, "", "", 0, &RowError{Row: rowNum, Field: "correct", Message: err.Error()}
		}
		q.Matching = &models.MatchingContent{
			LeftItems:    splitList(get("left_items")),
			RightItems:   splitList(get("right_items")),
			CorrectPairs: pairs,
		}
	case models.Ranking:
		order, err := parseIndexes(correct)
		if err != nil {
			return nil, "", "", 0, &RowError{Row: rowNum, Field: "correct", Message: err.Error()}
		}
		q.Ranking = &models.RankingContent{Items: options, CorrectOrder: order}
	default:
		return nil, "", "", 0, &RowError{Row: rowNum, Field: "question_type", Message: fmt.Sprintf("unknown type %q", q.Type)}
	}

	return q, sectionID, get("section_name"), drawCount, nil
}

// splitList splits a pipe separated cell into trimmed items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		items = append(items, strings.TrimSpace(part))
	}
	return items
}

// parseIndexes parses a semicolon separated index list such as "0;2".
func parseIndexes(raw string) ([]int, error) {
	if raw == "" {
		return nil, fmt.Errorf("must list at least one index")
	}
	parts := strings.Split(raw, ";")
	indexes := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// parsePairs parses "left:right" pairs separated by semicolons, e.g. "0:1;1:0".
func parsePairs(raw string) ([]models.MatchPair, error) {
	if raw == "" {
		return nil, fmt.Errorf("must list at least one pair")
	}
	parts := strings.Split(raw, ";")
	pairs := make([]models.MatchPair, 0, len(parts))
	for _, part := range parts {
		left, right, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			return nil, fmt.Errorf("invalid pair %q", part)
		}
		l, err := strconv.Atoi(left)
		if err != nil {
			return nil, fmt.Errorf("invalid pair %q", part)
		}
		r, err := strconv.Atoi(right)
		if err != nil {
			return nil, fmt.Errorf("invalid pair %q", part)
		}
		pairs = append(pairs, models.MatchPair{Left: l, Right: r})
	}
	return pairs, nil
}

// ExportTestToCSV writes the question pools back out in the import schema.
func (im *Importer) ExportTestToCSV(test *models.Test) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{
		"section_id", "section_name", "draw_count", "question_id",
		"question_type", "prompt", "points", "options", "correct",
		"left_items", "right_items",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, section := range test.Sections {
		for _, question := range section.Questions {
			if err := writer.Write(questionRow(section, question)); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func questionRow(section *models.Section, q *models.Question) []string {
	row := []string{
		section.ID,
		section.Name,
		strconv.Itoa(section.DrawCount),
		q.ID,
		string(q.Type),
		q.Prompt,
		strconv.Itoa(q.Points),
	}

	switch q.Type {
	case models.SingleChoice:
		row = append(row, joinList(q.Single.Options), strconv.Itoa(q.Single.CorrectIndex), "", "")
	case models.MultipleChoice:
		row = append(row, joinList(q.Multiple.Options), joinIndexes(q.Multiple.CorrectIndexes), "", "")
	case models.Matching:
		row = append(row, "", joinPairs(q.Matching.CorrectPairs),
			joinList(q.Matching.LeftItems), joinList(q.Matching.RightItems))
	case models.Ranking:
		row = append(row, joinList(q.Ranking.Items), joinIndexes(q.Ranking.CorrectOrder), "", "")
	}
	return row
}

func joinList(items []string) string {
	return strings.Join(items, "|")
}

func joinIndexes(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ";")
}

func joinPairs(pairs []models.MatchPair) string {
	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = fmt.Sprintf("%d:%d", pair.Left, pair.Right)
	}
	return strings.Join(parts, ";")
}
