package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/classbridge/qbank-backend/internal/model"
)

// csvHeader is the expected CSV import header. Column order is fixed so
// spreadsheets exported by the console round-trip without a mapping step.
var csvHeader = []string{
	"question_type", "question_text", "difficulty", "points",
	"options", "correct_answers", "explanation", "tags",
}

// ParseCSVRows reads the CSV import format into bulk import rows. The CSV
// surface covers the simple types (choice, true/false, short and long
// answer); structured types go through the JSON format. Cell-level problems
// such as unparseable points are left for per-row validation to report, so
// one bad cell does not reject the file. Only a structurally malformed CSV
// fails the whole parse.
func ParseCSVRows(r io.Reader) ([]model.BulkImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, err
	}
	if err := checkCSVHeader(header); err != nil {
		return nil, err
	}

	var rows []model.BulkImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, csvRecordToRow(record))
	}
	return rows, nil
}

func checkCSVHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("csv header must have %d columns, got %d", len(csvHeader), len(header))
	}
	for i, want := range csvHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return fmt.Errorf("csv header column %d must be %q", i+1, want)
		}
	}
	return nil
}

func csvRecordToRow(record []string) model.BulkImportRow {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	row := model.BulkImportRow{
		QuestionType: cell(0),
		QuestionText: cell(1),
		Difficulty:   cell(2),
		Tags:         splitList(cell(7)),
	}

	// An unparseable points cell stays zero and is reported by the row's
	// validation instead of failing the file.
	if pts, err := strconv.ParseFloat(cell(3), 64); err == nil {
		row.Points = pts
	}

	if expl := cell(6); expl != "" {
		row.Explanation = &expl
	}

	options := splitList(cell(4))
	answers := splitList(cell(5))

	qType, _ := model.NormalizeQuestionType(row.QuestionType)
	switch qType {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeMultipleSelect:
		row.Options = buildOptions(options, answers)
	case model.QuestionTypeTrueFalse:
		if len(answers) > 0 {
			row.CorrectAnswer = &answers[0]
		}
	case model.QuestionTypeLongAnswer:
		if len(answers) > 0 {
			sample := strings.Join(answers, "\n")
			row.SampleAnswer = &sample
		}
	default:
		// short_answer and anything else textual.
		row.AcceptedAnswers = answers
	}

	return row
}

// splitList splits a pipe-separated cell into trimmed non-empty parts.
func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func buildOptions(texts, correct []string) []model.Option {
	correctSet := make(map[string]struct{}, len(correct))
	for _, c := range correct {
		correctSet[c] = struct{}{}
	}
	options := make([]model.Option, 0, len(texts))
	for _, t := range texts {
		_, isCorrect := correctSet[t]
		options = append(options, model.Option{Text: t, IsCorrect: isCorrect})
	}
	return options
}
