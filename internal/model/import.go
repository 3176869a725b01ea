package model

import "strings"

// BulkImportRow is one element of an import batch. It carries the Question
// attribute bag minus identity, plus a single legacy questionType scalar for
// compatibility with older import tooling; the scalar is wrapped into a
// one-element type set during reconciliation.
type BulkImportRow struct {
	QuestionType string   `json:"questionType"`
	QuestionText string   `json:"questionText"`
	Difficulty   string   `json:"difficulty"`
	Tags         []string `json:"tags"`
	Points       float64  `json:"points"`
	Explanation  *string  `json:"explanation"`

	Options         []Option       `json:"options"`
	CorrectAnswer   *string        `json:"correctAnswer"`
	AcceptedAnswers []string       `json:"acceptedAnswers"`
	SampleAnswer    *string        `json:"sampleAnswer"`
	MatchingPairs   []MatchingPair `json:"matchingPairs"`
	Distractors     []string       `json:"distractors"`
	Flashcard       *FlashcardData `json:"flashcardData"`
	Blanks          []Blank        `json:"blanks"`
}

// ToPayload lifts the legacy single-type row into the live multi-type
// payload shape.
func (r *BulkImportRow) ToPayload(department *string) *QuestionPayload {
	return &QuestionPayload{
		DepartmentID:    department,
		QuestionTypes:   []string{r.QuestionType},
		QuestionText:    r.QuestionText,
		Difficulty:      r.Difficulty,
		Tags:            r.Tags,
		Points:          r.Points,
		Explanation:     r.Explanation,
		Options:         r.Options,
		CorrectAnswer:   r.CorrectAnswer,
		AcceptedAnswers: r.AcceptedAnswers,
		SampleAnswer:    r.SampleAnswer,
		MatchingPairs:   r.MatchingPairs,
		Distractors:     r.Distractors,
		Flashcard:       r.Flashcard,
		Blanks:          r.Blanks,
	}
}

// Import formats accepted by the bulk endpoint.
const (
	ImportFormatJSON = "json"
	ImportFormatCSV  = "csv"
)

// BulkImportRequest is the bulk import payload. For format "csv" the rows
// are parsed out of CSVData instead of Questions.
type BulkImportRequest struct {
	Format            string          `json:"format" binding:"required,oneof=json csv"`
	Questions         []BulkImportRow `json:"questions"`
	CSVData           string          `json:"csvData,omitempty"`
	Department        *string         `json:"department,omitempty"`
	OverwriteExisting bool            `json:"overwriteExisting,omitempty"`
}

// ImportStatus is the per-row outcome status.
type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusError   ImportStatus = "error"
)

// BulkImportResultItem is one per-row result, positionally aligned with the
// input batch. Index matches the array position and is authoritative.
type BulkImportResultItem struct {
	Index      int          `json:"index"`
	Status     ImportStatus `json:"status"`
	QuestionID *string      `json:"questionId"`
	Error      *string      `json:"error"`
}

// ImportOutcome pairs a result item with whether the row updated an
// existing question rather than creating one. Only the fold below consumes
// the distinction.
type ImportOutcome struct {
	Item    BulkImportResultItem
	Updated bool
}

// BulkImportResponse is the aggregate import response. The counters are
// derived from Results and never maintained independently, so
// imported+failed+updated always equals len(Results).
type BulkImportResponse struct {
	Imported int                    `json:"imported"`
	Failed   int                    `json:"failed"`
	Updated  int                    `json:"updated"`
	Results  []BulkImportResultItem `json:"results"`
}

// BuildImportResponse folds per-row outcomes into the aggregate response.
func BuildImportResponse(outcomes []ImportOutcome) BulkImportResponse {
	resp := BulkImportResponse{Results: make([]BulkImportResultItem, 0, len(outcomes))}
	for _, o := range outcomes {
		resp.Results = append(resp.Results, o.Item)
		switch {
		case o.Item.Status == ImportStatusError:
			resp.Failed++
		case o.Updated:
			resp.Updated++
		default:
			resp.Imported++
		}
	}
	return resp
}

// ImportDedupeKey is the in-batch duplicate-detection key for a row: the
// trimmed question text. Two rows with equal keys are reconciled against
// the same question.
func ImportDedupeKey(text string) string {
	return strings.TrimSpace(text)
}
