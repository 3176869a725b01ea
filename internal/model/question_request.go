package model

import (
	"strings"

	"github.com/google/uuid"
)

// QuestionPayload is the create payload for a question. JSON shape errors
// are caught at binding; all semantic rules (required substructures, length
// and range limits) are owned by the question validator so every violation
// is reported in one pass. questionTypes is always an array on the wire,
// even for a single type.
type QuestionPayload struct {
	BankID       *uuid.UUID `json:"bankId"`
	DepartmentID *string    `json:"departmentId"`

	QuestionTypes []string `json:"questionTypes" binding:"omitempty,dive,questiontype"`
	QuestionText  string   `json:"questionText"`
	Difficulty    string   `json:"difficulty"`
	Tags          []string `json:"tags"`
	Points        float64  `json:"points"`
	Explanation   *string  `json:"explanation"`

	Options         []Option       `json:"options"`
	CorrectAnswer   *string        `json:"correctAnswer"`
	AcceptedAnswers []string       `json:"acceptedAnswers"`
	SampleAnswer    *string        `json:"sampleAnswer"`
	MatchingPairs   []MatchingPair `json:"matchingPairs"`
	Distractors     []string       `json:"distractors"`
	Flashcard       *FlashcardData `json:"flashcardData"`
	Blanks          []Blank        `json:"blanks"`
}

// ToQuestion converts the payload to a candidate Question. The only error
// is a bad type set (empty, unknown type, duplicate); everything else is
// left for the validator to report as field violations.
func (p *QuestionPayload) ToQuestion() (*Question, error) {
	ts, err := ParseTypeSet(p.QuestionTypes)
	if err != nil {
		return nil, err
	}

	diff := Difficulty(p.Difficulty)
	if diff == "" {
		diff = DifficultyMedium
	}

	q := &Question{
		BankID:          p.BankID,
		DepartmentID:    p.DepartmentID,
		Types:           ts,
		QuestionText:    strings.TrimSpace(p.QuestionText),
		Difficulty:      diff,
		Tags:            p.Tags,
		Points:          p.Points,
		Explanation:     p.Explanation,
		Options:         p.Options,
		CorrectAnswer:   p.CorrectAnswer,
		AcceptedAnswers: p.AcceptedAnswers,
		SampleAnswer:    p.SampleAnswer,
		MatchingPairs:   p.MatchingPairs,
		Distractors:     p.Distractors,
		Flashcard:       p.Flashcard,
		Blanks:          p.Blanks,
	}

	// A true_false question with no options supplied gets the fixed pair up
	// front so the stored form always carries it.
	if ts.Has(QuestionTypeTrueFalse) && len(q.Options) == 0 {
		q.Options = trueFalseOptions(q.CorrectAnswer)
	}

	return q, nil
}

// QuestionUpdatePayload is the partial-update payload. Nil fields are left
// untouched; the merged result is re-validated as a whole, never the delta
// alone.
type QuestionUpdatePayload struct {
	BankID       *uuid.UUID `json:"bankId"`
	DepartmentID *string    `json:"departmentId"`

	QuestionTypes *[]string `json:"questionTypes"`
	QuestionText  *string   `json:"questionText"`
	Difficulty    *string   `json:"difficulty"`
	Tags          *[]string `json:"tags"`
	Points        *float64  `json:"points"`
	Explanation   *string   `json:"explanation"`

	Options         *[]Option       `json:"options"`
	CorrectAnswer   *string         `json:"correctAnswer"`
	AcceptedAnswers *[]string       `json:"acceptedAnswers"`
	SampleAnswer    *string         `json:"sampleAnswer"`
	MatchingPairs   *[]MatchingPair `json:"matchingPairs"`
	Distractors     *[]string       `json:"distractors"`
	Flashcard       *FlashcardData  `json:"flashcardData"`
	Blanks          *[]Blank        `json:"blanks"`
}

// ApplyTo merges the payload into q. Replacing the type set with an empty
// array fails with ErrNoTypes. Adding true_false through an update forces
// the fixed option pair the same way AddType does.
func (p *QuestionUpdatePayload) ApplyTo(q *Question) error {
	if p.QuestionTypes != nil {
		ts, err := ParseTypeSet(*p.QuestionTypes)
		if err != nil {
			return err
		}
		hadTrueFalse := q.Types.Has(QuestionTypeTrueFalse)
		q.Types = ts
		if !hadTrueFalse && ts.Has(QuestionTypeTrueFalse) && p.Options == nil {
			q.Options = trueFalseOptions(q.CorrectAnswer)
		}
	}
	if p.BankID != nil {
		q.BankID = p.BankID
	}
	if p.DepartmentID != nil {
		q.DepartmentID = p.DepartmentID
	}
	if p.QuestionText != nil {
		q.QuestionText = strings.TrimSpace(*p.QuestionText)
	}
	if p.Difficulty != nil {
		q.Difficulty = Difficulty(*p.Difficulty)
	}
	if p.Tags != nil {
		q.Tags = *p.Tags
	}
	if p.Points != nil {
		q.Points = *p.Points
	}
	if p.Explanation != nil {
		q.Explanation = p.Explanation
	}
	if p.Options != nil {
		q.Options = *p.Options
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = p.CorrectAnswer
	}
	if p.AcceptedAnswers != nil {
		q.AcceptedAnswers = *p.AcceptedAnswers
	}
	if p.SampleAnswer != nil {
		q.SampleAnswer = p.SampleAnswer
	}
	if p.MatchingPairs != nil {
		q.MatchingPairs = *p.MatchingPairs
	}
	if p.Distractors != nil {
		q.Distractors = *p.Distractors
	}
	if p.Flashcard != nil {
		q.Flashcard = p.Flashcard
	}
	if p.Blanks != nil {
		q.Blanks = *p.Blanks
	}
	return nil
}
