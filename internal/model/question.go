package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionType is one presentation format a question supports.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeMultipleSelect QuestionType = "multiple_select"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeLongAnswer     QuestionType = "long_answer"
	QuestionTypeMatching       QuestionType = "matching"
	QuestionTypeFlashcard      QuestionType = "flashcard"
	QuestionTypeFillInBlank    QuestionType = "fill_in_blank"
)

// legacyTypeAliases maps type names still produced by older import tooling
// to their canonical counterparts.
var legacyTypeAliases = map[string]QuestionType{
	"essay":      QuestionTypeLongAnswer,
	"fill_blank": QuestionTypeFillInBlank,
}

// NormalizeQuestionType resolves a raw type string (canonical or legacy
// alias) to a canonical QuestionType. The second return is false when the
// string names no known type.
func NormalizeQuestionType(raw string) (QuestionType, bool) {
	if t, ok := legacyTypeAliases[raw]; ok {
		return t, true
	}
	t := QuestionType(raw)
	if _, ok := typeCapabilities[t]; ok {
		return t, true
	}
	return "", false
}

// Option texts forced onto a question while true_false is among its types.
const (
	TrueOptionText  = "True"
	FalseOptionText = "False"
)

// Difficulty classifies how hard a question is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Option is a single selectable answer option.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// MatchingPair is one left/right pairing for matching questions.
type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// FlashcardData holds the flashcard presentation of a question.
type FlashcardData struct {
	Prompts    []string `json:"prompts,omitempty"`
	FrontMedia string   `json:"frontMedia,omitempty"`
	BackMedia  string   `json:"backMedia,omitempty"`
}

// Blank describes one gap in a fill-in-blank question.
type Blank struct {
	Position        int      `json:"position"`
	AcceptedAnswers []string `json:"acceptedAnswers"`
}

// Question is the central question-bank entity. Its type set decides which
// of the type-specific substructures must be populated; the canonical
// correct answer is always derived from those substructures, never stored.
type Question struct {
	ID           uuid.UUID  `json:"id"`
	DepartmentID *string    `json:"departmentId"`
	BankID       *uuid.UUID `json:"bankId"`

	Types        TypeSet    `json:"questionTypes"`
	QuestionText string     `json:"questionText"`
	Difficulty   Difficulty `json:"difficulty"`
	Tags         []string   `json:"tags,omitempty"`
	Points       float64    `json:"points"`
	Explanation  *string    `json:"explanation"`

	Options         []Option       `json:"options,omitempty"`
	CorrectAnswer   *string        `json:"correctAnswer,omitempty"`
	AcceptedAnswers []string       `json:"acceptedAnswers,omitempty"`
	SampleAnswer    *string        `json:"sampleAnswer,omitempty"`
	MatchingPairs   []MatchingPair `json:"matchingPairs,omitempty"`
	Distractors     []string       `json:"distractors,omitempty"`
	Flashcard       *FlashcardData `json:"flashcardData,omitempty"`
	Blanks          []Blank        `json:"blanks,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddType adds a presentation type to the question. Adding true_false
// replaces the option list with the fixed True/False pair; the correct flag
// follows the scalar correctAnswer when it names one of the two literals.
func (q *Question) AddType(t QuestionType) error {
	ts, err := q.Types.Add(t)
	if err != nil {
		return err
	}
	q.Types = ts

	if t == QuestionTypeTrueFalse {
		q.Options = trueFalseOptions(q.CorrectAnswer)
	}
	return nil
}

// RemoveType removes a presentation type. The last remaining type cannot be
// removed. Removing true_false releases the True/False option constraint but
// does not resurrect whatever options the pair replaced.
func (q *Question) RemoveType(t QuestionType) error {
	ts, err := q.Types.Remove(t)
	if err != nil {
		return err
	}
	q.Types = ts
	return nil
}

func trueFalseOptions(correct *string) []Option {
	trueCorrect := true
	if correct != nil && *correct == FalseOptionText {
		trueCorrect = false
	}
	return []Option{
		{Text: TrueOptionText, IsCorrect: trueCorrect},
		{Text: FalseOptionText, IsCorrect: !trueCorrect},
	}
}

// Answer is the canonical correct answer: a scalar, a list, or null
// (manually graded). It marshals to a JSON string, array, or null.
type Answer struct {
	Values []string
	Single bool
}

// IsNull reports whether no stored answer exists.
func (a Answer) IsNull() bool {
	return len(a.Values) == 0
}

// Primary returns the answer used for flashcard back-face display.
func (a Answer) Primary() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsNull() {
		return []byte("null"), nil
	}
	if a.Single && len(a.Values) == 1 {
		return json.Marshal(a.Values[0])
	}
	return json.Marshal(a.Values)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Answer{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer{Values: []string{s}, Single: true}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("answer must be a string, string array, or null")
	}
	*a = Answer{Values: list}
	return nil
}
