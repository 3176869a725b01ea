package service

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/classbridge/qbank-backend/internal/model"
)

// Field limits for a question payload.
const (
	MaxQuestionTextLen = 2000
	MaxExplanationLen  = 1000
	MaxOptionTextLen   = 500
	MinPoints          = 0.1
)

// FieldViolation is a single named, field-addressable validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full violation list for a rejected payload so
// a UI can show every failing field at once. It is recoverable: the caller
// fixes the payload and resubmits.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e.Violations[0].Message)
}

// First returns the first violation's message, used for per-row bulk import
// error reporting.
func (e *ValidationError) First() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return e.Violations[0].Message
}

// FieldMap projects the violations into the response envelope's field map.
func (e *ValidationError) FieldMap() map[string]string {
	fields := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		if _, taken := fields[v.Field]; !taken {
			fields[v.Field] = v.Message
		}
	}
	return fields
}

// NormalizeQuestion puts a question into its canonical stored form: outer
// whitespace trimmed, empty accepted answers and tags dropped, substructures
// no selected type requires cleared, and the scalar correctAnswer cleared
// whenever an option-based type is active (there it is a projection of the
// option flags, never a second source of truth). Normalizing twice is a
// no-op.
func NormalizeQuestion(q *model.Question) {
	q.QuestionText = strings.TrimSpace(q.QuestionText)

	caps := q.Types.Capabilities()

	// A substructure exists only while a selected type requires it; removing
	// the type removes the data, so answer derivation can never read a
	// leftover. Options and accepted answers also serve flashcard, whose
	// back face reads from either.
	if !caps.NeedsOptions && !caps.NeedsFlashcard {
		q.Options = nil
	}
	if !caps.NeedsAcceptedAnswers && !caps.NeedsFlashcard {
		q.AcceptedAnswers = nil
	}
	if !caps.NeedsMatchingPairs {
		q.MatchingPairs = nil
		q.Distractors = nil
	}
	if !caps.NeedsSampleAnswer {
		q.SampleAnswer = nil
	}
	if !caps.NeedsFlashcard {
		q.Flashcard = nil
	}
	if !caps.NeedsBlanks {
		q.Blanks = nil
	}
	if q.Types.HasOptionBased() || !caps.NeedsCorrectAnswer {
		q.CorrectAnswer = nil
	}

	for i := range q.Options {
		q.Options[i].Text = strings.TrimSpace(q.Options[i].Text)
	}
	for i := range q.MatchingPairs {
		q.MatchingPairs[i].Left = strings.TrimSpace(q.MatchingPairs[i].Left)
		q.MatchingPairs[i].Right = strings.TrimSpace(q.MatchingPairs[i].Right)
	}

	q.AcceptedAnswers = trimNonEmpty(q.AcceptedAnswers)
	q.Tags = dedupeTags(q.Tags)

	for i := range q.Blanks {
		q.Blanks[i].AcceptedAnswers = trimNonEmpty(q.Blanks[i].AcceptedAnswers)
	}
}

// ValidateQuestion normalizes q in place and checks it against the
// aggregate requirements of its type set. It returns nil when the question
// is accepted, or the ordered list of every discoverable violation. Rules
// are evaluated independently; nothing short-circuits, since the fatal
// empty-type-set case cannot reach here (TypeSet construction rejects it).
// Validating an already accepted question yields no violations.
func ValidateQuestion(q *model.Question) []FieldViolation {
	NormalizeQuestion(q)

	caps := q.Types.Capabilities()
	var violations []FieldViolation
	add := func(field, message string) {
		violations = append(violations, FieldViolation{Field: field, Message: message})
	}

	if q.QuestionText == "" {
		add("questionText", "question text is required")
	} else if utf8.RuneCountInString(q.QuestionText) > MaxQuestionTextLen {
		add("questionText", fmt.Sprintf("question text must be at most %d characters", MaxQuestionTextLen))
	}

	// NaN compares false against the minimum; require a finite value in
	// range instead of testing for the out-of-range one.
	if math.IsNaN(q.Points) || math.IsInf(q.Points, 0) || q.Points < MinPoints {
		add("points", fmt.Sprintf("points must be at least %g", MinPoints))
	}

	switch q.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		add("difficulty", "difficulty must be easy, medium, or hard")
	}

	if q.Explanation != nil && utf8.RuneCountInString(*q.Explanation) > MaxExplanationLen {
		add("explanation", fmt.Sprintf("explanation must be at most %d characters", MaxExplanationLen))
	}

	if caps.NeedsOptions {
		validateOptions(q, add)
	}

	if caps.NeedsCorrectAnswer && !q.Types.HasOptionBased() && q.CorrectAnswer == nil {
		add("correctAnswer", "a correct answer is required")
	}

	if caps.NeedsAcceptedAnswers && len(q.AcceptedAnswers) == 0 &&
		!q.Types.Has(model.QuestionTypeLongAnswer) {
		// long_answer implies manual grading, which makes the textual
		// answer optional.
		add("acceptedAnswers", "correct answer is required")
	}

	if caps.NeedsMatchingPairs {
		validateMatching(q, add)
	}

	if caps.NeedsFlashcard && !hasFlashcardBack(q) {
		add("flashcardData", "flashcard requires a correct option or an accepted answer for the back face")
	}

	if caps.NeedsBlanks {
		validateBlanks(q, add)
	}

	return violations
}

func validateOptions(q *model.Question, add func(field, message string)) {
	if q.Types.Has(model.QuestionTypeTrueFalse) {
		if len(q.Options) != 2 ||
			q.Options[0].Text != model.TrueOptionText ||
			q.Options[1].Text != model.FalseOptionText {
			add("options", `true/false questions must have exactly the options "True" and "False"`)
			return
		}
		if q.Options[0].IsCorrect == q.Options[1].IsCorrect {
			add("options", "exactly one of True and False must be marked correct")
		}
		if !q.Types.HasChoiceOtherThanTrueFalse() {
			return
		}
	}

	if len(q.Options) < 2 {
		add("options", "at least two options are required")
		return
	}

	correct := 0
	for i, opt := range q.Options {
		if opt.Text == "" {
			add("options", fmt.Sprintf("option %d must not be empty", i+1))
		} else if utf8.RuneCountInString(opt.Text) > MaxOptionTextLen {
			add("options", fmt.Sprintf("option %d must be at most %d characters", i+1, MaxOptionTextLen))
		}
		if opt.IsCorrect {
			correct++
		}
	}

	if q.Types.Has(model.QuestionTypeMultipleSelect) {
		if correct < 2 {
			add("options", "multiple select questions need at least two correct options")
		}
	} else if correct < 1 {
		add("options", "at least one option must be marked correct")
	}
}

func validateMatching(q *model.Question, add func(field, message string)) {
	if len(q.MatchingPairs) < 2 {
		add("matchingPairs", "at least two matching pairs are required")
		return
	}
	for i, p := range q.MatchingPairs {
		if p.Left == "" || p.Right == "" {
			add("matchingPairs", fmt.Sprintf("matching pair %d must have both sides filled", i+1))
		}
	}
}

func validateBlanks(q *model.Question, add func(field, message string)) {
	if len(q.Blanks) == 0 {
		add("blanks", "at least one blank is required")
		return
	}
	for i, b := range q.Blanks {
		if len(b.AcceptedAnswers) == 0 {
			add("blanks", fmt.Sprintf("blank %d needs at least one accepted answer", i+1))
		}
	}
}

// hasFlashcardBack reports whether anything can serve as the card's back
// face: a correct option or a non-empty accepted answer.
func hasFlashcardBack(q *model.Question) bool {
	for _, opt := range q.Options {
		if opt.IsCorrect && opt.Text != "" {
			return true
		}
	}
	return len(q.AcceptedAnswers) > 0
}

func trimNonEmpty(in []string) []string {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
