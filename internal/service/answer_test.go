package service

import (
	"reflect"
	"testing"

	"github.com/classbridge/qbank-backend/internal/model"
)

func TestDeriveFromSingleCorrectOption(t *testing.T) {
	q := baseQuestion(t, model.QuestionTypeMultipleChoice)
	q.Options = []model.Option{
		{Text: "A"}, {Text: "B", IsCorrect: true}, {Text: "C"},
	}

	a := DeriveCorrectAnswer(q)
	if !a.Single || a.Primary() != "B" {
		t.Errorf("expected scalar \"B\", got %+v", a)
	}
}

func TestDeriveFromMultipleCorrectOptions(t *testing.T) {
	q := baseQuestion(t, model.QuestionTypeMultipleSelect)
	q.Options = []model.Option{
		{Text: "A", IsCorrect: true}, {Text: "B"}, {Text: "C", IsCorrect: true},
	}

	a := DeriveCorrectAnswer(q)
	if a.Single || !reflect.DeepEqual(a.Values, []string{"A", "C"}) {
		t.Errorf("expected [A C], got %+v", a)
	}
}

func TestDeriveSingletonStaysListForMultipleSelect(t *testing.T) {
	// A multiple_select answer is always a list, even if only one option is
	// currently marked correct.
	q := baseQuestion(t, model.QuestionTypeMultipleSelect)
	q.Options = []model.Option{{Text: "A", IsCorrect: true}, {Text: "B"}}

	if a := DeriveCorrectAnswer(q); a.Single {
		t.Errorf("expected list shape, got %+v", a)
	}
}

func TestDeriveFromScalar(t *testing.T) {
	q := baseQuestion(t, model.QuestionTypeTrueFalse)
	v := "True"
	q.CorrectAnswer = &v

	a := DeriveCorrectAnswer(q)
	if !a.Single || a.Primary() != "True" {
		t.Errorf("expected scalar \"True\", got %+v", a)
	}
}

func TestDeriveFromAcceptedAnswers(t *testing.T) {
	q := baseQuestion(t, model.QuestionTypeShortAnswer)
	q.AcceptedAnswers = []string{"four", "4"}

	a := DeriveCorrectAnswer(q)
	if a.Single || a.Primary() != "four" {
		t.Errorf("expected answer list led by \"four\", got %+v", a)
	}
}

func TestDeriveNullForManualGrading(t *testing.T) {
	q := baseQuestion(t, model.QuestionTypeLongAnswer)
	if a := DeriveCorrectAnswer(q); !a.IsNull() {
		t.Errorf("expected null answer, got %+v", a)
	}
}

func TestDeriveTracksOptionEdits(t *testing.T) {
	// The answer is a projection of current state; editing the flags moves
	// it with no stored value to go stale.
	q := baseQuestion(t, model.QuestionTypeMultipleChoice)
	q.Options = []model.Option{{Text: "A", IsCorrect: true}, {Text: "B"}}

	if got := DeriveCorrectAnswer(q).Primary(); got != "A" {
		t.Fatalf("before edit: %q", got)
	}

	q.Options[0].IsCorrect = false
	q.Options[1].IsCorrect = true
	if got := DeriveCorrectAnswer(q).Primary(); got != "B" {
		t.Errorf("after edit: %q", got)
	}
}
