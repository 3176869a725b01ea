package model

import (
	"encoding/json"
	"testing"
)

func TestAddTrueFalseForcesOptionPair(t *testing.T) {
	ts, _ := NewTypeSet(QuestionTypeMultipleChoice)
	q := &Question{
		Types: ts,
		Options: []Option{
			{Text: "Red", IsCorrect: true},
			{Text: "Blue"},
		},
	}

	if err := q.AddType(QuestionTypeTrueFalse); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(q.Options) != 2 || q.Options[0].Text != TrueOptionText || q.Options[1].Text != FalseOptionText {
		t.Fatalf("options not replaced with the fixed pair: %+v", q.Options)
	}
	if !q.Options[0].IsCorrect {
		t.Error("True should default to correct when no scalar answer is set")
	}
}

func TestAddTrueFalseFollowsScalarAnswer(t *testing.T) {
	ts, _ := NewTypeSet(QuestionTypeShortAnswer)
	correct := FalseOptionText
	q := &Question{Types: ts, CorrectAnswer: &correct}

	if err := q.AddType(QuestionTypeTrueFalse); err != nil {
		t.Fatalf("add: %v", err)
	}
	if q.Options[0].IsCorrect || !q.Options[1].IsCorrect {
		t.Errorf("correct flag should follow the scalar answer: %+v", q.Options)
	}
}

func TestRemoveTrueFalseKeepsReplacementOptions(t *testing.T) {
	ts, _ := NewTypeSet(QuestionTypeMultipleChoice)
	q := &Question{
		Types:   ts,
		Options: []Option{{Text: "Red", IsCorrect: true}, {Text: "Blue"}},
	}
	_ = q.AddType(QuestionTypeTrueFalse)
	if err := q.RemoveType(QuestionTypeTrueFalse); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// The original options were replaced, not shelved; removal does not
	// bring them back.
	if len(q.Options) != 2 || q.Options[0].Text != TrueOptionText {
		t.Errorf("options changed on removal: %+v", q.Options)
	}
	if q.Types.Has(QuestionTypeTrueFalse) {
		t.Error("true_false still in the set")
	}
}

func TestAnswerJSONShapes(t *testing.T) {
	cases := []struct {
		name string
		a    Answer
		want string
	}{
		{"null", Answer{}, "null"},
		{"scalar", Answer{Values: []string{"4"}, Single: true}, `"4"`},
		{"singleton list", Answer{Values: []string{"4"}}, `["4"]`},
		{"list", Answer{Values: []string{"A", "C"}}, `["A","C"]`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.a)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		if string(data) != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, data, tc.want)
		}
	}
}

func TestAnswerUnmarshal(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`"True"`), &a); err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if !a.Single || a.Primary() != "True" {
		t.Errorf("scalar parsed wrong: %+v", a)
	}

	if err := json.Unmarshal([]byte(`["a","b"]`), &a); err != nil {
		t.Fatalf("list: %v", err)
	}
	if a.Single || len(a.Values) != 2 {
		t.Errorf("list parsed wrong: %+v", a)
	}

	if err := json.Unmarshal([]byte(`null`), &a); err != nil {
		t.Fatalf("null: %v", err)
	}
	if !a.IsNull() {
		t.Errorf("null parsed wrong: %+v", a)
	}

	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Error("number accepted as answer")
	}
}

func TestBuildImportResponseCounts(t *testing.T) {
	msg := "bad row"
	id := "q1"
	outcomes := []ImportOutcome{
		{Item: BulkImportResultItem{Index: 0, Status: ImportStatusSuccess, QuestionID: &id}},
		{Item: BulkImportResultItem{Index: 1, Status: ImportStatusError, Error: &msg}},
		{Item: BulkImportResultItem{Index: 2, Status: ImportStatusSuccess, QuestionID: &id}, Updated: true},
	}

	resp := BuildImportResponse(outcomes)
	if resp.Imported != 1 || resp.Failed != 1 || resp.Updated != 1 {
		t.Errorf("counts: imported=%d failed=%d updated=%d", resp.Imported, resp.Failed, resp.Updated)
	}
	if got := resp.Imported + resp.Failed + resp.Updated; got != len(resp.Results) {
		t.Errorf("counters must partition the results: %d vs %d", got, len(resp.Results))
	}
	for i, item := range resp.Results {
		if item.Index != i {
			t.Errorf("result %d carries index %d", i, item.Index)
		}
	}
}
