package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestResolveRequirementsUnion(t *testing.T) {
	caps, err := ResolveRequirements([]QuestionType{QuestionTypeMultipleChoice, QuestionTypeFlashcard})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !caps.NeedsOptions || !caps.NeedsFlashcard {
		t.Errorf("union missing requirements: %+v", caps)
	}
	if caps.NeedsBlanks || caps.NeedsMatchingPairs {
		t.Errorf("union has requirements no member asked for: %+v", caps)
	}

	// Union is order independent.
	reversed, err := ResolveRequirements([]QuestionType{QuestionTypeFlashcard, QuestionTypeMultipleChoice})
	if err != nil {
		t.Fatalf("resolve reversed: %v", err)
	}
	if caps != reversed {
		t.Errorf("order changed the union: %+v vs %+v", caps, reversed)
	}
}

func TestResolveRequirementsEmpty(t *testing.T) {
	if _, err := ResolveRequirements(nil); !errors.Is(err, ErrNoTypes) {
		t.Errorf("expected ErrNoTypes, got %v", err)
	}
}

func TestNewTypeSetRejectsBadInput(t *testing.T) {
	if _, err := NewTypeSet(); !errors.Is(err, ErrNoTypes) {
		t.Errorf("empty set: expected ErrNoTypes, got %v", err)
	}
	if _, err := NewTypeSet(QuestionTypeMatching, QuestionTypeMatching); !errors.Is(err, ErrDuplicateType) {
		t.Errorf("duplicate: expected ErrDuplicateType, got %v", err)
	}
	if _, err := NewTypeSet(QuestionType("riddle")); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestParseTypeSetLegacyAliases(t *testing.T) {
	ts, err := ParseTypeSet([]string{"essay", "fill_blank"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !ts.Has(QuestionTypeLongAnswer) || !ts.Has(QuestionTypeFillInBlank) {
		t.Errorf("aliases not normalized: %v", ts.Strings())
	}
}

func TestParseTypeSetAliasCollision(t *testing.T) {
	// essay and long_answer name the same type, so together they are a
	// duplicate.
	if _, err := ParseTypeSet([]string{"essay", "long_answer"}); !errors.Is(err, ErrDuplicateType) {
		t.Errorf("expected ErrDuplicateType, got %v", err)
	}
}

func TestTypeSetAddRemove(t *testing.T) {
	ts, err := NewTypeSet(QuestionTypeMultipleChoice)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ts, err = ts.Add(QuestionTypeFlashcard)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := ts.Strings(); len(got) != 2 || got[0] != "multiple_choice" || got[1] != "flashcard" {
		t.Errorf("insertion order not kept: %v", got)
	}

	if _, err := ts.Add(QuestionTypeFlashcard); !errors.Is(err, ErrDuplicateType) {
		t.Errorf("re-add: expected ErrDuplicateType, got %v", err)
	}

	ts, err = ts.Remove(QuestionTypeMultipleChoice)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := ts.Remove(QuestionTypeFlashcard); !errors.Is(err, ErrNoTypes) {
		t.Errorf("removing last type: expected ErrNoTypes, got %v", err)
	}
	if _, err := ts.Remove(QuestionTypeMatching); err == nil {
		t.Error("removing a non-member succeeded")
	}
}

func TestTypeSetCapabilitiesTrackMutation(t *testing.T) {
	ts, _ := NewTypeSet(QuestionTypeShortAnswer)
	if ts.Capabilities().NeedsOptions {
		t.Fatal("short_answer should not need options")
	}
	ts, _ = ts.Add(QuestionTypeMultipleChoice)
	if !ts.Capabilities().NeedsOptions {
		t.Error("adding multiple_choice did not refresh capabilities")
	}
	ts, _ = ts.Remove(QuestionTypeMultipleChoice)
	if ts.Capabilities().NeedsOptions {
		t.Error("removing multiple_choice did not refresh capabilities")
	}
}

func TestTypeSetJSONRoundTrip(t *testing.T) {
	ts, _ := NewTypeSet(QuestionTypeTrueFalse, QuestionTypeFlashcard)
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["true_false","flashcard"]` {
		t.Errorf("wire format: %s", data)
	}

	var back TypeSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Len() != 2 || !back.Has(QuestionTypeTrueFalse) {
		t.Errorf("round trip lost members: %v", back.Strings())
	}

	var bad TypeSet
	if err := json.Unmarshal([]byte(`"true_false"`), &bad); err == nil {
		t.Error("bare string accepted; the wire format is always an array")
	}
	if err := json.Unmarshal([]byte(`[]`), &bad); err == nil {
		t.Error("empty array accepted")
	}
}
