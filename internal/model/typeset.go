package model

import (
	"encoding/json"
	"fmt"
)

// TypeSet is the non-empty, ordered set of presentation types a question
// supports. Insertion order is preserved for display; membership is a set
// (duplicates are rejected). The aggregate capability record is memoized on
// construction and every mutation, so call sites consume it as data instead
// of re-deriving per-type rules.
type TypeSet struct {
	types []QuestionType
	caps  Capability
}

// NewTypeSet builds a TypeSet from canonical types. It rejects an empty
// list, unknown types, and duplicates.
func NewTypeSet(types ...QuestionType) (TypeSet, error) {
	if len(types) == 0 {
		return TypeSet{}, ErrNoTypes
	}
	out := make([]QuestionType, 0, len(types))
	seen := make(map[QuestionType]struct{}, len(types))
	for _, t := range types {
		if _, ok := typeCapabilities[t]; !ok {
			return TypeSet{}, fmt.Errorf("unknown question type %q", t)
		}
		if _, dup := seen[t]; dup {
			return TypeSet{}, fmt.Errorf("%w: %q", ErrDuplicateType, t)
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	caps, err := ResolveRequirements(out)
	if err != nil {
		return TypeSet{}, err
	}
	return TypeSet{types: out, caps: caps}, nil
}

// ParseTypeSet builds a TypeSet from raw strings, normalizing legacy
// aliases first.
func ParseTypeSet(raw []string) (TypeSet, error) {
	if len(raw) == 0 {
		return TypeSet{}, ErrNoTypes
	}
	types := make([]QuestionType, 0, len(raw))
	for _, r := range raw {
		t, ok := NormalizeQuestionType(r)
		if !ok {
			return TypeSet{}, fmt.Errorf("unknown question type %q", r)
		}
		types = append(types, t)
	}
	return NewTypeSet(types...)
}

// Types returns the member types in insertion order. The slice is a copy.
func (s TypeSet) Types() []QuestionType {
	out := make([]QuestionType, len(s.types))
	copy(out, s.types)
	return out
}

// Strings returns the member types as plain strings, for storage drivers.
func (s TypeSet) Strings() []string {
	out := make([]string, len(s.types))
	for i, t := range s.types {
		out[i] = string(t)
	}
	return out
}

// Len returns the number of member types.
func (s TypeSet) Len() int { return len(s.types) }

// Has reports whether t is a member.
func (s TypeSet) Has(t QuestionType) bool {
	for _, m := range s.types {
		if m == t {
			return true
		}
	}
	return false
}

// Capabilities returns the memoized aggregate requirement record.
func (s TypeSet) Capabilities() Capability { return s.caps }

// HasOptionBased reports whether any member renders as selectable options.
func (s TypeSet) HasOptionBased() bool {
	return s.Has(QuestionTypeMultipleChoice) ||
		s.Has(QuestionTypeMultipleSelect) ||
		s.Has(QuestionTypeTrueFalse)
}

// HasChoiceOtherThanTrueFalse reports whether an option-based type other
// than true_false is a member.
func (s TypeSet) HasChoiceOtherThanTrueFalse() bool {
	return s.Has(QuestionTypeMultipleChoice) || s.Has(QuestionTypeMultipleSelect)
}

// Add returns a new TypeSet with t appended. Duplicates are rejected.
func (s TypeSet) Add(t QuestionType) (TypeSet, error) {
	if s.Has(t) {
		return TypeSet{}, fmt.Errorf("%w: %q", ErrDuplicateType, t)
	}
	return NewTypeSet(append(s.Types(), t)...)
}

// Remove returns a new TypeSet without t. Removing the sole remaining type
// fails with ErrNoTypes; the set never becomes empty.
func (s TypeSet) Remove(t QuestionType) (TypeSet, error) {
	if !s.Has(t) {
		return TypeSet{}, fmt.Errorf("type %q is not selected", t)
	}
	if len(s.types) == 1 {
		return TypeSet{}, ErrNoTypes
	}
	kept := make([]QuestionType, 0, len(s.types)-1)
	for _, m := range s.types {
		if m != t {
			kept = append(kept, m)
		}
	}
	return NewTypeSet(kept...)
}

// MarshalJSON writes the set as a plain array in insertion order. The wire
// format is always an array, even for a single type.
func (s TypeSet) MarshalJSON() ([]byte, error) {
	if s.types == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.types)
}

// UnmarshalJSON parses an array of type strings, accepting legacy aliases.
func (s *TypeSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("questionTypes must be an array of strings")
	}
	parsed, err := ParseTypeSet(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
