package model

import "errors"

// ErrNoTypes is returned when a type set would be empty. A question always
// keeps at least one presentation type.
var ErrNoTypes = errors.New("question must have at least one type")

// ErrDuplicateType is returned when a type set would contain the same type
// twice.
var ErrDuplicateType = errors.New("duplicate question type")

// Capability records which type-specific substructures a type set requires.
// It is the boolean union of the per-type rows in typeCapabilities.
type Capability struct {
	NeedsOptions         bool
	NeedsMatchingPairs   bool
	NeedsFlashcard       bool
	NeedsCorrectAnswer   bool
	NeedsAcceptedAnswers bool
	NeedsSampleAnswer    bool
	NeedsBlanks          bool
}

// typeCapabilities is the single place a question type is tied to its
// structural requirements. Adding a new type means adding one row here.
var typeCapabilities = map[QuestionType]Capability{
	QuestionTypeMultipleChoice: {NeedsOptions: true},
	QuestionTypeMultipleSelect: {NeedsOptions: true},
	QuestionTypeTrueFalse:      {NeedsOptions: true, NeedsCorrectAnswer: true},
	QuestionTypeShortAnswer:    {NeedsAcceptedAnswers: true},
	QuestionTypeLongAnswer:     {NeedsSampleAnswer: true},
	QuestionTypeMatching:       {NeedsMatchingPairs: true},
	QuestionTypeFlashcard:      {NeedsFlashcard: true},
	QuestionTypeFillInBlank:    {NeedsBlanks: true},
}

// ResolveRequirements unions the capability rows of every type in the set.
// The union is commutative, so the result does not depend on order.
// The only failure mode is an empty set.
func ResolveRequirements(types []QuestionType) (Capability, error) {
	if len(types) == 0 {
		return Capability{}, ErrNoTypes
	}
	var agg Capability
	for _, t := range types {
		c := typeCapabilities[t]
		agg.NeedsOptions = agg.NeedsOptions || c.NeedsOptions
		agg.NeedsMatchingPairs = agg.NeedsMatchingPairs || c.NeedsMatchingPairs
		agg.NeedsFlashcard = agg.NeedsFlashcard || c.NeedsFlashcard
		agg.NeedsCorrectAnswer = agg.NeedsCorrectAnswer || c.NeedsCorrectAnswer
		agg.NeedsAcceptedAnswers = agg.NeedsAcceptedAnswers || c.NeedsAcceptedAnswers
		agg.NeedsSampleAnswer = agg.NeedsSampleAnswer || c.NeedsSampleAnswer
		agg.NeedsBlanks = agg.NeedsBlanks || c.NeedsBlanks
	}
	return agg, nil
}
