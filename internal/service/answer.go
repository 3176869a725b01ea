package service

import "github.com/classbridge/qbank-backend/internal/model"

// DeriveCorrectAnswer computes the canonical correct answer for display and
// grading from whichever substructure is authoritative. It is a pure
// projection over current state; the result is never stored, so edited
// options can never leave a stale answer behind.
//
// Priority, first match wins:
//  1. options: texts of every option flagged correct; a singleton collapses
//     to a scalar unless multiple_select is selected
//  2. a directly supplied scalar (true_false path without options)
//  3. the acceptedAnswers list, first entry being the primary answer
//  4. null: manually graded, no stored answer
func DeriveCorrectAnswer(q *model.Question) model.Answer {
	if len(q.Options) > 0 {
		var texts []string
		for _, opt := range q.Options {
			if opt.IsCorrect {
				texts = append(texts, opt.Text)
			}
		}
		single := len(texts) == 1 && !q.Types.Has(model.QuestionTypeMultipleSelect)
		return model.Answer{Values: texts, Single: single}
	}

	if q.CorrectAnswer != nil {
		return model.Answer{Values: []string{*q.CorrectAnswer}, Single: true}
	}

	if len(q.AcceptedAnswers) > 0 {
		return model.Answer{Values: q.AcceptedAnswers}
	}

	return model.Answer{}
}
