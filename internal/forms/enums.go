package forms

// QuestionType is the discriminant stored in the "questionType" JSON field.
type QuestionType string

const (
	QuestionTypeText         QuestionType = "textQuestion"
	QuestionTypeNumber       QuestionType = "numberQuestion"
	QuestionTypeDate         QuestionType = "dateQuestion"
	QuestionTypeRating       QuestionType = "ratingQuestion"
	QuestionTypeSingleSelect QuestionType = "singleSelectQuestion"
	QuestionTypeMultiSelect  QuestionType = "multiSelectQuestion"
)

// QuestionTypes lists every question type in display order.
var QuestionTypes = []QuestionType{
	QuestionTypeText,
	QuestionTypeNumber,
	QuestionTypeDate,
	QuestionTypeRating,
	QuestionTypeSingleSelect,
	QuestionTypeMultiSelect,
}

// IsSelection reports whether answers to t are option selections.
func (t QuestionType) IsSelection() bool {
	return t == QuestionTypeSingleSelect || t == QuestionTypeMultiSelect
}

// IsNumeric reports whether answers to t are compared as numbers.
func (t QuestionType) IsNumeric() bool {
	return t == QuestionTypeNumber || t == QuestionTypeRating
}

// CanBeParent reports whether questions of type t may drive display logic.
// Text and date answers have no comparable value.
func (t QuestionType) CanBeParent() bool {
	return t.IsSelection() || t.IsNumeric()
}

// FormStatus is the publication state of a form.
type FormStatus string

const (
	StatusDrafted   FormStatus = "Drafted"
	StatusPublished FormStatus = "Published"
	StatusArchived  FormStatus = "Archived"
)

func (s FormStatus) rank() int {
	switch s {
	case StatusDrafted:
		return 1
	case StatusPublished:
		return 2
	case StatusArchived:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether s is a known status.
func (s FormStatus) IsValid() bool { return s.rank() > 0 }

// CanTransition reports whether a form may move from one status to another.
// Statuses only move forward: Drafted -> Published -> Archived. Staying put is allowed.
func CanTransition(from, to FormStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	return to.rank() >= from.rank()
}

// RatingScale is one of the eight supported rating sizes.
type RatingScale string

const (
	RatingOneTo3  RatingScale = "OneTo3"
	RatingOneTo4  RatingScale = "OneTo4"
	RatingOneTo5  RatingScale = "OneTo5"
	RatingOneTo6  RatingScale = "OneTo6"
	RatingOneTo7  RatingScale = "OneTo7"
	RatingOneTo8  RatingScale = "OneTo8"
	RatingOneTo9  RatingScale = "OneTo9"
	RatingOneTo10 RatingScale = "OneTo10"
)

var ratingPoints = map[RatingScale]int{
	RatingOneTo3:  3,
	RatingOneTo4:  4,
	RatingOneTo5:  5,
	RatingOneTo6:  6,
	RatingOneTo7:  7,
	RatingOneTo8:  8,
	RatingOneTo9:  9,
	RatingOneTo10: 10,
}

// IsValid reports whether s is one of the eight scales.
func (s RatingScale) IsValid() bool {
	_, ok := ratingPoints[s]
	return ok
}

// Points returns the number of points on the scale; unknown scales count as 5.
func (s RatingScale) Points() int {
	if n, ok := ratingPoints[s]; ok {
		return n
	}
	return 5
}

// Condition compares a parent question's answer with a display-logic value.
type Condition string

const (
	ConditionEquals       Condition = "Equals"
	ConditionNotEquals    Condition = "NotEquals"
	ConditionLessThan     Condition = "LessThan"
	ConditionLessEqual    Condition = "LessEqual"
	ConditionGreaterThan  Condition = "GreaterThan"
	ConditionGreaterEqual Condition = "GreaterEqual"
	ConditionIncludes     Condition = "Includes"
)

var (
	relationalConditions = []Condition{
		ConditionEquals,
		ConditionNotEquals,
		ConditionLessThan,
		ConditionLessEqual,
		ConditionGreaterThan,
		ConditionGreaterEqual,
	}
	selectionConditions = []Condition{ConditionIncludes}
)

// IsValid reports whether c is one of the seven known conditions.
func (c Condition) IsValid() bool {
	if c == ConditionIncludes {
		return true
	}
	for _, r := range relationalConditions {
		if r == c {
			return true
		}
	}
	return false
}

// AllowedConditions returns the conditions a parent of type t supports.
// Types that cannot be parents return nil.
func AllowedConditions(t QuestionType) []Condition {
	switch {
	case t.IsSelection():
		return append([]Condition(nil), selectionConditions...)
	case t.IsNumeric():
		return append([]Condition(nil), relationalConditions...)
	default:
		return nil
	}
}

// ConditionAllowed reports whether c may be used against a parent of type t.
func ConditionAllowed(t QuestionType, c Condition) bool {
	for _, allowed := range AllowedConditions(t) {
		if allowed == c {
			return true
		}
	}
	return false
}

// AnswerType is the discriminant stored in the "$answerType" JSON field.
type AnswerType string

const (
	AnswerTypeText         AnswerType = "textAnswer"
	AnswerTypeNumber       AnswerType = "numberAnswer"
	AnswerTypeDate         AnswerType = "dateAnswer"
	AnswerTypeRating       AnswerType = "ratingAnswer"
	AnswerTypeSingleSelect AnswerType = "singleSelectAnswer"
	AnswerTypeMultiSelect  AnswerType = "multiSelectAnswer"
)
