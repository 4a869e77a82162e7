package forms

import (
	"maps"
	"slices"
)

// Visibility maps question IDs to whether the question is currently shown.
type Visibility map[string]bool

// IsVisible reports the verdict for id; unknown questions are hidden.
func (v Visibility) IsVisible(id string) bool { return v[id] }

// VisibleQuestions returns the visible questions of f in form order.
func (v Visibility) VisibleQuestions(f *Form) []Question {
	var out []Question
	for _, q := range f.Questions {
		if q != nil && v[q.Base().ID] {
			out = append(out, q)
		}
	}
	return out
}

// ComputeVisibility decides, in form order, which questions of f are shown for
// the given answers. A question without display logic is visible. A question
// with display logic is visible only when its parent, found earlier in the
// form, is visible and the parent's answer satisfies the condition. Anything
// missing, unparsable or not allowed hides the question.
func ComputeVisibility(f *Form, answers map[string]Answer) Visibility {
	out := make(Visibility, 0)
	if f == nil {
		return out
	}
	for i, q := range f.Questions {
		if q == nil {
			continue
		}
		b := q.Base()
		if b.DisplayLogic == nil {
			out[b.ID] = true
			continue
		}
		out[b.ID] = displayLogicHolds(f.Questions[:i], b.DisplayLogic, answers, out)
	}
	return out
}

func displayLogicHolds(earlier Questions, dl *DisplayLogic, answers map[string]Answer, seen Visibility) bool {
	var parent Question
	for _, q := range earlier {
		if q != nil && q.Base().ID == dl.ParentQuestionID {
			parent = q
			break
		}
	}
	if parent == nil || !seen[dl.ParentQuestionID] {
		return false
	}
	return ConditionHolds(parent, dl.Condition, dl.Value, answers[dl.ParentQuestionID])
}

// ConditionHolds evaluates one condition against the answer to parent.
func ConditionHolds(parent Question, cond Condition, value string, answer Answer) bool {
	if parent == nil || answer == nil || !ConditionAllowed(parent.Type(), cond) {
		return false
	}
	switch {
	case parent.Type().IsNumeric():
		got, ok := numericAnswer(answer)
		if !ok {
			return false
		}
		want, ok := parseNumber(value)
		if !ok {
			return false
		}
		return compare(cond, got, want)
	case parent.Type().IsSelection():
		return value != "" && slices.Contains(selectedOptionIDs(answer), value)
	default:
		return false
	}
}

func compare(cond Condition, got, want float64) bool {
	switch cond {
	case ConditionEquals:
		return got == want
	case ConditionNotEquals:
		return got != want
	case ConditionLessThan:
		return got < want
	case ConditionLessEqual:
		return got <= want
	case ConditionGreaterThan:
		return got > want
	case ConditionGreaterEqual:
		return got >= want
	default:
		return false
	}
}

// numericAnswer accepts number and rating answers interchangeably.
func numericAnswer(a Answer) (float64, bool) {
	switch a := a.(type) {
	case *NumberAnswer:
		if a == nil {
			return 0, false
		}
		return a.Value.Float()
	case *RatingAnswer:
		if a == nil {
			return 0, false
		}
		return a.Value.Float()
	default:
		return 0, false
	}
}

// selectedOptionIDs accepts single and multi selections interchangeably.
func selectedOptionIDs(a Answer) []string {
	switch a := a.(type) {
	case *SingleSelectAnswer:
		if a == nil || a.Selection == nil {
			return nil
		}
		return []string{a.Selection.OptionID}
	case *MultiSelectAnswer:
		if a == nil {
			return nil
		}
		ids := make([]string, 0, len(a.Selection))
		for _, s := range a.Selection {
			ids = append(ids, s.OptionID)
		}
		return ids
	default:
		return nil
	}
}

// FilterAnswers returns the answers that belong to questions of f visible for
// those answers. Answers to hidden or unknown questions are dropped.
func FilterAnswers(f *Form, answers map[string]Answer) Answers {
	return ComputeVisibility(f, answers).Filter(answers)
}

// Filter keeps the answers whose questions are visible.
func (v Visibility) Filter(answers map[string]Answer) Answers {
	out := make(Answers, len(answers))
	for id, a := range answers {
		if v[id] {
			out[id] = a
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
