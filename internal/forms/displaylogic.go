package forms

// ParentCandidates returns the questions that the question at index may
// depend on: earlier questions of a parentable type, in form order.
func ParentCandidates(f *Form, index int) []Question {
	if f == nil {
		return nil
	}
	if index > len(f.Questions) {
		index = len(f.Questions)
	}
	var out []Question
	for i := 0; i < index; i++ {
		q := f.Questions[i]
		if q != nil && q.Type().CanBeParent() {
			out = append(out, q)
		}
	}
	return out
}

// DefaultDisplayLogic returns the rule preselected when an author picks parent:
// Equals 1 for ratings, Equals 0 for numbers, Includes the first option for
// selections. It returns nil when parent cannot drive display logic.
func DefaultDisplayLogic(parent Question) *DisplayLogic {
	if parent == nil {
		return nil
	}
	dl := &DisplayLogic{ParentQuestionID: parent.Base().ID}
	switch p := parent.(type) {
	case *RatingQuestion:
		dl.Condition, dl.Value = ConditionEquals, "1"
	case *NumberQuestion:
		dl.Condition, dl.Value = ConditionEquals, "0"
	case *SingleSelectQuestion, *MultiSelectQuestion:
		dl.Condition = ConditionIncludes
		if opts := OptionsOf(p); len(opts) > 0 {
			dl.Value = opts[0].ID
		}
	default:
		return nil
	}
	return dl
}

// Dependents returns the questions whose display logic points at id.
func Dependents(f *Form, id string) []Question {
	if f == nil {
		return nil
	}
	var out []Question
	for _, q := range f.Questions {
		if q == nil {
			continue
		}
		if dl := q.Base().DisplayLogic; dl != nil && dl.ParentQuestionID == id {
			out = append(out, q)
		}
	}
	return out
}

// SetDisplayLogic attaches the default rule for parentID to the question with
// id, or clears the rule when parentID is empty.
func (f *Form) SetDisplayLogic(id, parentID string) error {
	q, ok := f.Question(id)
	if !ok {
		return ErrQuestionNotFound
	}
	if parentID == "" {
		q.Base().DisplayLogic = nil
		return nil
	}
	parent, ok := f.Question(parentID)
	if !ok {
		return ErrQuestionNotFound
	}
	q.Base().DisplayLogic = DefaultDisplayLogic(parent)
	return nil
}
