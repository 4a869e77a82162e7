package forms

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCodeLength bounds form-unique question codes.
const MaxCodeLength = 16

// IssueKind classifies a validation issue. Every kind blocks publishing.
type IssueKind string

const (
	IssueRequired     IssueKind = "required"
	IssueNotUnique    IssueKind = "not_unique"
	IssueDisplayLogic IssueKind = "display_logic"
	IssueInvalid      IssueKind = "invalid"
)

// Issue is one problem found by Validate, addressed by a field path such as
// ["questions", "2", "options", "1", "text"].
type Issue struct {
	Path    []string  `json:"path"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// String returns the dotted path, e.g. "questions.2.options.1.text".
func (i Issue) String() string { return strings.Join(i.Path, ".") }

type validator struct {
	form   *Form
	lang   string
	issues []Issue
}

func (v *validator) add(kind IssueKind, msg string, path ...string) {
	v.issues = append(v.issues, Issue{Path: path, Kind: kind, Message: msg})
}

// softRequired flags t when it has a reference translation in the default
// language but none in the active one.
func (v *validator) softRequired(t TranslatedText, msg string, path ...string) {
	if !t.IsBlank(v.form.DefaultLanguage) && t.IsBlank(v.lang) {
		v.add(IssueRequired, msg, path...)
	}
}

func qpath(i int, rest ...string) []string {
	return append([]string{"questions", strconv.Itoa(i)}, rest...)
}

// Validate checks f for the active editing language and returns every issue
// found; an empty result means the form is publishable in that language.
// Validate never panics on malformed input.
func Validate(f *Form, activeLanguage string) []Issue {
	if f == nil {
		return []Issue{{Path: []string{}, Kind: IssueRequired, Message: "Form is required"}}
	}
	v := &validator{form: f, lang: NormalizeLanguageCode(activeLanguage)}

	if f.Name.IsBlank(v.lang) {
		v.add(IssueRequired, "Form name is required", "name")
	}
	v.softRequired(f.Description, "Form description is required", "description")

	for i, q := range f.Questions {
		v.questionFields(i, q)
	}
	for i, q := range f.Questions {
		v.displayLogicReferences(i, q)
	}
	v.structure()
	return v.issues
}

func (v *validator) questionFields(i int, q Question) {
	if q == nil {
		v.add(IssueInvalid, "Question is missing", qpath(i)...)
		return
	}
	b := q.Base()
	if b.Text.IsBlank(v.lang) {
		v.add(IssueRequired, "Question text is required", qpath(i, "text")...)
	}
	v.softRequired(b.Helptext, "Question helptext is required", qpath(i, "helptext")...)

	switch q := q.(type) {
	case *TextQuestion:
		v.softRequired(q.InputPlaceholder, "Input placeholder is required", qpath(i, "inputPlaceholder")...)
	case *NumberQuestion:
		v.softRequired(q.InputPlaceholder, "Input placeholder is required", qpath(i, "inputPlaceholder")...)
	case *DateQuestion:
	case *RatingQuestion:
		v.softRequired(q.LowerLabel, "Question lower label is required", qpath(i, "lowerLabel")...)
		v.softRequired(q.UpperLabel, "Question upper label is required", qpath(i, "upperLabel")...)
	case *SingleSelectQuestion:
		v.optionTexts(i, q.Options)
	case *MultiSelectQuestion:
		v.optionTexts(i, q.Options)
	}

	if dl := b.DisplayLogic; dl != nil {
		if dl.Condition == "" {
			v.add(IssueRequired, "Question condition is required", qpath(i, "displayLogic", "condition")...)
		}
		if strings.TrimSpace(dl.ParentQuestionID) == "" {
			v.add(IssueRequired, "Question parent question is required", qpath(i, "displayLogic", "parentQuestionId")...)
		}
		if strings.TrimSpace(dl.Value) == "" {
			v.add(IssueRequired, "Question value is required", qpath(i, "displayLogic", "value")...)
		}
	}
}

// optionTexts requires a text per option and flags every repeat of a text
// after its first occurrence. Blank texts are only reported as missing.
func (v *validator) optionTexts(i int, opts []Option) {
	seen := make(map[string]bool, len(opts))
	for j, o := range opts {
		path := qpath(i, "options", strconv.Itoa(j), "text")
		if o.Text.IsBlank(v.lang) {
			v.add(IssueRequired, "Option text is required", path...)
			continue
		}
		text := o.Text.Get(v.lang, "")
		if seen[text] {
			v.add(IssueNotUnique, "Option text is not unique", path...)
			continue
		}
		seen[text] = true
	}
}

func (v *validator) displayLogicReferences(i int, q Question) {
	if q == nil || q.Base().DisplayLogic == nil {
		return
	}
	dl := q.Base().DisplayLogic
	condOK := true
	if dl.Condition != "" && !dl.Condition.IsValid() {
		v.add(IssueDisplayLogic, fmt.Sprintf("Condition %q is not valid", dl.Condition), qpath(i, "displayLogic", "condition")...)
		condOK = false
	}
	if strings.TrimSpace(dl.ParentQuestionID) == "" {
		return
	}
	pi := v.form.QuestionIndex(dl.ParentQuestionID)
	switch {
	case pi < 0:
		v.add(IssueDisplayLogic, "Parent question does not exist", qpath(i, "displayLogic", "parentQuestionId")...)
		return
	case pi >= i:
		v.add(IssueDisplayLogic, "Parent question must come before this question", qpath(i, "displayLogic", "parentQuestionId")...)
		return
	}
	parent := v.form.Questions[pi]
	pt := parent.Type()
	if !pt.CanBeParent() {
		v.add(IssueDisplayLogic, "Parent question type cannot drive display logic", qpath(i, "displayLogic", "parentQuestionId")...)
		return
	}
	if condOK && dl.Condition != "" && !ConditionAllowed(pt, dl.Condition) {
		v.add(IssueDisplayLogic, fmt.Sprintf("Condition %s is not allowed for %s parents", dl.Condition, pt), qpath(i, "displayLogic", "condition")...)
	}
	if strings.TrimSpace(dl.Value) == "" {
		return
	}
	valuePath := qpath(i, "displayLogic", "value")
	switch p := parent.(type) {
	case *NumberQuestion:
		if _, ok := parseNumber(dl.Value); !ok {
			v.add(IssueDisplayLogic, "Value must be a number", valuePath...)
		}
	case *RatingQuestion:
		n, ok := parseNumber(dl.Value)
		points := p.Scale.Points()
		if !ok || n != float64(int(n)) || n < 1 || int(n) > points {
			v.add(IssueDisplayLogic, fmt.Sprintf("Value must be a whole number between 1 and %d", points), valuePath...)
		}
	case *SingleSelectQuestion, *MultiSelectQuestion:
		if !HasOption(p, dl.Value) {
			v.add(IssueDisplayLogic, "Value must reference an option of the parent question", valuePath...)
		}
	}
}

func (v *validator) structure() {
	f := v.form
	if strings.TrimSpace(f.Code) == "" {
		v.add(IssueRequired, "Form code is required", "code")
	}
	if !f.Status.IsValid() {
		v.add(IssueInvalid, fmt.Sprintf("Status %q is not valid", f.Status), "status")
	}

	if len(f.AvailableLanguages) == 0 {
		v.add(IssueRequired, "At least one language is required", "availableLanguages")
	}
	langs := make(map[string]bool, len(f.AvailableLanguages))
	for i, l := range f.AvailableLanguages {
		path := []string{"availableLanguages", strconv.Itoa(i)}
		code := NormalizeLanguageCode(l)
		switch {
		case !IsValidLanguageCode(code):
			v.add(IssueInvalid, "Language code must be two letters", path...)
		case langs[code]:
			v.add(IssueNotUnique, "Language is listed more than once", path...)
		}
		langs[code] = true
	}
	if !langs[NormalizeLanguageCode(f.DefaultLanguage)] {
		v.add(IssueInvalid, "Default language must be an available language", "defaultLanguage")
	}
	if !langs[v.lang] {
		v.add(IssueInvalid, "Active language must be an available language", "activeLanguage")
	}

	ids := make(map[string]bool, len(f.Questions))
	codes := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		if q == nil {
			continue
		}
		b := q.Base()
		switch {
		case strings.TrimSpace(b.ID) == "":
			v.add(IssueRequired, "Question id is required", qpath(i, "id")...)
		case ids[b.ID]:
			v.add(IssueNotUnique, "Question id is not unique", qpath(i, "id")...)
		}
		ids[b.ID] = true

		switch {
		case strings.TrimSpace(b.Code) == "":
			v.add(IssueRequired, "Question code is required", qpath(i, "code")...)
		case !isValidCode(b.Code):
			v.add(IssueInvalid, fmt.Sprintf("Question code must be at most %d letters or digits", MaxCodeLength), qpath(i, "code")...)
		case codes[b.Code]:
			v.add(IssueNotUnique, "Question code is not unique", qpath(i, "code")...)
		}
		codes[b.Code] = true

		switch q := q.(type) {
		case *RatingQuestion:
			if !q.Scale.IsValid() {
				v.add(IssueInvalid, fmt.Sprintf("Rating scale %q is not valid", q.Scale), qpath(i, "scale")...)
			}
		case *SingleSelectQuestion:
			v.optionStructure(i, q.Options)
		case *MultiSelectQuestion:
			v.optionStructure(i, q.Options)
		}
	}
}

func (v *validator) optionStructure(i int, opts []Option) {
	if len(opts) == 0 {
		v.add(IssueRequired, "At least one option is required", qpath(i, "options")...)
		return
	}
	ids := make(map[string]bool, len(opts))
	freeText := false
	for j, o := range opts {
		idx := strconv.Itoa(j)
		switch {
		case strings.TrimSpace(o.ID) == "":
			v.add(IssueRequired, "Option id is required", qpath(i, "options", idx, "id")...)
		case ids[o.ID]:
			v.add(IssueNotUnique, "Option id is not unique", qpath(i, "options", idx, "id")...)
		}
		ids[o.ID] = true
		if o.IsFreeText {
			if freeText {
				v.add(IssueInvalid, "Only one option may accept free text", qpath(i, "options", idx, "isFreeText")...)
			}
			freeText = true
		}
	}
}

func isValidCode(code string) bool {
	if code == "" || len(code) > MaxCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// IsPublishable reports whether f has no issues in any of its available languages.
func IsPublishable(f *Form) bool {
	return len(ValidateAll(f)) == 0
}

// ValidateAll runs Validate for every available language and returns the
// issues keyed by language. Languages without issues are omitted.
func ValidateAll(f *Form) map[string][]Issue {
	out := map[string][]Issue{}
	if f == nil {
		out[""] = Validate(nil, "")
		return out
	}
	langs := f.AvailableLanguages
	if len(langs) == 0 {
		langs = []string{f.DefaultLanguage}
	}
	for _, l := range langs {
		if issues := Validate(f, l); len(issues) > 0 {
			out[NormalizeLanguageCode(l)] = issues
		}
	}
	return out
}
