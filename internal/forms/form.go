package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidLanguage     = errors.New("invalid language code")
	ErrLanguageExists      = errors.New("language already available")
	ErrLanguageNotFound    = errors.New("language not available")
	ErrReorderMismatch     = errors.New("reorder ids do not match the form's questions")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrQuestionOutOfBounds = errors.New("question cannot move further")
)

// Form is a multilingual questionnaire definition. The questions slice owns its
// elements; display logic refers to other questions by ID only.
type Form struct {
	ID                 string         `json:"id" yaml:"id"`
	Code               string         `json:"code" yaml:"code"`
	Status             FormStatus     `json:"status" yaml:"status"`
	Name               TranslatedText `json:"name" yaml:"name"`
	Description        TranslatedText `json:"description,omitempty" yaml:"description"`
	DefaultLanguage    string         `json:"defaultLanguage" yaml:"defaultLanguage"`
	AvailableLanguages []string       `json:"availableLanguages" yaml:"availableLanguages"`
	Questions          Questions      `json:"questions" yaml:"questions"`
}

// UnmarshalJSON normalises language codes to upper case.
func (f *Form) UnmarshalJSON(data []byte) error {
	type plain Form
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Form(p)
	f.normalizeDecoded()
	return nil
}

// UnmarshalYAML reads the same field names as the JSON shape. Scalars land in
// string fields with their literal text, so unquoted Yes, NO or 3 stay strings.
func (f *Form) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Form
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*f = Form(p)
	f.normalizeDecoded()
	return nil
}

func (f *Form) normalizeDecoded() {
	f.DefaultLanguage = NormalizeLanguageCode(f.DefaultLanguage)
	for i, l := range f.AvailableLanguages {
		f.AvailableLanguages[i] = NormalizeLanguageCode(l)
	}
	if f.Questions == nil {
		f.Questions = Questions{}
	}
}

// NewForm returns an empty drafted form. The default language is added to
// languages when missing and every translated field is seeded.
func NewForm(code, defaultLanguage string, languages []string) *Form {
	def := NormalizeLanguageCode(defaultLanguage)
	langs := make([]string, 0, len(languages)+1)
	seen := map[string]bool{}
	for _, l := range languages {
		l = NormalizeLanguageCode(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	if !seen[def] {
		langs = append([]string{def}, langs...)
	}
	return &Form{
		ID:                 NewID(),
		Code:               code,
		Status:             StatusDrafted,
		Name:               NewTranslatedText(langs, ""),
		Description:        NewTranslatedText(langs, ""),
		DefaultLanguage:    def,
		AvailableLanguages: langs,
		Questions:          Questions{},
	}
}

// Clone returns a deep copy of f.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	out.Name = f.Name.Clone()
	out.Description = f.Description.Clone()
	out.AvailableLanguages = append([]string(nil), f.AvailableLanguages...)
	out.Questions = make(Questions, len(f.Questions))
	for i, q := range f.Questions {
		out.Questions[i] = CloneQuestion(q)
	}
	return &out
}

// HasLanguage reports whether code is one of the form's available languages.
func (f *Form) HasLanguage(code string) bool {
	code = NormalizeLanguageCode(code)
	for _, l := range f.AvailableLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// QuestionIndex returns the position of the question with id, or -1.
func (f *Form) QuestionIndex(id string) int {
	for i, q := range f.Questions {
		if q != nil && q.Base().ID == id {
			return i
		}
	}
	return -1
}

// Question looks up a question by ID.
func (f *Form) Question(id string) (Question, bool) {
	if i := f.QuestionIndex(id); i >= 0 {
		return f.Questions[i], true
	}
	return nil, false
}

// AddQuestion appends q, filling its translated fields for the form's languages.
func (f *Form) AddQuestion(q Question) {
	f.InsertQuestion(len(f.Questions), q)
}

// InsertQuestion places q at index, clamped to the list bounds.
func (f *Form) InsertQuestion(index int, q Question) {
	if index < 0 {
		index = 0
	}
	if index > len(f.Questions) {
		index = len(f.Questions)
	}
	completeQuestion(q, f.AvailableLanguages)
	f.Questions = append(f.Questions, nil)
	copy(f.Questions[index+1:], f.Questions[index:])
	f.Questions[index] = q
}

// RemoveQuestion deletes the question with id and returns it. Display logic of
// dependents is left untouched; Validate reports the dangling reference.
func (f *Form) RemoveQuestion(id string) (Question, error) {
	i := f.QuestionIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	q := f.Questions[i]
	f.Questions = append(f.Questions[:i], f.Questions[i+1:]...)
	return q, nil
}

// MoveDirection is the direction of a single-step move.
type MoveDirection string

const (
	MoveUp   MoveDirection = "UP"
	MoveDown MoveDirection = "DOWN"
)

// MoveQuestion swaps the question with its neighbour in direction dir.
func (f *Form) MoveQuestion(id string, dir MoveDirection) error {
	i := f.QuestionIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	j := i + 1
	if dir == MoveUp {
		j = i - 1
	}
	if j < 0 || j >= len(f.Questions) {
		return ErrQuestionOutOfBounds
	}
	f.Questions[i], f.Questions[j] = f.Questions[j], f.Questions[i]
	return nil
}

// Reorder rearranges the questions to follow ids, which must be a permutation
// of the current question IDs.
func (f *Form) Reorder(ids []string) error {
	if len(ids) != len(f.Questions) {
		return ErrReorderMismatch
	}
	out := make(Questions, 0, len(ids))
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		i := f.QuestionIndex(id)
		if i < 0 || used[id] {
			return ErrReorderMismatch
		}
		used[id] = true
		out = append(out, f.Questions[i])
	}
	f.Questions = out
	return nil
}

// DuplicateQuestion inserts a deep copy of the question with id right after it.
// The copy gets fresh question and option IDs and a code not used elsewhere.
func (f *Form) DuplicateQuestion(id string) (Question, error) {
	i := f.QuestionIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	dup := CloneQuestion(f.Questions[i])
	b := dup.Base()
	b.ID = NewID()
	b.Code = f.uniqueCode(b.Code)
	switch v := dup.(type) {
	case *SingleSelectQuestion:
		freshOptionIDs(v.Options)
	case *MultiSelectQuestion:
		freshOptionIDs(v.Options)
	}
	f.InsertQuestion(i+1, dup)
	return dup, nil
}

func freshOptionIDs(opts []Option) {
	for i := range opts {
		opts[i].ID = NewID()
	}
}

func (f *Form) codeInUse(code string) bool {
	for _, q := range f.Questions {
		if q != nil && q.Base().Code == code {
			return true
		}
	}
	return false
}

// uniqueCode derives an unused code from base by appending a counter,
// trimming base so the result stays within MaxCodeLength.
func (f *Form) uniqueCode(base string) string {
	if base == "" {
		base = "Q"
	}
	for n := 2; ; n++ {
		suffix := strconv.Itoa(n)
		stem := base
		if len(stem)+len(suffix) > MaxCodeLength {
			stem = stem[:MaxCodeLength-len(suffix)]
		}
		if c := stem + suffix; !f.codeInUse(c) {
			return c
		}
	}
}

// AddLanguage makes code available. Its entries start empty, or as copies of
// the copyFrom language's texts when copyFrom is an available language.
// Existing entries for code are kept.
func (f *Form) AddLanguage(code, copyFrom string) error {
	code = NormalizeLanguageCode(code)
	if !IsValidLanguageCode(code) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}
	if f.HasLanguage(code) {
		return fmt.Errorf("%w: %s", ErrLanguageExists, code)
	}
	if copyFrom != "" && !f.HasLanguage(copyFrom) {
		return fmt.Errorf("%w: %s", ErrLanguageNotFound, NormalizeLanguageCode(copyFrom))
	}
	f.AvailableLanguages = append(f.AvailableLanguages, code)
	f.mapTexts(func(t TranslatedText) TranslatedText {
		switch {
		case t == nil || t.Has(code):
			return t
		case copyFrom != "":
			return t.WithClonedTranslation(copyFrom, code, "")
		default:
			return EnsureComplete(t, []string{code}, "")
		}
	})
	return nil
}

// ChangeLanguageCode renames an available language in every translated field.
// Existing entries for to are overwritten.
func (f *Form) ChangeLanguageCode(from, to string) error {
	from, to = NormalizeLanguageCode(from), NormalizeLanguageCode(to)
	if !IsValidLanguageCode(to) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, to)
	}
	if !f.HasLanguage(from) {
		return fmt.Errorf("%w: %s", ErrLanguageNotFound, from)
	}
	if from == to {
		return nil
	}
	if f.HasLanguage(to) {
		return fmt.Errorf("%w: %s", ErrLanguageExists, to)
	}
	for i, l := range f.AvailableLanguages {
		if l == from {
			f.AvailableLanguages[i] = to
		}
	}
	if f.DefaultLanguage == from {
		f.DefaultLanguage = to
	}
	f.mapTexts(func(t TranslatedText) TranslatedText {
		if t == nil {
			return nil
		}
		return t.WithLanguageCode(from, to, "")
	})
	return nil
}

// SetDefaultLanguage changes the reference language to an available one.
func (f *Form) SetDefaultLanguage(code string) error {
	code = NormalizeLanguageCode(code)
	if !f.HasLanguage(code) {
		return fmt.Errorf("%w: %s", ErrLanguageNotFound, code)
	}
	f.DefaultLanguage = code
	return nil
}

// TransitionTo moves the form to status when CanTransition allows it.
func (f *Form) TransitionTo(status FormStatus) error {
	if !CanTransition(f.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.Status, status)
	}
	f.Status = status
	return nil
}

func (f *Form) mapTexts(fn func(TranslatedText) TranslatedText) {
	f.Name = fn(f.Name)
	f.Description = fn(f.Description)
	for _, q := range f.Questions {
		if q != nil {
			q.mapTexts(fn)
		}
	}
}

func completeQuestion(q Question, languages []string) {
	if q == nil {
		return
	}
	q.mapTexts(func(t TranslatedText) TranslatedText {
		return EnsureComplete(t, languages, "")
	})
}

// EnsureCompleteness returns a copy of f in which every translated field,
// including optional ones, holds an entry for every available language.
// The default language is added to the available set when missing.
func EnsureCompleteness(f *Form) *Form {
	out := f.Clone()
	if out == nil {
		return nil
	}
	if out.DefaultLanguage != "" && !out.HasLanguage(out.DefaultLanguage) {
		out.AvailableLanguages = append(out.AvailableLanguages, NormalizeLanguageCode(out.DefaultLanguage))
	}
	langs := out.AvailableLanguages
	out.Name = EnsureComplete(out.Name, langs, "")
	out.Description = EnsureComplete(out.Description, langs, "")
	for _, q := range out.Questions {
		completeQuestion(q, langs)
	}
	if out.Questions == nil {
		out.Questions = Questions{}
	}
	return out
}
