package forms

import "github.com/google/uuid"

// NewID returns a fresh identifier for forms, questions and options.
func NewID() string { return uuid.NewString() }

// Question is implemented by the six question variants of this package only.
// Use a type switch on *TextQuestion, *NumberQuestion, *DateQuestion,
// *RatingQuestion, *SingleSelectQuestion and *MultiSelectQuestion.
type Question interface {
	Type() QuestionType
	Base() *QuestionBase
	clone() Question
	mapTexts(fn func(TranslatedText) TranslatedText)
}

// QuestionBase carries the fields shared by every variant.
type QuestionBase struct {
	ID           string         `json:"id" yaml:"id"`
	Code         string         `json:"code" yaml:"code"`
	Text         TranslatedText `json:"text" yaml:"text"`
	Helptext     TranslatedText `json:"helptext,omitempty" yaml:"helptext"`
	DisplayLogic *DisplayLogic  `json:"displayLogic,omitempty" yaml:"displayLogic"`
}

// Base returns the shared fields for reading or editing in place.
func (b *QuestionBase) Base() *QuestionBase { return b }

// HasDisplayLogic reports whether the question opted into conditional visibility.
func (b *QuestionBase) HasDisplayLogic() bool { return b.DisplayLogic != nil }

func (b *QuestionBase) cloneBase() QuestionBase {
	out := *b
	out.Text = b.Text.Clone()
	out.Helptext = b.Helptext.Clone()
	if b.DisplayLogic != nil {
		dl := *b.DisplayLogic
		out.DisplayLogic = &dl
	}
	return out
}

func (b *QuestionBase) mapBaseTexts(fn func(TranslatedText) TranslatedText) {
	b.Text = fn(b.Text)
	b.Helptext = fn(b.Helptext)
}

// DisplayLogic makes a question visible only when the answer to an earlier
// question satisfies Condition against Value. Empty fields mean "not set".
type DisplayLogic struct {
	ParentQuestionID string    `json:"parentQuestionId,omitempty" yaml:"parentQuestionId"`
	Condition        Condition `json:"condition,omitempty" yaml:"condition"`
	Value            string    `json:"value,omitempty" yaml:"value"`
}

// Option is one choice of a selection question.
type Option struct {
	ID         string         `json:"id" yaml:"id"`
	Text       TranslatedText `json:"text" yaml:"text"`
	IsFlagged  bool           `json:"isFlagged" yaml:"isFlagged"`
	IsFreeText bool           `json:"isFreeText" yaml:"isFreeText"`
}

// NewOption returns an option with a fresh ID and text seeded for languages.
func NewOption(languages []string) Option {
	return Option{ID: NewID(), Text: NewTranslatedText(languages, "")}
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	for i, o := range opts {
		o.Text = o.Text.Clone()
		out[i] = o
	}
	return out
}

func mapOptionTexts(opts []Option, fn func(TranslatedText) TranslatedText) {
	for i := range opts {
		opts[i].Text = fn(opts[i].Text)
	}
}

type TextQuestion struct {
	QuestionBase     `yaml:",inline"`
	InputPlaceholder TranslatedText `json:"inputPlaceholder,omitempty" yaml:"inputPlaceholder"`
}

func (q *TextQuestion) Type() QuestionType { return QuestionTypeText }

func (q *TextQuestion) clone() Question {
	return &TextQuestion{QuestionBase: q.cloneBase(), InputPlaceholder: q.InputPlaceholder.Clone()}
}

func (q *TextQuestion) mapTexts(fn func(TranslatedText) TranslatedText) {
	q.mapBaseTexts(fn)
	q.InputPlaceholder = fn(q.InputPlaceholder)
}

type NumberQuestion struct {
	QuestionBase     `yaml:",inline"`
	InputPlaceholder TranslatedText `json:"inputPlaceholder,omitempty" yaml:"inputPlaceholder"`
}

func (q *NumberQuestion) Type() QuestionType { return QuestionTypeNumber }

func (q *NumberQuestion) clone() Question {
	return &NumberQuestion{QuestionBase: q.cloneBase(), InputPlaceholder: q.InputPlaceholder.Clone()}
}

func (q *NumberQuestion) mapTexts(fn func(TranslatedText) TranslatedText) {
	q.mapBaseTexts(fn)
	q.InputPlaceholder = fn(q.InputPlaceholder)
}

type DateQuestion struct {
	QuestionBase `yaml:",inline"`
}

func (q *DateQuestion) Type() QuestionType { return QuestionTypeDate }

func (q *DateQuestion) clone() Question { return &DateQuestion{QuestionBase: q.cloneBase()} }

func (q *DateQuestion) mapTexts(fn func(TranslatedText) TranslatedText) { q.mapBaseTexts(fn) }

type RatingQuestion struct {
	QuestionBase `yaml:",inline"`
	Scale        RatingScale    `json:"scale" yaml:"scale"`
	LowerLabel   TranslatedText `json:"lowerLabel,omitempty" yaml:"lowerLabel"`
	UpperLabel   TranslatedText `json:"upperLabel,omitempty" yaml:"upperLabel"`
}

func (q *RatingQuestion) Type() QuestionType { return QuestionTypeRating }

func (q *RatingQuestion) clone() Question {
	return &RatingQuestion{
		QuestionBase: q.cloneBase(),
		Scale:        q.Scale,
		LowerLabel:   q.LowerLabel.Clone(),
		UpperLabel:   q.UpperLabel.Clone(),
	}
}

func (q *RatingQuestion) mapTexts(fn func(TranslatedText) TranslatedText) {
	q.mapBaseTexts(fn)
	q.LowerLabel = fn(q.LowerLabel)
	q.UpperLabel = fn(q.UpperLabel)
}

type SingleSelectQuestion struct {
	QuestionBase `yaml:",inline"`
	Options      []Option `json:"options" yaml:"options"`
}

func (q *SingleSelectQuestion) Type() QuestionType { return QuestionTypeSingleSelect }

func (q *SingleSelectQuestion) clone() Question {
	return &SingleSelectQuestion{QuestionBase: q.cloneBase(), Options: cloneOptions(q.Options)}
}

func (q *SingleSelectQuestion) mapTexts(fn func(TranslatedText) TranslatedText) {
	q.mapBaseTexts(fn)
	mapOptionTexts(q.Options, fn)
}

type MultiSelectQuestion struct {
	QuestionBase `yaml:",inline"`
	Options      []Option `json:"options" yaml:"options"`
}

func (q *MultiSelectQuestion) Type() QuestionType { return QuestionTypeMultiSelect }

func (q *MultiSelectQuestion) clone() Question {
	return &MultiSelectQuestion{QuestionBase: q.cloneBase(), Options: cloneOptions(q.Options)}
}

func (q *MultiSelectQuestion) mapTexts(fn func(TranslatedText) TranslatedText) {
	q.mapBaseTexts(fn)
	mapOptionTexts(q.Options, fn)
}

// CloneQuestion returns a deep copy of q sharing no maps or slices with it.
func CloneQuestion(q Question) Question {
	if q == nil {
		return nil
	}
	return q.clone()
}

// OptionsOf returns the options of a selection question, or nil for other types.
func OptionsOf(q Question) []Option {
	switch v := q.(type) {
	case *SingleSelectQuestion:
		return v.Options
	case *MultiSelectQuestion:
		return v.Options
	default:
		return nil
	}
}

// HasOption reports whether the selection question q has an option with id.
func HasOption(q Question, id string) bool {
	for _, o := range OptionsOf(q) {
		if o.ID == id {
			return true
		}
	}
	return false
}

func newBase(code string, languages []string) QuestionBase {
	return QuestionBase{
		ID:       NewID(),
		Code:     code,
		Text:     NewTranslatedText(languages, ""),
		Helptext: NewTranslatedText(languages, ""),
	}
}

// NewTextQuestion returns a text question with every translated field seeded for languages.
func NewTextQuestion(code string, languages []string) *TextQuestion {
	return &TextQuestion{QuestionBase: newBase(code, languages), InputPlaceholder: NewTranslatedText(languages, "")}
}

func NewNumberQuestion(code string, languages []string) *NumberQuestion {
	return &NumberQuestion{QuestionBase: newBase(code, languages), InputPlaceholder: NewTranslatedText(languages, "")}
}

func NewDateQuestion(code string, languages []string) *DateQuestion {
	return &DateQuestion{QuestionBase: newBase(code, languages)}
}

// NewRatingQuestion falls back to a five point scale when scale is not valid.
func NewRatingQuestion(code string, languages []string, scale RatingScale) *RatingQuestion {
	if !scale.IsValid() {
		scale = RatingOneTo5
	}
	return &RatingQuestion{
		QuestionBase: newBase(code, languages),
		Scale:        scale,
		LowerLabel:   NewTranslatedText(languages, ""),
		UpperLabel:   NewTranslatedText(languages, ""),
	}
}

// NewSingleSelectQuestion seeds one empty option when none are given.
func NewSingleSelectQuestion(code string, languages []string, options ...Option) *SingleSelectQuestion {
	if len(options) == 0 {
		options = []Option{NewOption(languages)}
	}
	return &SingleSelectQuestion{QuestionBase: newBase(code, languages), Options: options}
}

func NewMultiSelectQuestion(code string, languages []string, options ...Option) *MultiSelectQuestion {
	if len(options) == 0 {
		options = []Option{NewOption(languages)}
	}
	return &MultiSelectQuestion{QuestionBase: newBase(code, languages), Options: options}
}

// NewQuestion builds an empty question of type t, or returns false for unknown types.
func NewQuestion(t QuestionType, code string, languages []string) (Question, bool) {
	switch t {
	case QuestionTypeText:
		return NewTextQuestion(code, languages), true
	case QuestionTypeNumber:
		return NewNumberQuestion(code, languages), true
	case QuestionTypeDate:
		return NewDateQuestion(code, languages), true
	case QuestionTypeRating:
		return NewRatingQuestion(code, languages, RatingOneTo5), true
	case QuestionTypeSingleSelect:
		return NewSingleSelectQuestion(code, languages), true
	case QuestionTypeMultiSelect:
		return NewMultiSelectQuestion(code, languages), true
	default:
		return nil, false
	}
}
