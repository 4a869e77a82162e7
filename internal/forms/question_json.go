package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownQuestionType is returned when a question's "questionType" tag is not recognised.
var ErrUnknownQuestionType = errors.New("unknown question type")

// questionTypeAliases accepts the tags written by the server-side models.
var questionTypeAliases = map[string]QuestionType{
	"TextQuestion":              QuestionTypeText,
	"NumericQuestion":           QuestionTypeNumber,
	"DateQuestion":              QuestionTypeDate,
	"RatingQuestion":            QuestionTypeRating,
	"SingleSelectionQuestion":   QuestionTypeSingleSelect,
	"MultipleSelectionQuestion": QuestionTypeMultiSelect,
}

// ParseQuestionType resolves a tag, including the legacy aliases.
func ParseQuestionType(tag string) (QuestionType, bool) {
	for _, t := range QuestionTypes {
		if string(t) == tag {
			return t, true
		}
	}
	t, ok := questionTypeAliases[tag]
	return t, ok
}

// Questions is an ordered question list that knows how to decode the tagged union.
type Questions []Question

func (qs *Questions) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Questions, 0, len(raws))
	for i, raw := range raws {
		q, err := DecodeQuestion(raw)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, q)
	}
	*qs = out
	return nil
}

// DecodeQuestion decodes one JSON question into its concrete variant.
func DecodeQuestion(data []byte) (Question, error) {
	var probe struct {
		QuestionType string `json:"questionType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	t, ok := ParseQuestionType(probe.QuestionType)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownQuestionType, probe.QuestionType)
	}
	q := emptyQuestion(t)
	if err := json.Unmarshal(data, q); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return q, nil
}

func emptyQuestion(t QuestionType) Question {
	switch t {
	case QuestionTypeText:
		return &TextQuestion{}
	case QuestionTypeNumber:
		return &NumberQuestion{}
	case QuestionTypeDate:
		return &DateQuestion{}
	case QuestionTypeRating:
		return &RatingQuestion{}
	case QuestionTypeSingleSelect:
		return &SingleSelectQuestion{}
	default:
		return &MultiSelectQuestion{}
	}
}

// UnmarshalYAML decodes each entry into the variant named by its questionType.
func (qs *Questions) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var nodes []yamlQuestion
	if err := unmarshal(&nodes); err != nil {
		return err
	}
	out := make(Questions, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.q)
	}
	*qs = out
	return nil
}

type yamlQuestion struct{ q Question }

func (n *yamlQuestion) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var probe struct {
		QuestionType string `yaml:"questionType"`
	}
	if err := unmarshal(&probe); err != nil {
		return err
	}
	t, ok := ParseQuestionType(probe.QuestionType)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownQuestionType, probe.QuestionType)
	}
	q := emptyQuestion(t)
	if err := unmarshal(q); err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	n.q = q
	return nil
}

// marshalTagged encodes v (a struct) and prepends the discriminant field.
func marshalTagged(field, tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tagJSON, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"` + field + `":`)
	buf.Write(tagJSON)
	if rest := bytes.TrimSpace(body[1:]); len(rest) > 1 {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func (q *TextQuestion) MarshalJSON() ([]byte, error) {
	type plain TextQuestion
	return marshalTagged("questionType", string(QuestionTypeText), (*plain)(q))
}

func (q *NumberQuestion) MarshalJSON() ([]byte, error) {
	type plain NumberQuestion
	return marshalTagged("questionType", string(QuestionTypeNumber), (*plain)(q))
}

func (q *DateQuestion) MarshalJSON() ([]byte, error) {
	type plain DateQuestion
	return marshalTagged("questionType", string(QuestionTypeDate), (*plain)(q))
}

func (q *RatingQuestion) MarshalJSON() ([]byte, error) {
	type plain RatingQuestion
	return marshalTagged("questionType", string(QuestionTypeRating), (*plain)(q))
}

func (q *SingleSelectQuestion) MarshalJSON() ([]byte, error) {
	type plain SingleSelectQuestion
	return marshalTagged("questionType", string(QuestionTypeSingleSelect), (*plain)(q))
}

func (q *MultiSelectQuestion) MarshalJSON() ([]byte, error) {
	type plain MultiSelectQuestion
	return marshalTagged("questionType", string(QuestionTypeMultiSelect), (*plain)(q))
}
