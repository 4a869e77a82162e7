package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownAnswerType is returned when an answer's "$answerType" tag is not recognised.
var ErrUnknownAnswerType = errors.New("unknown answer type")

// Answer is a respondent's current answer to one question. Implemented by the
// six answer variants of this package only.
type Answer interface {
	AnswerType() AnswerType
	ForQuestion() string
	isAnswer()
}

// AnswerBase carries the question reference shared by every answer.
type AnswerBase struct {
	QuestionID string `json:"questionId"`
}

func (b AnswerBase) ForQuestion() string { return b.QuestionID }
func (AnswerBase) isAnswer()             {}

// Number is a numeric answer value as typed by the respondent. It decodes from
// a JSON number or string and is parsed lazily, so bad input stays representable.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = Number(str)
		return nil
	}
	*n = Number(s)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, ok := n.Float(); ok {
		return []byte(strings.TrimSpace(string(n))), nil
	}
	return json.Marshal(string(n))
}

// Float parses the value. Empty, malformed, NaN and infinite values report false.
func (n Number) Float() (float64, bool) {
	return parseNumber(string(n))
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NumberOf formats v as a Number.
func NumberOf(v float64) Number {
	return Number(strconv.FormatFloat(v, 'f', -1, 64))
}

type TextAnswer struct {
	AnswerBase
	Text string `json:"text"`
}

type NumberAnswer struct {
	AnswerBase
	Value Number `json:"value"`
}

type DateAnswer struct {
	AnswerBase
	Date string `json:"date"`
}

type RatingAnswer struct {
	AnswerBase
	Value Number `json:"value"`
}

// SelectedOption references a chosen option; Text holds free-text input.
type SelectedOption struct {
	OptionID string  `json:"optionId"`
	Text     *string `json:"text,omitempty"`
}

type SingleSelectAnswer struct {
	AnswerBase
	Selection *SelectedOption `json:"selection"`
}

type MultiSelectAnswer struct {
	AnswerBase
	Selection []SelectedOption `json:"selection"`
}

func (*TextAnswer) AnswerType() AnswerType         { return AnswerTypeText }
func (*NumberAnswer) AnswerType() AnswerType       { return AnswerTypeNumber }
func (*DateAnswer) AnswerType() AnswerType         { return AnswerTypeDate }
func (*RatingAnswer) AnswerType() AnswerType       { return AnswerTypeRating }
func (*SingleSelectAnswer) AnswerType() AnswerType { return AnswerTypeSingleSelect }
func (*MultiSelectAnswer) AnswerType() AnswerType  { return AnswerTypeMultiSelect }

func (a *TextAnswer) MarshalJSON() ([]byte, error) {
	type plain TextAnswer
	return marshalTagged("$answerType", string(AnswerTypeText), (*plain)(a))
}

func (a *NumberAnswer) MarshalJSON() ([]byte, error) {
	type plain NumberAnswer
	return marshalTagged("$answerType", string(AnswerTypeNumber), (*plain)(a))
}

func (a *DateAnswer) MarshalJSON() ([]byte, error) {
	type plain DateAnswer
	return marshalTagged("$answerType", string(AnswerTypeDate), (*plain)(a))
}

func (a *RatingAnswer) MarshalJSON() ([]byte, error) {
	type plain RatingAnswer
	return marshalTagged("$answerType", string(AnswerTypeRating), (*plain)(a))
}

func (a *SingleSelectAnswer) MarshalJSON() ([]byte, error) {
	type plain SingleSelectAnswer
	return marshalTagged("$answerType", string(AnswerTypeSingleSelect), (*plain)(a))
}

func (a *MultiSelectAnswer) MarshalJSON() ([]byte, error) {
	type plain MultiSelectAnswer
	return marshalTagged("$answerType", string(AnswerTypeMultiSelect), (*plain)(a))
}

// DecodeAnswer decodes one tagged JSON answer.
func DecodeAnswer(data []byte) (Answer, error) {
	var probe struct {
		AnswerType AnswerType `json:"$answerType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	var a Answer
	switch probe.AnswerType {
	case AnswerTypeText:
		a = &TextAnswer{}
	case AnswerTypeNumber:
		a = &NumberAnswer{}
	case AnswerTypeDate:
		a = &DateAnswer{}
	case AnswerTypeRating:
		a = &RatingAnswer{}
	case AnswerTypeSingleSelect:
		a = &SingleSelectAnswer{}
	case AnswerTypeMultiSelect:
		a = &MultiSelectAnswer{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAnswerType, probe.AnswerType)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", probe.AnswerType, err)
	}
	return a, nil
}

// Answers maps question IDs to answers.
type Answers map[string]Answer

// DecodeAnswers reads a JSON array of answers keyed by their question IDs.
// A later answer for the same question replaces an earlier one.
func DecodeAnswers(data []byte) (Answers, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	out := make(Answers, len(raws))
	for i, raw := range raws {
		a, err := DecodeAnswer(raw)
		if err != nil {
			return nil, fmt.Errorf("answer %d: %w", i, err)
		}
		out[a.ForQuestion()] = a
	}
	return out, nil
}

func (as *Answers) UnmarshalJSON(data []byte) error {
	out, err := DecodeAnswers(data)
	if err != nil {
		return err
	}
	*as = out
	return nil
}

// MarshalJSON writes the answers as an array in question ID order.
func (as Answers) MarshalJSON() ([]byte, error) {
	keys := sortedKeys(as)
	list := make([]Answer, 0, len(keys))
	for _, k := range keys {
		list = append(list, as[k])
	}
	return json.Marshal(list)
}
