package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soaringjerry/Synform/internal/forms"
)

// ExportKind selects the CSV layout produced by ExportCSV.
type ExportKind string

const (
	// ExportQuestions lists one question per row for review.
	ExportQuestions ExportKind = "questions"
	// ExportTranslations lists one translated field per row, one column per
	// language, ready to be filled in and imported back.
	ExportTranslations ExportKind = "translations"
)

// ExportCSV renders f in the requested layout.
func ExportCSV(f *forms.Form, kind ExportKind) ([]byte, error) {
	if f == nil {
		return nil, NewInvalidError("form required")
	}
	switch kind {
	case ExportQuestions, "":
		return ExportQuestionsCSV(f)
	case ExportTranslations:
		return ExportTranslationsCSV(f)
	default:
		return nil, NewInvalidError(fmt.Sprintf("unknown export kind %q", kind))
	}
}

// ExportQuestionsCSV renders one row per question with its display logic and
// the text and options in every available language.
func ExportQuestionsCSV(f *forms.Form) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"position", "id", "code", "type", "parent_code", "condition", "value"}
	for _, l := range f.AvailableLanguages {
		header = append(header, "text_"+strings.ToLower(l))
	}
	for _, l := range f.AvailableLanguages {
		header = append(header, "options_"+strings.ToLower(l))
	}
	_ = w.Write(header)

	codeOf := map[string]string{}
	for _, q := range f.Questions {
		if q != nil {
			codeOf[q.Base().ID] = q.Base().Code
		}
	}
	for i, q := range f.Questions {
		if q == nil {
			continue
		}
		b := q.Base()
		row := []string{strconv.Itoa(i + 1), b.ID, b.Code, string(q.Type()), "", "", ""}
		if dl := b.DisplayLogic; dl != nil {
			parent := codeOf[dl.ParentQuestionID]
			if parent == "" {
				parent = dl.ParentQuestionID
			}
			row[4], row[5], row[6] = parent, string(dl.Condition), dl.Value
			if opt, ok := optionByID(f, dl.ParentQuestionID, dl.Value); ok {
				row[6] = opt.Text.Get(f.DefaultLanguage, dl.Value)
			}
		}
		for _, l := range f.AvailableLanguages {
			row = append(row, b.Text.Get(l, ""))
		}
		opts := forms.OptionsOf(q)
		for _, l := range f.AvailableLanguages {
			texts := make([]string, 0, len(opts))
			for _, o := range opts {
				texts = append(texts, o.Text.Get(l, ""))
			}
			row = append(row, strings.Join(texts, " | "))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func optionByID(f *forms.Form, questionID, optionID string) (forms.Option, bool) {
	q, ok := f.Question(questionID)
	if !ok {
		return forms.Option{}, false
	}
	for _, o := range forms.OptionsOf(q) {
		if o.ID == optionID {
			return o, true
		}
	}
	return forms.Option{}, false
}

// translatedField is one translatable value of a form addressed by a stable
// key built from question codes and option positions.
type translatedField struct {
	key  string
	text *forms.TranslatedText
}

func translatedFields(f *forms.Form) []translatedField {
	out := []translatedField{{"name", &f.Name}, {"description", &f.Description}}
	for _, q := range f.Questions {
		if q == nil {
			continue
		}
		b := q.Base()
		prefix := "questions." + b.Code + "."
		out = append(out,
			translatedField{prefix + "text", &b.Text},
			translatedField{prefix + "helptext", &b.Helptext})
		switch q := q.(type) {
		case *forms.TextQuestion:
			out = append(out, translatedField{prefix + "inputPlaceholder", &q.InputPlaceholder})
		case *forms.NumberQuestion:
			out = append(out, translatedField{prefix + "inputPlaceholder", &q.InputPlaceholder})
		case *forms.RatingQuestion:
			out = append(out,
				translatedField{prefix + "lowerLabel", &q.LowerLabel},
				translatedField{prefix + "upperLabel", &q.UpperLabel})
		case *forms.SingleSelectQuestion:
			out = append(out, optionFields(prefix, q.Options)...)
		case *forms.MultiSelectQuestion:
			out = append(out, optionFields(prefix, q.Options)...)
		}
	}
	return out
}

func optionFields(prefix string, opts []forms.Option) []translatedField {
	out := make([]translatedField, 0, len(opts))
	for i := range opts {
		out = append(out, translatedField{prefix + "options." + strconv.Itoa(i) + ".text", &opts[i].Text})
	}
	return out
}

// ExportTranslationsCSV renders every translatable field as a row keyed by
// its path, with one column per available language.
func ExportTranslationsCSV(f *forms.Form) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(append([]string{"key"}, f.AvailableLanguages...))
	for _, field := range translatedFields(f) {
		row := make([]string, 0, 1+len(f.AvailableLanguages))
		row = append(row, field.key)
		for _, l := range f.AvailableLanguages {
			row = append(row, field.text.Get(l, ""))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ImportTranslationsCSV applies a sheet produced by ExportTranslationsCSV to
// f in place and returns the number of entries that changed. Columns must
// name available languages. Unknown keys are rejected so that a sheet taken
// from an older version of the form is not applied silently. f is only
// modified once the whole sheet has been read without error.
func ImportTranslationsCSV(f *forms.Form, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, NewInvalidError("empty translation sheet")
		}
		return 0, NewInvalidError("read header: " + err.Error())
	}
	if len(header) < 2 || strings.TrimSpace(header[0]) != "key" {
		return 0, NewInvalidError("header must be key followed by language codes")
	}
	langs := make([]string, len(header)-1)
	for i, h := range header[1:] {
		l := forms.NormalizeLanguageCode(h)
		if !f.HasLanguage(l) {
			return 0, NewInvalidError(fmt.Sprintf("language %s is not available in the form", l))
		}
		langs[i] = l
	}

	fields := map[string]*forms.TranslatedText{}
	for _, field := range translatedFields(f) {
		fields[field.key] = field.text
	}
	type update struct {
		text  *forms.TranslatedText
		lang  string
		value string
	}
	var pending []update
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return 0, NewInvalidError(fmt.Sprintf("line %d: %v", line, err))
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		text, ok := fields[strings.TrimSpace(rec[0])]
		if !ok {
			return 0, NewInvalidError(fmt.Sprintf("line %d: unknown key %q", line, rec[0]))
		}
		for i, l := range langs {
			if i+1 >= len(rec) {
				break
			}
			pending = append(pending, update{text, l, rec[i+1]})
		}
	}

	changed := 0
	for _, u := range pending {
		if u.text.Get(u.lang, "") == u.value && (u.value == "" || u.text.Has(u.lang)) {
			continue
		}
		*u.text = u.text.With(u.lang, u.value)
		changed++
	}
	return changed, nil
}
