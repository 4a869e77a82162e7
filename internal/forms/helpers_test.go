package forms

var en = []string{"EN"}

func newTestForm(languages ...string) *Form {
	if len(languages) == 0 {
		languages = en
	}
	f := NewForm("F1", languages[0], languages)
	f.Name = NewTranslatedText(f.AvailableLanguages, "Survey")
	return f
}

func numberQuestion(code, text string) *NumberQuestion {
	q := NewNumberQuestion(code, en)
	q.Text = TranslatedText{"EN": text}
	return q
}

func textQuestion(code, text string) *TextQuestion {
	q := NewTextQuestion(code, en)
	q.Text = TranslatedText{"EN": text}
	return q
}

func option(id, text string) Option {
	return Option{ID: id, Text: TranslatedText{"EN": text}}
}

func singleSelect(code string, opts ...Option) *SingleSelectQuestion {
	q := NewSingleSelectQuestion(code, en, opts...)
	q.Text = TranslatedText{"EN": code}
	return q
}

func dependsOn(q Question, parent Question, cond Condition, value string) {
	q.Base().DisplayLogic = &DisplayLogic{ParentQuestionID: parent.Base().ID, Condition: cond, Value: value}
}

func numberAnswer(q Question, v string) *NumberAnswer {
	return &NumberAnswer{AnswerBase: AnswerBase{QuestionID: q.Base().ID}, Value: Number(v)}
}

func singleAnswer(q Question, optionID string) *SingleSelectAnswer {
	return &SingleSelectAnswer{AnswerBase: AnswerBase{QuestionID: q.Base().ID}, Selection: &SelectedOption{OptionID: optionID}}
}

func answersOf(as ...Answer) map[string]Answer {
	out := make(map[string]Answer, len(as))
	for _, a := range as {
		out[a.ForQuestion()] = a
	}
	return out
}
