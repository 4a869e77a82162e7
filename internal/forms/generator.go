package forms

// SampleForm builds a drafted form with one question of every type, texts
// filled for every language and a chain of display logic:
// the rating shows when the number is greater than 0, the date when the
// rating is at least 3, the multi-select when the single-select picks its
// first option.
func SampleForm(code, defaultLanguage string, languages []string) *Form {
	f := NewForm(code, defaultLanguage, languages)
	langs := f.AvailableLanguages
	label := func(s string) TranslatedText {
		t := make(TranslatedText, len(langs))
		for _, l := range langs {
			t[l] = s + " (" + l + ")"
		}
		return t
	}
	f.Name = label("Sample form")
	f.Description = label("A form with every question type")

	text := NewTextQuestion("Q1", langs)
	text.Text = label("What is your name?")

	number := NewNumberQuestion("Q2", langs)
	number.Text = label("How many pets do you have?")

	rating := NewRatingQuestion("Q3", langs, RatingOneTo5)
	rating.Text = label("How much do you like them?")
	rating.LowerLabel = label("Not at all")
	rating.UpperLabel = label("A lot")
	rating.DisplayLogic = &DisplayLogic{ParentQuestionID: number.ID, Condition: ConditionGreaterThan, Value: "0"}

	date := NewDateQuestion("Q4", langs)
	date.Text = label("When did you get your first pet?")
	date.DisplayLogic = &DisplayLogic{ParentQuestionID: rating.ID, Condition: ConditionGreaterEqual, Value: "3"}

	yes, no := NewOption(langs), NewOption(langs)
	yes.Text, no.Text = label("Yes"), label("No")
	single := NewSingleSelectQuestion("Q5", langs, yes, no)
	single.Text = label("Do you want to adopt?")

	dog, cat, other := NewOption(langs), NewOption(langs), NewOption(langs)
	dog.Text, cat.Text, other.Text = label("Dog"), label("Cat"), label("Other")
	other.IsFreeText = true
	multi := NewMultiSelectQuestion("Q6", langs, dog, cat, other)
	multi.Text = label("Which animals?")
	multi.DisplayLogic = &DisplayLogic{ParentQuestionID: single.ID, Condition: ConditionIncludes, Value: yes.ID}

	for _, q := range []Question{text, number, rating, date, single, multi} {
		f.AddQuestion(q)
	}
	return f
}
