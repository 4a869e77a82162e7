// Command formctl validates form definition files and evaluates display logic
// offline.
//
//	formctl validate -file form.yaml [-lang RO] [-all]
//	formctl visibility -file form.json -answers answers.json
//	formctl normalize -file form.json [-format yaml]
//	formctl sample [-code SAMPLE] [-languages EN,RO] [-format json]
//	formctl export -file form.json [-kind questions|translations]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/soaringjerry/Synform/internal/forms"
	"github.com/soaringjerry/Synform/internal/services"
)

// errIssues marks a run that completed but found problems in the input.
var errIssues = errors.New("issues found")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "validate":
		err = cmdValidate(args[1:], stdout)
	case "visibility":
		err = cmdVisibility(args[1:], stdout)
	case "normalize":
		err = cmdNormalize(args[1:], stdout)
	case "sample":
		err = cmdSample(args[1:], stdout)
	case "export":
		err = cmdExport(args[1:], stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "formctl: unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errIssues):
		return 1
	case errors.Is(err, flag.ErrHelp):
		return 0
	default:
		fmt.Fprintf(stderr, "formctl: %v\n", err)
		return 1
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: formctl <validate|visibility|normalize|sample|export> [flags]")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func loadForm(path string) (*forms.Form, error) {
	if path == "" {
		return nil, errors.New("-file is required")
	}
	return forms.LoadFile(path)
}

func printIssues(w io.Writer, lang string, issues []forms.Issue) {
	for _, is := range issues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", lang, is.String(), is.Kind, is.Message)
	}
}

func cmdValidate(args []string, stdout io.Writer) error {
	fs := newFlagSet("validate")
	file := fs.String("file", "", "form definition (.json, .yaml)")
	lang := fs.String("lang", "", "active editing language, defaults to the form default")
	all := fs.Bool("all", false, "validate every available language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := loadForm(*file)
	if err != nil {
		return err
	}
	if *all {
		byLang := forms.ValidateAll(f)
		if len(byLang) == 0 {
			fmt.Fprintln(stdout, "ok")
			return nil
		}
		langs := make([]string, 0, len(byLang))
		for l := range byLang {
			langs = append(langs, l)
		}
		slices.Sort(langs)
		for _, l := range langs {
			printIssues(stdout, l, byLang[l])
		}
		return errIssues
	}
	active := forms.NormalizeLanguageCode(*lang)
	if active == "" {
		active = f.DefaultLanguage
	}
	issues := forms.Validate(f, active)
	if len(issues) == 0 {
		fmt.Fprintln(stdout, "ok")
		return nil
	}
	printIssues(stdout, active, issues)
	return errIssues
}

func cmdVisibility(args []string, stdout io.Writer) error {
	fs := newFlagSet("visibility")
	file := fs.String("file", "", "form definition (.json, .yaml)")
	answersPath := fs.String("answers", "", "answers as a JSON array; empty means no answers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := loadForm(*file)
	if err != nil {
		return err
	}
	var answers forms.Answers
	if *answersPath != "" {
		b, err := os.ReadFile(*answersPath)
		if err != nil {
			return err
		}
		if answers, err = forms.DecodeAnswers(b); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	vis := forms.ComputeVisibility(f, answers)
	for _, q := range f.Questions {
		if q == nil {
			continue
		}
		b := q.Base()
		state := "hidden"
		if vis.IsVisible(b.ID) {
			state = "visible"
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", b.Code, b.ID, state)
	}
	return nil
}

func cmdNormalize(args []string, stdout io.Writer) error {
	fs := newFlagSet("normalize")
	file := fs.String("file", "", "form definition (.json, .yaml)")
	format := fs.String("format", "json", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := loadForm(*file)
	if err != nil {
		return err
	}
	return write(stdout, forms.EnsureCompleteness(f), *format)
}

func cmdSample(args []string, stdout io.Writer) error {
	fs := newFlagSet("sample")
	code := fs.String("code", "SAMPLE", "form code")
	languages := fs.String("languages", "EN", "comma separated language codes, the first is the default")
	format := fs.String("format", "json", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var langs []string
	for _, l := range strings.Split(*languages, ",") {
		if l = forms.NormalizeLanguageCode(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return errors.New("-languages needs at least one code")
	}
	for _, l := range langs {
		if !forms.IsValidLanguageCode(l) {
			return fmt.Errorf("invalid language code %q", l)
		}
	}
	return write(stdout, forms.SampleForm(*code, langs[0], langs), *format)
}

func cmdExport(args []string, stdout io.Writer) error {
	fs := newFlagSet("export")
	file := fs.String("file", "", "form definition (.json, .yaml)")
	kind := fs.String("kind", string(services.ExportQuestions), "questions or translations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := loadForm(*file)
	if err != nil {
		return err
	}
	b, err := services.ExportCSV(forms.EnsureCompleteness(f), services.ExportKind(strings.ToLower(*kind)))
	if err != nil {
		return err
	}
	_, err = stdout.Write(b)
	return err
}

func write(w io.Writer, f *forms.Form, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case "yaml", "yml":
		b, err := forms.EncodeYAML(f)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
