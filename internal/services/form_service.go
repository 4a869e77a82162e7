package services

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Synform/internal/forms"
)

// FormStore persists form records and the audit trail.
// GetForm returns (nil, nil) for unknown IDs. UpdateForm stores rec only when
// the stored version is rec.Version-1 and reports a conflict otherwise.
type FormStore interface {
	InsertForm(rec *FormRecord) (*FormRecord, error)
	GetForm(id string) (*FormRecord, error)
	UpdateForm(rec *FormRecord) error
	DeleteForm(id string) error
	ListForms(tenantID string) ([]*FormRecord, error)
	AddAudit(entry AuditEntry)
	ListAudit(target string) ([]AuditEntry, error)
}

type FormServiceOptions struct {
	DefaultLanguage string
	Languages       []string
	// EvalCacheSize bounds the visibility memo; zero disables it.
	EvalCacheSize int
	Logger        *slog.Logger
}

type FormService struct {
	store     FormStore
	now       func() time.Time
	evaluator *forms.Evaluator
	log       *slog.Logger
	defLang   string
	languages []string
}

func NewFormService(store FormStore, opts FormServiceOptions) *FormService {
	def := forms.NormalizeLanguageCode(opts.DefaultLanguage)
	if def == "" {
		def = "EN"
	}
	langs := make([]string, 0, len(opts.Languages))
	for _, l := range opts.Languages {
		if l = forms.NormalizeLanguageCode(l); l != "" {
			langs = append(langs, l)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FormService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		evaluator: forms.NewEvaluator(opts.EvalCacheSize),
		log:       logger,
		defLang:   def,
		languages: langs,
	}
}

// EvaluatorStats exposes the visibility memo counters.
func (s *FormService) EvaluatorStats() forms.EvaluatorStats { return s.evaluator.Stats() }

func (s *FormService) owned(tenantID, id string) (*FormRecord, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	rec, err := s.store.GetForm(id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Form == nil {
		return nil, NewNotFoundError("form not found")
	}
	if rec.TenantID != tenantID {
		return nil, NewForbiddenError("forbidden")
	}
	return rec, nil
}

func (s *FormService) audit(actor, action, target, note string) {
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: action, Target: target, Note: note})
}

// save stores f as the next version of rec and records the action.
func (s *FormService) save(rec *FormRecord, f *forms.Form, actor, action, note string) (*FormRecord, error) {
	next := &FormRecord{
		Form:      f,
		TenantID:  rec.TenantID,
		Version:   rec.Version + 1,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: s.now(),
	}
	if err := s.store.UpdateForm(next); err != nil {
		return nil, err
	}
	s.audit(actor, action, f.ID, note)
	return next, nil
}

// edit applies fn to a copy of the stored form and saves the result.
// Archived forms are read-only.
func (s *FormService) edit(tenantID, actor, id, action string, fn func(f *forms.Form) (string, error)) (*FormRecord, error) {
	rec, err := s.owned(tenantID, id)
	if err != nil {
		return nil, err
	}
	if rec.Form.Status == forms.StatusArchived {
		return nil, NewConflictError("form is archived")
	}
	f := rec.Form.Clone()
	note, err := fn(f)
	if err != nil {
		return nil, fromFormError(err)
	}
	return s.save(rec, f, actor, action, note)
}

func (s *FormService) CreateForm(tenantID, actor string, f *forms.Form) (*FormRecord, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if f == nil {
		return nil, NewInvalidError("form required")
	}
	if strings.TrimSpace(f.Code) == "" {
		return nil, NewInvalidError("code required")
	}
	f = f.Clone()
	switch f.Status {
	case "":
		f.Status = forms.StatusDrafted
	case forms.StatusDrafted:
	default:
		return nil, NewInvalidError("new forms start as " + string(forms.StatusDrafted))
	}
	if f.DefaultLanguage == "" {
		f.DefaultLanguage = s.defLang
	}
	if len(f.AvailableLanguages) == 0 {
		f.AvailableLanguages = append([]string(nil), s.languages...)
	}
	if f.ID == "" {
		f.ID = forms.NewID()
	} else if existing, err := s.store.GetForm(f.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, NewConflictError("form id already exists")
	}
	now := s.now()
	rec := &FormRecord{
		Form:      forms.EnsureCompleteness(f),
		TenantID:  tenantID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.store.InsertForm(rec)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = rec
	}
	s.audit(actor, "create_form", rec.Form.ID, rec.Form.Code)
	return created, nil
}

func (s *FormService) GetForm(tenantID, id string) (*FormRecord, error) {
	return s.owned(tenantID, id)
}

func (s *FormService) ListForms(tenantID string) ([]FormSummary, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	recs, err := s.store.ListForms(tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]FormSummary, 0, len(recs))
	for _, r := range recs {
		if r == nil || r.Form == nil {
			continue
		}
		out = append(out, FormSummary{
			ID:        r.Form.ID,
			Code:      r.Form.Code,
			Status:    r.Form.Status,
			Name:      r.Form.Name,
			Languages: r.Form.AvailableLanguages,
			Questions: len(r.Form.Questions),
			Version:   r.Version,
			UpdatedAt: r.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// UpdateForm replaces the stored schema. expectedVersion, when positive, must
// match the stored version. Status changes go through PublishForm and ArchiveForm.
func (s *FormService) UpdateForm(tenantID, actor, id string, f *forms.Form, expectedVersion int) (*FormRecord, error) {
	if f == nil {
		return nil, NewInvalidError("form required")
	}
	rec, err := s.owned(tenantID, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && expectedVersion != rec.Version {
		return nil, NewConflictError(fmt.Sprintf("version mismatch: have %d, got %d", rec.Version, expectedVersion))
	}
	if rec.Form.Status == forms.StatusArchived {
		return nil, NewConflictError("form is archived")
	}
	if f.Status != "" && f.Status != rec.Form.Status {
		return nil, NewInvalidError("status changes use publish or archive")
	}
	if strings.TrimSpace(f.Code) == "" {
		return nil, NewInvalidError("code required")
	}
	if len(f.AvailableLanguages) == 0 {
		return nil, NewInvalidError("at least one language required")
	}
	next := forms.EnsureCompleteness(f)
	next.ID = rec.Form.ID
	next.Status = rec.Form.Status
	return s.save(rec, next, actor, "update_form", "")
}

func (s *FormService) DeleteForm(tenantID, actor, id string) error {
	if _, err := s.owned(tenantID, id); err != nil {
		return err
	}
	if err := s.store.DeleteForm(id); err != nil {
		return err
	}
	s.audit(actor, "delete_form", id, "")
	s.log.Info("form deleted", slog.String("form_id", id), slog.String("actor", actor))
	return nil
}

// AddQuestion inserts q at index; a negative index appends.
func (s *FormService) AddQuestion(tenantID, actor, formID string, q forms.Question, index int) (*FormRecord, error) {
	if q == nil {
		return nil, NewInvalidError("question required")
	}
	b := q.Base()
	if strings.TrimSpace(b.Code) == "" {
		return nil, NewInvalidError("question code required")
	}
	return s.edit(tenantID, actor, formID, "add_question", func(f *forms.Form) (string, error) {
		for _, existing := range f.Questions {
			if existing != nil && existing.Base().Code == b.Code {
				return "", NewConflictError("question code already used: " + b.Code)
			}
		}
		if b.ID == "" {
			b.ID = forms.NewID()
		} else if _, ok := f.Question(b.ID); ok {
			return "", NewConflictError("question id already used")
		}
		if index < 0 {
			index = len(f.Questions)
		}
		f.InsertQuestion(index, q)
		return b.ID, nil
	})
}

// RemoveQuestion deletes a question. Dependent questions keep their display
// logic and show up as validation issues until re-pointed.
func (s *FormService) RemoveQuestion(tenantID, actor, formID, questionID string) (*FormRecord, error) {
	return s.edit(tenantID, actor, formID, "remove_question", func(f *forms.Form) (string, error) {
		if _, err := f.RemoveQuestion(questionID); err != nil {
			return "", err
		}
		note := questionID
		if deps := forms.Dependents(f, questionID); len(deps) > 0 {
			note += " dependents=" + strconv.Itoa(len(deps))
		}
		return note, nil
	})
}

func (s *FormService) MoveQuestion(tenantID, actor, formID, questionID string, dir forms.MoveDirection) (*FormRecord, error) {
	if dir != forms.MoveUp && dir != forms.MoveDown {
		return nil, NewInvalidError("direction must be UP or DOWN")
	}
	return s.edit(tenantID, actor, formID, "move_question", func(f *forms.Form) (string, error) {
		return questionID + " " + string(dir), f.MoveQuestion(questionID, dir)
	})
}

func (s *FormService) ReorderQuestions(tenantID, actor, formID string, order []string) (*FormRecord, error) {
	if len(order) == 0 {
		return nil, NewInvalidError("order required")
	}
	return s.edit(tenantID, actor, formID, "reorder_questions", func(f *forms.Form) (string, error) {
		return strconv.Itoa(len(order)), f.Reorder(order)
	})
}

func (s *FormService) DuplicateQuestion(tenantID, actor, formID, questionID string) (*FormRecord, forms.Question, error) {
	var dup forms.Question
	rec, err := s.edit(tenantID, actor, formID, "duplicate_question", func(f *forms.Form) (string, error) {
		q, err := f.DuplicateQuestion(questionID)
		if err != nil {
			return "", err
		}
		dup = q
		return questionID + " -> " + q.Base().ID, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, dup, nil
}

func (s *FormService) AddLanguage(tenantID, actor, formID, code, copyFrom string) (*FormRecord, error) {
	return s.edit(tenantID, actor, formID, "add_language", func(f *forms.Form) (string, error) {
		return forms.NormalizeLanguageCode(code), f.AddLanguage(code, copyFrom)
	})
}

func (s *FormService) ChangeLanguageCode(tenantID, actor, formID, from, to string) (*FormRecord, error) {
	return s.edit(tenantID, actor, formID, "change_language", func(f *forms.Form) (string, error) {
		return forms.NormalizeLanguageCode(from) + " -> " + forms.NormalizeLanguageCode(to), f.ChangeLanguageCode(from, to)
	})
}

func (s *FormService) SetDefaultLanguage(tenantID, actor, formID, code string) (*FormRecord, error) {
	return s.edit(tenantID, actor, formID, "set_default_language", func(f *forms.Form) (string, error) {
		return forms.NormalizeLanguageCode(code), f.SetDefaultLanguage(code)
	})
}

// ValidateForm checks the form in lang, or in its default language when lang is empty.
func (s *FormService) ValidateForm(tenantID, formID, lang string) ([]forms.Issue, error) {
	rec, err := s.owned(tenantID, formID)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = rec.Form.DefaultLanguage
	}
	issues := forms.Validate(rec.Form, lang)
	if issues == nil {
		issues = []forms.Issue{}
	}
	return issues, nil
}

// PublishForm validates the form in every available language and moves it to
// Published. Any issue rejects the request with a *PublishError.
func (s *FormService) PublishForm(tenantID, actor, formID string) (*FormRecord, error) {
	rec, err := s.owned(tenantID, formID)
	if err != nil {
		return nil, err
	}
	if !forms.CanTransition(rec.Form.Status, forms.StatusPublished) {
		return nil, NewConflictError(fmt.Sprintf("cannot publish a form that is %s", rec.Form.Status))
	}
	if byLang := forms.ValidateAll(rec.Form); len(byLang) > 0 {
		return nil, &PublishError{Issues: byLang}
	}
	f := rec.Form.Clone()
	f.Status = forms.StatusPublished
	saved, err := s.save(rec, f, actor, "publish_form", "")
	if err != nil {
		return nil, err
	}
	s.log.Info("form published", slog.String("form_id", formID), slog.Int("version", saved.Version))
	return saved, nil
}

func (s *FormService) ArchiveForm(tenantID, actor, formID string) (*FormRecord, error) {
	rec, err := s.owned(tenantID, formID)
	if err != nil {
		return nil, err
	}
	f := rec.Form.Clone()
	if err := f.TransitionTo(forms.StatusArchived); err != nil {
		return nil, fromFormError(err)
	}
	saved, err := s.save(rec, f, actor, "archive_form", "")
	if err != nil {
		return nil, err
	}
	s.log.Info("form archived", slog.String("form_id", formID))
	return saved, nil
}

// Visibility evaluates display logic for answers. Without a tenant the form
// must be published; editors may preview their own drafts.
func (s *FormService) Visibility(tenantID, formID string, answers forms.Answers) (forms.Visibility, error) {
	var rec *FormRecord
	var err error
	if tenantID != "" {
		rec, err = s.owned(tenantID, formID)
	} else {
		rec, err = s.store.GetForm(formID)
		if err == nil && (rec == nil || rec.Form == nil || rec.Form.Status != forms.StatusPublished) {
			err = NewNotFoundError("form not found")
		}
	}
	if err != nil {
		return nil, err
	}
	return s.evaluator.Visibility(rec.Form, answers), nil
}

// ExportForm renders the form as CSV in the requested layout.
func (s *FormService) ExportForm(tenantID, formID string, kind ExportKind) ([]byte, error) {
	rec, err := s.owned(tenantID, formID)
	if err != nil {
		return nil, err
	}
	return ExportCSV(rec.Form, kind)
}

// ImportTranslations applies a translation sheet and saves the form when
// anything changed. The returned count is the number of updated entries; a
// sheet without changes returns the stored record untouched.
func (s *FormService) ImportTranslations(tenantID, actor, formID string, sheet io.Reader) (*FormRecord, int, error) {
	rec, err := s.owned(tenantID, formID)
	if err != nil {
		return nil, 0, err
	}
	if rec.Form.Status == forms.StatusArchived {
		return nil, 0, NewConflictError("form is archived")
	}
	f := rec.Form.Clone()
	n, err := ImportTranslationsCSV(f, sheet)
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return rec, 0, nil
	}
	saved, err := s.save(rec, f, actor, "import_translations", strconv.Itoa(n))
	if err != nil {
		return nil, 0, err
	}
	return saved, n, nil
}

// SeedSample stores a sample form with one question of every type.
func (s *FormService) SeedSample(tenantID, actor string) (*FormRecord, error) {
	langs := s.languages
	if len(langs) == 0 {
		langs = []string{s.defLang}
	}
	f := forms.SampleForm("SAMPLE-"+shortID(6), s.defLang, langs)
	return s.CreateForm(tenantID, actor, f)
}

func (s *FormService) AuditLog(tenantID, formID string) ([]AuditEntry, error) {
	if _, err := s.owned(tenantID, formID); err != nil {
		return nil, err
	}
	return s.store.ListAudit(formID)
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
