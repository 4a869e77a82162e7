package services_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Synform/internal/forms"
	"github.com/soaringjerry/Synform/internal/services"
	"github.com/soaringjerry/Synform/internal/services/mock_services"
)

func setupFormService(t *testing.T) (*services.FormService, *mock_services.MockFormStore) {
	ctrl := gomock.NewController(t)
	t.Cleanup(func() { ctrl.Finish() })

	store := mock_services.NewMockFormStore(ctrl)
	svc := services.NewFormService(store, services.FormServiceOptions{
		DefaultLanguage: "en",
		Languages:       []string{"EN", "RO"},
		EvalCacheSize:   16,
	})
	return svc, store
}

func record(tenant string, f *forms.Form) *services.FormRecord {
	return &services.FormRecord{Form: f, TenantID: tenant, Version: 1}
}

func assertCode(t *testing.T, err error, code services.ErrorCode) {
	t.Helper()
	se, ok := services.AsServiceError(err)
	require.True(t, ok, "expected service error, got %v", err)
	assert.Equal(t, code, se.Code)
}

func TestCreateFormFillsDefaults(t *testing.T) {
	svc, store := setupFormService(t)

	store.EXPECT().InsertForm(gomock.Any()).DoAndReturn(func(rec *services.FormRecord) (*services.FormRecord, error) {
		return rec, nil
	})
	store.EXPECT().AddAudit(gomock.Any()).Do(func(e services.AuditEntry) {
		assert.Equal(t, "create_form", e.Action)
		assert.Equal(t, "alice", e.Actor)
	})

	in := &forms.Form{Code: "PETS", Name: forms.TranslatedText{"EN": "Pets"}}
	rec, err := svc.CreateForm("t1", "alice", in)
	require.NoError(t, err)

	assert.Equal(t, "t1", rec.TenantID)
	assert.Equal(t, 1, rec.Version)
	assert.NotEmpty(t, rec.Form.ID)
	assert.Equal(t, forms.StatusDrafted, rec.Form.Status)
	assert.Equal(t, "EN", rec.Form.DefaultLanguage)
	assert.Equal(t, []string{"EN", "RO"}, rec.Form.AvailableLanguages)
	assert.True(t, rec.Form.Name.Has("RO"))
	assert.Empty(t, in.ID, "caller's form is not modified")
}

func TestCreateFormRejections(t *testing.T) {
	svc, store := setupFormService(t)

	_, err := svc.CreateForm("", "alice", &forms.Form{Code: "X"})
	assertCode(t, err, services.ErrorForbidden)

	_, err = svc.CreateForm("t1", "alice", &forms.Form{})
	assertCode(t, err, services.ErrorInvalid)

	_, err = svc.CreateForm("t1", "alice", &forms.Form{Code: "X", Status: forms.StatusPublished})
	assertCode(t, err, services.ErrorInvalid)

	store.EXPECT().GetForm("dup").Return(record("t1", forms.NewForm("X", "EN", nil)), nil)
	_, err = svc.CreateForm("t1", "alice", &forms.Form{ID: "dup", Code: "X"})
	assertCode(t, err, services.ErrorConflict)
}

func TestGetFormChecksTenant(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.NewForm("X", "EN", nil)

	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).Times(2)
	store.EXPECT().GetForm("missing").Return(nil, nil)

	got, err := svc.GetForm("t1", f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.Form.ID)

	_, err = svc.GetForm("t2", f.ID)
	assertCode(t, err, services.ErrorForbidden)

	_, err = svc.GetForm("t1", "missing")
	assertCode(t, err, services.ErrorNotFound)
}

func TestListFormsSummaries(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	store.EXPECT().ListForms("t1").Return([]*services.FormRecord{record("t1", f), nil}, nil)

	list, err := svc.ListForms("t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 6, list[0].Questions)
	assert.Equal(t, "S", list[0].Code)
}

func TestPublishFormRejectsIssuesInAnyLanguage(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN", "RO"})
	f.Questions[0].Base().Text["RO"] = ""
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil)

	_, err := svc.PublishForm("t1", "alice", f.ID)
	pe, ok := services.AsPublishError(err)
	require.True(t, ok, "expected publish error, got %v", err)
	require.Contains(t, pe.Issues, "RO")
	assert.NotContains(t, pe.Issues, "EN")
	assert.Equal(t, "questions.0.text", pe.Issues["RO"][0].String())
}

func TestPublishFormStoresNextVersion(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN", "RO"})
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil)
	store.EXPECT().UpdateForm(gomock.Any()).DoAndReturn(func(rec *services.FormRecord) error {
		assert.Equal(t, 2, rec.Version)
		assert.Equal(t, forms.StatusPublished, rec.Form.Status)
		return nil
	})
	store.EXPECT().AddAudit(gomock.Any())

	rec, err := svc.PublishForm("t1", "alice", f.ID)
	require.NoError(t, err)
	assert.Equal(t, forms.StatusPublished, rec.Form.Status)
	assert.Equal(t, forms.StatusDrafted, f.Status, "stored snapshot is not mutated")
}

func TestArchivedFormsAreReadOnly(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	f.Status = forms.StatusArchived
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).AnyTimes()

	_, err := svc.PublishForm("t1", "alice", f.ID)
	assertCode(t, err, services.ErrorConflict)

	_, err = svc.AddQuestion("t1", "alice", f.ID, forms.NewDateQuestion("Q9", nil), -1)
	assertCode(t, err, services.ErrorConflict)

	_, err = svc.UpdateForm("t1", "alice", f.ID, f, 0)
	assertCode(t, err, services.ErrorConflict)
}

func TestUpdateForm(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).AnyTimes()

	_, err := svc.UpdateForm("t1", "alice", f.ID, f, 7)
	assertCode(t, err, services.ErrorConflict)

	changed := f.Clone()
	changed.Status = forms.StatusPublished
	_, err = svc.UpdateForm("t1", "alice", f.ID, changed, 1)
	assertCode(t, err, services.ErrorInvalid)

	store.EXPECT().UpdateForm(gomock.Any()).Return(nil)
	store.EXPECT().AddAudit(gomock.Any())
	changed = f.Clone()
	changed.ID = "other"
	changed.Status = ""
	changed.Code = "RENAMED"
	rec, err := svc.UpdateForm("t1", "alice", f.ID, changed, 1)
	require.NoError(t, err)
	assert.Equal(t, f.ID, rec.Form.ID)
	assert.Equal(t, forms.StatusDrafted, rec.Form.Status)
	assert.Equal(t, "RENAMED", rec.Form.Code)
}

func TestAddQuestion(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN", "RO"})
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).AnyTimes()

	_, err := svc.AddQuestion("t1", "alice", f.ID, forms.NewDateQuestion("Q1", nil), -1)
	assertCode(t, err, services.ErrorConflict)

	_, err = svc.AddQuestion("t1", "alice", f.ID, forms.NewDateQuestion("", nil), -1)
	assertCode(t, err, services.ErrorInvalid)

	store.EXPECT().UpdateForm(gomock.Any()).Return(nil)
	store.EXPECT().AddAudit(gomock.Any())
	q := forms.NewDateQuestion("Q7", nil)
	rec, err := svc.AddQuestion("t1", "alice", f.ID, q, 0)
	require.NoError(t, err)
	require.Len(t, rec.Form.Questions, 7)
	assert.Equal(t, "Q7", rec.Form.Questions[0].Base().Code)
	assert.True(t, rec.Form.Questions[0].Base().Text.Has("RO"))
}

func TestQuestionEditsMapFormErrors(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).AnyTimes()
	first := f.Questions[0].Base().ID

	_, err := svc.RemoveQuestion("t1", "alice", f.ID, "missing")
	assertCode(t, err, services.ErrorNotFound)

	_, err = svc.MoveQuestion("t1", "alice", f.ID, first, forms.MoveUp)
	assertCode(t, err, services.ErrorInvalid)

	_, err = svc.MoveQuestion("t1", "alice", f.ID, first, "SIDEWAYS")
	assertCode(t, err, services.ErrorInvalid)

	_, err = svc.ReorderQuestions("t1", "alice", f.ID, []string{first})
	assertCode(t, err, services.ErrorInvalid)

	_, err = svc.AddLanguage("t1", "alice", f.ID, "EN", "")
	assertCode(t, err, services.ErrorConflict)

	_, err = svc.SetDefaultLanguage("t1", "alice", f.ID, "DE")
	assertCode(t, err, services.ErrorInvalid)
}

func TestRemoveQuestionNotesDependents(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	number := f.Questions[1].Base().ID
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil)
	store.EXPECT().UpdateForm(gomock.Any()).Return(nil)
	store.EXPECT().AddAudit(gomock.Any()).Do(func(e services.AuditEntry) {
		assert.Equal(t, "remove_question", e.Action)
		assert.Equal(t, number+" dependents=1", e.Note)
	})

	rec, err := svc.RemoveQuestion("t1", "alice", f.ID, number)
	require.NoError(t, err)
	assert.Len(t, rec.Form.Questions, 5)
	assert.Len(t, f.Questions, 6)
}

func TestDuplicateQuestion(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	src := f.Questions[4]
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil)
	store.EXPECT().UpdateForm(gomock.Any()).Return(nil)
	store.EXPECT().AddAudit(gomock.Any())

	rec, dup, err := svc.DuplicateQuestion("t1", "alice", f.ID, src.Base().ID)
	require.NoError(t, err)
	assert.Equal(t, dup.Base().ID, rec.Form.Questions[5].Base().ID)
	assert.Equal(t, src.Type(), dup.Type())
	assert.Empty(t, forms.Validate(rec.Form, "EN"))
}

func TestLanguageOperations(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).AnyTimes()
	store.EXPECT().UpdateForm(gomock.Any()).Return(nil).Times(3)
	store.EXPECT().AddAudit(gomock.Any()).Times(3)

	rec, err := svc.AddLanguage("t1", "alice", f.ID, "ro", "EN")
	require.NoError(t, err)
	assert.Equal(t, []string{"EN", "RO"}, rec.Form.AvailableLanguages)
	assert.Equal(t, rec.Form.Name["EN"], rec.Form.Name["RO"])

	rec, err = svc.ChangeLanguageCode("t1", "alice", f.ID, "EN", "DE")
	require.NoError(t, err)
	assert.Equal(t, "DE", rec.Form.DefaultLanguage)

	_, err = svc.SetDefaultLanguage("t1", "alice", f.ID, "EN")
	require.NoError(t, err)
}

func TestValidateForm(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN", "RO"})
	f.Name = forms.TranslatedText{"EN": "Only English", "RO": ""}
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).Times(2)

	issues, err := svc.ValidateForm("t1", f.ID, "")
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)

	issues, err = svc.ValidateForm("t1", f.ID, "ro")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "name", issues[0].String())
}

func TestVisibility(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	number := f.Questions[1]
	rating := f.Questions[2]
	answers := forms.Answers{
		number.Base().ID: &forms.NumberAnswer{AnswerBase: forms.AnswerBase{QuestionID: number.Base().ID}, Value: "2"},
	}

	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).Times(3)

	_, err := svc.Visibility("", f.ID, answers)
	assertCode(t, err, services.ErrorNotFound)

	vis, err := svc.Visibility("t1", f.ID, answers)
	require.NoError(t, err)
	assert.True(t, vis[rating.Base().ID])

	vis, err = svc.Visibility("t1", f.ID, answers)
	require.NoError(t, err)
	assert.True(t, vis[rating.Base().ID])
	assert.Equal(t, uint64(1), svc.EvaluatorStats().Hits)
}

func TestPublicVisibilityOfPublishedForm(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.SampleForm("S", "EN", []string{"EN"})
	f.Status = forms.StatusPublished
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil)

	vis, err := svc.Visibility("", f.ID, nil)
	require.NoError(t, err)
	assert.False(t, vis[f.Questions[2].Base().ID])
	assert.True(t, vis[f.Questions[0].Base().ID])
}

func TestDeleteFormAndAuditLog(t *testing.T) {
	svc, store := setupFormService(t)
	f := forms.NewForm("X", "EN", nil)
	store.EXPECT().GetForm(f.ID).Return(record("t1", f), nil).Times(2)
	store.EXPECT().DeleteForm(f.ID).Return(nil)
	store.EXPECT().AddAudit(gomock.Any())
	store.EXPECT().ListAudit(f.ID).Return([]services.AuditEntry{{Action: "delete_form"}}, nil)

	entries, err := svc.AuditLog("t1", f.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, svc.DeleteForm("t1", "alice", f.ID))
}

func TestSeedSample(t *testing.T) {
	svc, store := setupFormService(t)
	store.EXPECT().GetForm(gomock.Any()).Return(nil, nil)
	store.EXPECT().InsertForm(gomock.Any()).Return(nil, nil)
	store.EXPECT().AddAudit(gomock.Any())

	rec, err := svc.SeedSample("t1", "alice")
	require.NoError(t, err)
	assert.Len(t, rec.Form.Questions, 6)
	assert.Equal(t, []string{"EN", "RO"}, rec.Form.AvailableLanguages)
	assert.True(t, forms.IsPublishable(rec.Form))
}
