package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Synform/internal/forms"
	"github.com/soaringjerry/Synform/internal/middleware"
	"github.com/soaringjerry/Synform/internal/services"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	middleware.SetSecret("router-test-secret")
	t.Cleanup(func() { middleware.SetSecret("") })

	mux := http.NewServeMux()
	NewRouter(NewMemoryStore(), services.FormServiceOptions{
		DefaultLanguage: "EN",
		Languages:       []string{"EN", "RO"},
		EvalCacheSize:   16,
	}).Register(mux)
	h := middleware.Chain(mux, middleware.WithAuth, middleware.Language([]string{"EN", "RO"}, "EN"))
	return &testAPI{t: t, handler: h}
}

func (a *testAPI) token(tenant string) string {
	tok, err := middleware.SignToken("u-"+tenant, tenant, "editor@"+tenant+".example", time.Hour)
	require.NoError(a.t, err)
	return tok
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) *services.FormRecord {
	t.Helper()
	var out services.FormRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	require.NotNil(t, out.Form)
	return &out
}

func (a *testAPI) seed(tok string) *services.FormRecord {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/seed", tok, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeRecord(a.t, rec)
}

func TestEditorRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/forms"},
		{http.MethodPost, "/api/seed"},
		{http.MethodGet, "/api/forms/x"},
		{http.MethodPost, "/api/forms/x/publish"},
	} {
		rec := a.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestSeedPublishAndEvaluate(t *testing.T) {
	a := newTestAPI(t)
	tok := a.token("t1")
	seeded := a.seed(tok)
	f := seeded.Form
	require.Len(t, f.Questions, 6)
	assert.Equal(t, 1, seeded.Version)
	assert.Equal(t, forms.StatusDrafted, f.Status)

	number := f.Questions[1].Base().ID
	rating := f.Questions[2].Base().ID
	date := f.Questions[3].Base().ID
	body := `{"answers":[{"$answerType":"numberAnswer","questionId":"` + number + `","value":2}]}`

	rec := a.do(http.MethodPost, "/api/forms/"+f.ID+"/visibility", "", body)
	assert.Equal(t, http.StatusNotFound, rec.Code, "drafts are hidden from respondents")

	rec = a.do(http.MethodPost, "/api/forms/"+f.ID+"/visibility", tok, body)
	assert.Equal(t, http.StatusOK, rec.Code, "editors preview drafts")

	rec = a.do(http.MethodPost, "/api/forms/"+f.ID+"/publish", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, forms.StatusPublished, decodeRecord(t, rec).Form.Status)

	rec = a.do(http.MethodPost, "/api/forms/"+f.ID+"/visibility", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Visibility map[string]bool `json:"visibility"`
		Visible    []string        `json:"visible"`
		Hidden     []string        `json:"hidden"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Visibility, 6)
	assert.True(t, out.Visibility[number])
	assert.True(t, out.Visibility[rating])
	assert.False(t, out.Visibility[date])
	assert.Contains(t, out.Hidden, date)
	assert.Len(t, out.Visible, 4)
}

func TestPublishReportsIssuesPerLanguage(t *testing.T) {
	a := newTestAPI(t)
	tok := a.token("t1")
	body := `{"code":"PETS","name":{"EN":"Pets","RO":"Animale"},"defaultLanguage":"EN","availableLanguages":["EN","RO"],
	  "questions":[{"questionType":"numberQuestion","id":"q1","code":"Q1","text":{"EN":"How many?"}}]}`
	rec := a.do(http.MethodPost, "/api/forms", tok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeRecord(t, rec)
	assert.Equal(t, "", created.Form.Questions[0].Base().Text["RO"], "missing translations are filled in")

	rec = a.do(http.MethodPost, "/api/forms/"+created.Form.ID+"/publish", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var out struct {
		Error  string                   `json:"error"`
		Issues map[string][]forms.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "unpublishable", out.Error)
	assert.NotContains(t, out.Issues, "EN")
	require.Contains(t, out.Issues, "RO")
	assert.Equal(t, "questions.0.text", out.Issues["RO"][0].String())

	rec = a.do(http.MethodGet, "/api/forms/"+created.Form.ID+"/validate?lang=ro", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v struct {
		Valid  bool          `json:"valid"`
		Issues []forms.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Issues)

	rec = a.do(http.MethodGet, "/api/forms/"+created.Form.ID+"/validate", tok, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.True(t, v.Valid)
	assert.Empty(t, v.Issues)
}

func TestTenantIsolation(t *testing.T) {
	a := newTestAPI(t)
	f := a.seed(a.token("t1")).Form
	other := a.token("t2")

	rec := a.do(http.MethodGet, "/api/forms/"+f.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodGet, "/api/forms", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Forms []services.FormSummary `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Forms)

	rec = a.do(http.MethodGet, "/api/forms/missing", other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuestionRoutes(t *testing.T) {
	a := newTestAPI(t)
	tok := a.token("t1")
	f := a.seed(tok).Form
	base := "/api/forms/" + f.ID

	rec := a.do(http.MethodPost, base+"/questions", tok,
		`{"question":{"questionType":"textQuestion","code":"Q7","text":{"EN":"Anything else?"}}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decodeRecord(t, rec).Form
	require.Len(t, added.Questions, 7)
	q7 := added.Questions[6].Base()
	assert.NotEmpty(t, q7.ID)
	assert.Equal(t, forms.TranslatedText{"EN": "Anything else?", "RO": ""}, q7.Text)

	rec = a.do(http.MethodPost, base+"/questions", tok, `{"question":{"questionType":"textQuestion","code":"Q7"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "codes are unique")

	rec = a.do(http.MethodPost, base+"/questions", tok, `{"question":{"questionType":"sliderQuestion","code":"Q9"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, base+"/questions/"+q7.ID+"/move", tok, `{"direction":"up"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decodeRecord(t, rec).Form
	assert.Equal(t, q7.ID, moved.Questions[5].Base().ID)

	rec = a.do(http.MethodPost, base+"/questions/"+q7.ID+"/move", tok, `{"direction":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, base+"/questions/"+q7.ID+"/duplicate", tok, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dup struct {
		Form     *services.FormRecord `json:"form"`
		Question json.RawMessage      `json:"question"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dup))
	require.Len(t, dup.Form.Form.Questions, 8)
	copied, err := forms.DecodeQuestion(dup.Question)
	require.NoError(t, err)
	assert.NotEqual(t, q7.ID, copied.Base().ID)
	assert.NotEqual(t, "Q7", copied.Base().Code)

	rec = a.do(http.MethodPut, base+"/questions/order", tok, `{"order":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodDelete, base+"/questions/"+copied.Base().ID, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeRecord(t, rec).Form.Questions, 7)

	rec = a.do(http.MethodDelete, base+"/questions/"+copied.Base().ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLanguageRoutes(t *testing.T) {
	a := newTestAPI(t)
	tok := a.token("t1")
	f := a.seed(tok).Form
	base := "/api/forms/" + f.ID

	rec := a.do(http.MethodPost, base+"/languages", tok, `{"code":"fr","copy_from":"EN"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	withFR := decodeRecord(t, rec).Form
	assert.Equal(t, []string{"EN", "RO", "FR"}, withFR.AvailableLanguages)
	assert.Equal(t, withFR.Name["EN"], withFR.Name["FR"])

	rec = a.do(http.MethodPost, base+"/languages", tok, `{"code":"FR"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, base+"/languages", tok, `{"code":"French"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPut, base+"/languages/FR", tok, `{"code":"DE"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"EN", "RO", "DE"}, decodeRecord(t, rec).Form.AvailableLanguages)

	rec = a.do(http.MethodPut, base+"/default-language", tok, `{"code":"de"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "DE", decodeRecord(t, rec).Form.DefaultLanguage)

	rec = a.do(http.MethodPut, base+"/default-language", tok, `{"code":"IT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateArchiveDelete(t *testing.T) {
	a := newTestAPI(t)
	tok := a.token("t1")
	seeded := a.seed(tok)
	base := "/api/forms/" + seeded.Form.ID

	changed := seeded.Form.Clone()
	changed.Name["EN"] = "Renamed"
	rec := a.do(http.MethodPut, base, tok, map[string]any{"version": seeded.Version, "form": changed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeRecord(t, rec)
	assert.Equal(t, seeded.Version+1, updated.Version)
	assert.Equal(t, "Renamed", updated.Form.Name["EN"])

	rec = a.do(http.MethodPut, base, tok, map[string]any{"version": seeded.Version, "form": changed})
	assert.Equal(t, http.StatusConflict, rec.Code, "stale version")

	rec = a.do(http.MethodPut, base, tok, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, base+"/archive", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, forms.StatusArchived, decodeRecord(t, rec).Form.Status)

	rec = a.do(http.MethodPost, base+"/languages", tok, `{"code":"FR"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "archived forms are read-only")

	rec = a.do(http.MethodPost, base+"/publish", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, base+"/audit", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var audit struct {
		Entries []services.AuditEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit))
	actions := make([]string, 0, len(audit.Entries))
	for _, e := range audit.Entries {
		actions = append(actions, e.Action)
		assert.Equal(t, "editor@t1.example", e.Actor)
	}
	assert.Equal(t, []string{"create_form", "update_form", "archive_form"}, actions)

	rec = a.do(http.MethodDelete, base, tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodGet, base, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorTitleFollowsLanguage(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(http.MethodGet, "/api/forms/missing?lang=ro", a.token("t1"), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var out struct {
		Error string `json:"error"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "not_found", out.Error)
	assert.Equal(t, "Nu a fost găsit", out.Title)
}

func TestExportAndImportTranslations(t *testing.T) {
	a := newTestAPI(t)
	tok := a.token("t1")
	form := a.seed(tok)
	base := "/api/forms/" + form.ID()

	res := a.do(http.MethodGet, base+"/export", tok, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "_questions.csv")
	assert.True(t, strings.HasPrefix(res.Body.String(), "position,id,code,type"))

	res = a.do(http.MethodGet, base+"/export?kind=translations", tok, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, strings.HasPrefix(res.Body.String(), "key,EN,RO\n"))

	res = a.do(http.MethodGet, base+"/export?kind=pdf", tok, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	res = a.do(http.MethodGet, base+"/export", a.token("t2"), nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = a.do(http.MethodPut, base+"/translations", tok, "key,RO\nname,Formular exemplu\n")
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var out struct {
		Form    services.FormRecord `json:"form"`
		Changed int                 `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Changed)
	assert.Equal(t, form.Version+1, out.Form.Version)
	assert.Equal(t, "Formular exemplu", out.Form.Form.Name["RO"])

	res = a.do(http.MethodPut, base+"/translations", tok, "key,RO\nquestions.NOPE.text,x\n")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
