package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/soaringjerry/Synform/internal/forms"
	"github.com/soaringjerry/Synform/internal/middleware"
	"github.com/soaringjerry/Synform/internal/services"
	"github.com/soaringjerry/Synform/internal/utils"
)

// maxBody caps request payloads; a form with a few hundred questions in
// several languages stays well below it.
const maxBody = 4 << 20

type Router struct {
	svc *services.FormService
	log *slog.Logger
}

// NewRouter builds the form service on top of store.
func NewRouter(store Store, opts services.FormServiceOptions) *Router {
	return NewRouterWithService(services.NewFormService(NewFormStore(store), opts), opts.Logger)
}

func NewRouterWithService(svc *services.FormService, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{svc: svc, log: logger}
}

func (rt *Router) Service() *services.FormService { return rt.svc }

// Register mounts the API on mux. Editor routes require a bearer token, so the
// final handler must run behind middleware.WithAuth.
func (rt *Router) Register(mux *http.ServeMux) {
	editor := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.Handle("POST /api/seed", editor(rt.handleSeed))
	mux.Handle("GET /api/forms", editor(rt.handleListForms))
	mux.Handle("POST /api/forms", editor(rt.handleCreateForm))
	mux.Handle("GET /api/forms/{id}", editor(rt.handleGetForm))
	mux.Handle("PUT /api/forms/{id}", editor(rt.handleUpdateForm))
	mux.Handle("DELETE /api/forms/{id}", editor(rt.handleDeleteForm))

	mux.Handle("POST /api/forms/{id}/questions", editor(rt.handleAddQuestion))
	mux.Handle("PUT /api/forms/{id}/questions/order", editor(rt.handleReorder))
	mux.Handle("DELETE /api/forms/{id}/questions/{qid}", editor(rt.handleRemoveQuestion))
	mux.Handle("POST /api/forms/{id}/questions/{qid}/duplicate", editor(rt.handleDuplicateQuestion))
	mux.Handle("POST /api/forms/{id}/questions/{qid}/move", editor(rt.handleMoveQuestion))

	mux.Handle("POST /api/forms/{id}/languages", editor(rt.handleAddLanguage))
	mux.Handle("PUT /api/forms/{id}/languages/{code}", editor(rt.handleChangeLanguage))
	mux.Handle("PUT /api/forms/{id}/default-language", editor(rt.handleDefaultLanguage))

	mux.Handle("GET /api/forms/{id}/validate", editor(rt.handleValidate))
	mux.Handle("POST /api/forms/{id}/publish", editor(rt.handlePublish))
	mux.Handle("POST /api/forms/{id}/archive", editor(rt.handleArchive))
	mux.Handle("GET /api/forms/{id}/audit", editor(rt.handleAudit))
	mux.Handle("GET /api/forms/{id}/export", editor(rt.handleExport))
	mux.Handle("PUT /api/forms/{id}/translations", editor(rt.handleImportTranslations))

	// Respondents evaluate published forms without a token.
	mux.HandleFunc("POST /api/forms/{id}/visibility", rt.handleVisibility)
}

func editorOf(r *http.Request) (tenantID, actor string) {
	tenantID, _ = middleware.TenantIDFromContext(r.Context())
	return tenantID, middleware.ActorFromContext(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return services.NewInvalidError("request body required")
		}
		return services.NewInvalidError("invalid JSON: " + err.Error())
	}
	return nil
}

type errorBody struct {
	Error   string                   `json:"error"`
	Title   string                   `json:"title"`
	Message string                   `json:"message"`
	Issues  map[string][]forms.Issue `json:"issues,omitempty"`
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := middleware.LanguageFromContext(r.Context())
	if pe, ok := services.AsPublishError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: "unpublishable", Title: utils.T(lang, "error.unpublished"), Message: pe.Error(), Issues: pe.Issues,
		})
		return
	}
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, errorBody{Error: string(se.Code), Title: utils.T(lang, "error."+string(se.Code)), Message: se.Message})
		return
	}
	rt.log.Error("request failed", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Title: utils.T(lang, "error.internal"), Message: "internal error"})
}

// POST /api/seed
func (rt *Router) handleSeed(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	rec, err := rt.svc.SeedSample(tid, actor)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GET /api/forms
func (rt *Router) handleListForms(w http.ResponseWriter, r *http.Request) {
	tid, _ := editorOf(r)
	list, err := rt.svc.ListForms(tid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": list})
}

// POST /api/forms
func (rt *Router) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var f forms.Form
	if err := decodeBody(r, &f); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.CreateForm(tid, actor, &f)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GET /api/forms/{id}
func (rt *Router) handleGetForm(w http.ResponseWriter, r *http.Request) {
	tid, _ := editorOf(r)
	rec, err := rt.svc.GetForm(tid, r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PUT /api/forms/{id}  {version, form}
func (rt *Router) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Version int         `json:"version"`
		Form    *forms.Form `json:"form"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.UpdateForm(tid, actor, r.PathValue("id"), req.Form, req.Version)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /api/forms/{id}
func (rt *Router) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	if err := rt.svc.DeleteForm(tid, actor, r.PathValue("id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/forms/{id}/questions  {question, index?}
func (rt *Router) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question json.RawMessage `json:"question"`
		Index    *int            `json:"index"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if len(req.Question) == 0 {
		rt.writeError(w, r, services.NewInvalidError("question required"))
		return
	}
	q, err := forms.DecodeQuestion(req.Question)
	if err != nil {
		rt.writeError(w, r, services.NewInvalidError(err.Error()))
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.AddQuestion(tid, actor, r.PathValue("id"), q, index)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// PUT /api/forms/{id}/questions/order  {order: [ids]}
func (rt *Router) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.ReorderQuestions(tid, actor, r.PathValue("id"), req.Order)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /api/forms/{id}/questions/{qid}
func (rt *Router) handleRemoveQuestion(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	rec, err := rt.svc.RemoveQuestion(tid, actor, r.PathValue("id"), r.PathValue("qid"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// POST /api/forms/{id}/questions/{qid}/duplicate
func (rt *Router) handleDuplicateQuestion(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	rec, q, err := rt.svc.DuplicateQuestion(tid, actor, r.PathValue("id"), r.PathValue("qid"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"form": rec, "question": q})
}

// POST /api/forms/{id}/questions/{qid}/move  {direction: UP|DOWN}
func (rt *Router) handleMoveQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	dir := forms.MoveDirection(strings.ToUpper(strings.TrimSpace(req.Direction)))
	tid, actor := editorOf(r)
	rec, err := rt.svc.MoveQuestion(tid, actor, r.PathValue("id"), r.PathValue("qid"), dir)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// POST /api/forms/{id}/languages  {code, copy_from?}
func (rt *Router) handleAddLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code"`
		CopyFrom string `json:"copy_from"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.AddLanguage(tid, actor, r.PathValue("id"), req.Code, req.CopyFrom)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PUT /api/forms/{id}/languages/{code}  {code}
func (rt *Router) handleChangeLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.ChangeLanguageCode(tid, actor, r.PathValue("id"), r.PathValue("code"), req.Code)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PUT /api/forms/{id}/default-language  {code}
func (rt *Router) handleDefaultLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, actor := editorOf(r)
	rec, err := rt.svc.SetDefaultLanguage(tid, actor, r.PathValue("id"), req.Code)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/forms/{id}/validate?lang=RO
func (rt *Router) handleValidate(w http.ResponseWriter, r *http.Request) {
	tid, _ := editorOf(r)
	lang := forms.NormalizeLanguageCode(r.URL.Query().Get("lang"))
	issues, err := rt.svc.ValidateForm(tid, r.PathValue("id"), lang)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(issues) == 0, "issues": issues})
}

// POST /api/forms/{id}/publish
func (rt *Router) handlePublish(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	rec, err := rt.svc.PublishForm(tid, actor, r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// POST /api/forms/{id}/archive
func (rt *Router) handleArchive(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	rec, err := rt.svc.ArchiveForm(tid, actor, r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/forms/{id}/audit
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	tid, _ := editorOf(r)
	entries, err := rt.svc.AuditLog(tid, r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// GET /api/forms/{id}/export?kind=questions|translations
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	tid, _ := editorOf(r)
	kind := services.ExportKind(strings.ToLower(r.URL.Query().Get("kind")))
	b, err := rt.svc.ExportForm(tid, r.PathValue("id"), kind)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if kind == "" {
		kind = services.ExportQuestions
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+r.PathValue("id")+"_"+string(kind)+".csv\"")
	_, _ = w.Write(b)
}

// PUT /api/forms/{id}/translations  (text/csv body as produced by export?kind=translations)
func (rt *Router) handleImportTranslations(w http.ResponseWriter, r *http.Request) {
	tid, actor := editorOf(r)
	rec, n, err := rt.svc.ImportTranslations(tid, actor, r.PathValue("id"), io.LimitReader(r.Body, maxBody))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form": rec, "changed": n})
}

// POST /api/forms/{id}/visibility  {answers: [...]}
// A valid editor token previews drafts; everyone else sees published forms only.
func (rt *Router) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers forms.Answers `json:"answers"`
	}
	if err := decodeBody(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tid, _ := editorOf(r)
	vis, err := rt.svc.Visibility(tid, r.PathValue("id"), req.Answers)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	visible := make([]string, 0, len(vis))
	hidden := make([]string, 0, len(vis))
	for _, id := range slices.Sorted(maps.Keys(vis)) {
		if vis[id] {
			visible = append(visible, id)
		} else {
			hidden = append(hidden, id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"visibility": vis, "visible": visible, "hidden": hidden})
}
