package web

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
	"github.com/hpungsan/slate/internal/ops"
)

// maxCheckBody bounds the outline pasted into the check form.
const maxCheckBody = 4 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    drafts.Store
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /drafts, newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")

	result, err := ops.DraftList(r.Context(), h.store, ops.DraftListInput{
		Type:   typ,
		Limit:  parseIntParam(r, "limit", 20),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Drafts",
			Version: h.renderer.version,
			Nav:     "drafts",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Type:       typ,
	})
}

// HandleDetail handles GET /drafts/{id}. Outline drafts also get their
// slide table and compliance report.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("draft ID is required"))
		return
	}

	draft, err := ops.DraftGet(r.Context(), h.store, ops.DraftGetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, draft)
		return
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   displayName(draft.Title, draft.ID),
			Version: h.renderer.version,
			Nav:     "drafts",
		},
		Draft:       draft,
		DisplayName: displayName(draft.Title, draft.ID),
		DataJSON:    indentJSON(draft.Data),
	}

	if draft.Type == ops.DefaultDraftType {
		if o, err := deck.ParseOutline(draft.Data); err == nil {
			for i, s := range o.Slides {
				data.Slides = append(data.Slides, SlideRow{Index: i, Layout: s.Layout, Title: s.Field("title")})
			}
		}
		if check, err := ops.Check(h.cfg, ops.CheckInput{Outline: draft.Data}); err == nil {
			data.Check = check
			data.ReportHTML = reportHTML(check)
		}
	}

	h.renderer.renderPage(w, r, "detail", data)
}

// HandleSlideElements handles GET /drafts/{id}/slides/{index}/elements and
// returns the generated canvas elements for one slide of an outline draft.
func (h *Handlers) HandleSlideElements(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("slide index must be an integer"))
		return
	}

	draft, err := ops.DraftGet(r.Context(), h.store, ops.DraftGetInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if draft.Type != ops.DefaultDraftType {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(fmt.Sprintf("draft %s is not an outline", draft.ID)))
		return
	}

	o, err := deck.ParseOutline(draft.Data)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
		return
	}
	if index < 0 || index >= len(o.Slides) {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(fmt.Sprintf("slide index %d out of range (0-%d)", index, len(o.Slides)-1)))
		return
	}

	raw, err := json.Marshal(o.Slides[index])
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}
	out, err := ops.Elements(h.cfg, ops.ElementsInput{Slide: raw})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /drafts/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("draft ID is required"))
		return
	}

	result, err := ops.DraftDelete(r.Context(), h.store, ops.DraftDeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/drafts")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/drafts", http.StatusFound)
}

// HandlePurge handles POST /drafts/purge. With older_than_days it removes
// stale drafts; with all=true it clears the store.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	var (
		result *ops.PurgeOutput
		err    error
	)
	switch days := r.FormValue("older_than_days"); {
	case days != "":
		d, convErr := strconv.Atoi(days)
		if convErr != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		result, err = ops.DraftPurge(r.Context(), h.store, ops.DraftPurgeInput{OlderThanDays: d})
	case r.FormValue("all") == "true":
		result, err = ops.DraftClear(r.Context(), h.store)
	default:
		h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days or all=true is required"))
		return
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/drafts", http.StatusFound)
}

// HandleCheckForm handles GET /check.
func (h *Handlers) HandleCheckForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "check", h.checkPage(""))
}

// HandleCheck handles POST /check: validate a pasted outline.
func (h *Handlers) HandleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckBody)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	outline := strings.TrimSpace(r.FormValue("outline"))
	data := h.checkPage(outline)

	status := http.StatusOK
	result, err := ops.Check(h.cfg, ops.CheckInput{Outline: json.RawMessage(outline)})
	switch {
	case err != nil && wantsJSON(r):
		h.renderer.renderError(w, r, err)
		return
	case err != nil:
		var sErr *errors.SlateError
		if !stderrors.As(err, &sErr) {
			h.renderer.renderError(w, r, err)
			return
		}
		status = sErr.Status
		data.Message = sErr.Message
	case wantsJSON(r):
		renderJSON(w, http.StatusOK, result)
		return
	default:
		data.Result = result
		data.ReportHTML = reportHTML(result)
	}

	if r.Header.Get("HX-Target") == "check-results" {
		h.renderer.renderBlock(w, status, "check", "check-results", data)
		return
	}
	h.renderer.renderPageStatus(w, r, status, "check", data)
}

func (h *Handlers) checkPage(outline string) CheckPageData {
	return CheckPageData{
		PageData: PageData{
			Title:   "Check outline",
			Version: h.renderer.version,
			Nav:     "check",
		},
		Outline: outline,
	}
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// indentJSON pretty-prints raw JSON for display, returning it unchanged
// when it cannot be indented.
func indentJSON(raw json.RawMessage) string {
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(b)
}

// displayName returns the draft title if present, or a truncated ID.
func displayName(title, id string) string {
	if title != "" {
		return title
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
