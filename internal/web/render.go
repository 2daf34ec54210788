package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/hpungsan/slate/internal/compliance"
	"github.com/hpungsan/slate/internal/errors"
	"github.com/hpungsan/slate/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "drafts", "check"
}

// ListPageData is the template data for the draft list page.
type ListPageData struct {
	PageData
	Items      []ops.DraftSummary
	Pagination ops.Pagination
	Type       string
}

// SlideRow is one line of the slide table on the detail page.
type SlideRow struct {
	Index  int
	Layout string
	Title  string
}

// DetailPageData is the template data for the draft detail page.
type DetailPageData struct {
	PageData
	Draft       *ops.DraftGetOutput
	DisplayName string
	Slides      []SlideRow
	Check       *ops.CheckOutput
	ReportHTML  template.HTML
	DataJSON    string
}

// CheckPageData is the template data for the compliance check page.
type CheckPageData struct {
	PageData
	Outline    string
	Result     *ops.CheckOutput
	ReportHTML template.HTML
	Message    string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer holds one template set per page, each layered over layout.html.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

var pageFiles = []string{"list", "detail", "check", "error"}

// NewRenderer parses layout.html plus each page file from templateFS.
// Parse failures panic; templates are embedded at build time.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	base := template.Must(template.New("layout").Funcs(template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"formatTime":  formatTime,
		"formatCount": formatCount,
		"deref":       deref,
		"hasValue":    hasValue,
	}).ParseFS(templateFS, "layout.html"))

	r := &Renderer{templates: make(map[string]*template.Template, len(pageFiles)), version: version}
	for _, page := range pageFiles {
		t := template.Must(base.Clone())
		r.templates[page] = template.Must(t.ParseFS(templateFS, page+".html"))
	}
	return r
}

func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, page string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, page, data)
}

// renderPageStatus renders a full page, or only its "content" block when
// htmx is swapping the main region.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, page string, data any) {
	block := "layout"
	if isHTMX(req) {
		block = "content"
	}
	r.renderBlock(w, status, page, block, data)
}

// renderBlock executes one named block of a page into a buffer first, so a
// template failure still yields a clean 500.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		log.Printf("web: unknown page %q", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		log.Printf("web: render %s/%s: %v", page, block, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func isHTMX(req *http.Request) bool {
	return req != nil && req.Header.Get("HX-Request") == "true"
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var sErr *errors.SlateError
	if !stderrors.As(err, &sErr) {
		sErr = errors.NewInternal(err)
	}

	status := sErr.Status
	message := sErr.Message
	if sErr.Code == errors.ErrInternal {
		log.Printf("internal error: %v", err)
		message = "an internal error occurred"
	}

	switch {
	case isHTMX(req):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
	case wantsJSON(req):
		renderJSON(w, status, map[string]any{
			"error": map[string]any{"code": string(sErr.Code), "message": message, "status": status},
		})
	default:
		r.renderPageStatus(w, req, status, "error", ErrorPageData{
			PageData:   PageData{Title: fmt.Sprintf("Error %d", status), Version: r.version},
			StatusCode: status,
			Message:    message,
		})
	}
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// reportHTML renders a compliance report, falling back to escaped markdown.
func reportHTML(out *ops.CheckOutput) template.HTML {
	html, err := compliance.RenderHTML(out.Title, out.Result)
	if err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(compliance.Markdown(out.Title, out.Result)) + "</pre>")
	}
	return template.HTML(html)
}

// formatTime formats a millisecond timestamp as "2006-01-02 15:04" UTC.
func formatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}

// formatCount formats n with comma thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}

// deref returns the pointed-to count, or 0 for nil.
func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func hasValue(p *int) bool { return p != nil }
