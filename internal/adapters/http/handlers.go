package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/booking"
	"gymhub/internal/domain/equipment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/outbox"
	"gymhub/internal/domain/payment"
	"gymhub/internal/domain/story"
	"gymhub/internal/domain/trainer"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// WithUnsafe is not set, and raw HTML in the input is shown escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
		renderer.WithNodeRenderers(util.Prioritized(rawHTMLEscaper{}, 100)),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

// formReader reads trimmed form values.
type formReader struct {
	r *http.Request
}

func (f formReader) str(key string) string {
	return strings.TrimSpace(f.r.FormValue(key))
}

// num returns 0 for an empty field and -1 for one that is not a whole
// number, so range validation reports it.
func (f formReader) num(key string) int {
	s := f.str(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// bindInput fills dst from a form post through fill, or from a strict JSON body.
// It answers 400 and returns false when the body cannot be read.
func bindInput(w http.ResponseWriter, r *http.Request, dst any, fill func(formReader)) bool {
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return false
		}
		fill(formReader{r})
		return true
	}
	if err := strictDecode(r, dst); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case validation.Messages(err) != nil:
		return http.StatusUnprocessableEntity
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, trainer.ErrNotFound),
		errors.Is(err, gymclass.ErrNotFound),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, equipment.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, story.ErrNotFound),
		errors.Is(err, outbox.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrators.ErrForbidden),
		errors.Is(err, gymclass.ErrNotOwner),
		errors.Is(err, booking.ErrNotOwner):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError answers a failed operation. Validation problems go back to the
// form through rerender (HTML) or as {"errors": [...]} (JSON).
func writeError(w http.ResponseWriter, r *http.Request, err error, rerender func(status int, msgs []string)) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		internalError(w, err)
	case http.StatusUnprocessableEntity:
		msgs := validation.Messages(err)
		if isHTMLRequest(r) && rerender != nil {
			rerender(status, msgs)
			return
		}
		writeJSON(w, status, map[string]any{"errors": msgs})
	default:
		http.Error(w, http.StatusText(status)+": "+err.Error(), status)
	}
}

// done finishes a successful write: HTML clients are redirected to target,
// JSON clients get status with body v (or no body when v is nil).
func done(w http.ResponseWriter, r *http.Request, target string, status int, v any) {
	if isHTMLRequest(r) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, v)
}

// actor returns the logged-in account as an orchestrator actor.
// Routes are registered behind RequireRole, so the session is always present.
func actor(r *http.Request) orchestrators.Actor {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return orchestrators.Actor{AccountID: sess.AccountID, Role: sess.Role}
}

// flash reads the one-shot notice passed through the ?msg= query parameter.
func flash(r *http.Request) string {
	return r.URL.Query().Get("msg")
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data map[string]any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentRole":    func() string { return sess.Role },
		"currentEmail":   func() string { return sess.Email },
		"currentName":    func() string { return sess.Name },
		"isLoggedIn":     func() bool { return ok },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken":      func() string { return csrf.Token(r) },
		"renderMarkdown": renderMarkdown,
		"money":          payment.FormatCents,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2 Jan 2006")
		},
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"when": func(t time.Time) string {
			return t.In(location).Format("Mon 2 Jan 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"list": func(items ...string) []string { return items },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
