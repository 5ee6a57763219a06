package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anasahmed07/Highflying-Themes/internal/session"
)

const healthCheckTimeout = 2 * time.Second

// writeJSON writes a JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// render executes a page template into a buffer first so a mid-render
// failure does not leave half a page behind a 200.
func (s *Server) render(w http.ResponseWriter, r *http.Request, tpl string, status int, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	sess, ok := data["Session"].(session.Session)
	if !ok {
		sess = s.currentSession(r)
		data["Session"] = sess
	}
	if _, ok := data["Error"]; !ok {
		data["Error"] = sess.Error
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = flashFromRequest(r)
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tpl, data); err != nil {
		s.logger.Error("template render failed", "template", tpl, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows the shared error page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Warn("page error", "status", status, "message", message, "path", r.URL.Path)
	s.render(w, r, "error", status, map[string]any{
		"Title":   "Something went wrong",
		"Status":  status,
		"Message": message,
	})
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "not_found", http.StatusNotFound, map[string]any{
		"Title": "Page not found",
	})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if s.storeHealth != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.storeHealth(ctx); err != nil {
			status = "degraded"
			components["session_store"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["session_store"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
	}
	writeJSON(w, http.StatusOK, payload)
}

func flashFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("flash"))
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, message string) {
	if strings.TrimSpace(target) == "" {
		target = "/"
	}
	if strings.TrimSpace(message) == "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	u, err := url.Parse(target)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	q := u.Query()
	q.Set("flash", message)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
