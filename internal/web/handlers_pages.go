package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
	"github.com/anasahmed07/Highflying-Themes/internal/forms"
)

const (
	contactTimeout = 10 * time.Second
	qrSizeDefault  = 256
	qrSizeMax      = 1024
)

// staticPage returns a handler rendering a fixed template.
func (s *Server) staticPage(tpl, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		s.render(w, r, tpl, http.StatusOK, map[string]any{
			"Title": title,
		})
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "contact", http.StatusOK, map[string]any{
			"Title": "Contact us",
		})
	case http.MethodPost:
		s.handleContactSubmit(w, r)
	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	form := forms.ContactForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	if errs := form.Validate(); !errs.Valid() {
		s.render(w, r, "contact", http.StatusUnprocessableEntity, map[string]any{
			"Title":  "Contact us",
			"Errors": errs,
			"Form":   form,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), contactTimeout)
	defer cancel()
	resp, err := s.api.SubmitContact(ctx, api.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
	})
	if err != nil {
		s.render(w, r, "contact", http.StatusBadGateway, map[string]any{
			"Title": "Contact us",
			"Flash": userFacingMessage(err),
			"Form":  form,
		})
		return
	}
	s.logger.Info("contact message submitted", "id", resp.ID)
	redirectWithFlash(w, r, "/contact-us", "Thanks! We received your message.")
}

// handleQR renders a QR code for a site-relative path, used on theme
// detail pages so a 3DS can scan the download link.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	path := r.URL.Query().Get("path")
	size := qrSizeDefault
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > qrSizeMax {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size must be between 64 and 1024"})
			return
		}
		size = parsed
	}
	png, err := s.qr.PNG(path, size)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}
