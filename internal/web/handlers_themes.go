package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
	"github.com/anasahmed07/Highflying-Themes/internal/forms"
)

const (
	pageTimeout    = 10 * time.Second
	uploadTimeout  = 60 * time.Second
	maxUploadBytes = 32 << 20
	homeThemeCount = 6
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.renderNotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pageTimeout)
	defer cancel()

	list, err := s.api.ListThemes(ctx, api.ThemeQuery{Page: 1, Limit: homeThemeCount})
	if err != nil {
		s.logger.Warn("home theme fetch failed", "error", err)
		// The landing page still renders without the latest-themes strip.
		list = api.ThemeList{}
	}
	s.render(w, r, "home", http.StatusOK, map[string]any{
		"Title":  "Highflying Themes",
		"Themes": list.Themes,
	})
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	q := api.ThemeQuery{
		Page:   page,
		Search: strings.TrimSpace(query.Get("search")),
		Tags:   strings.TrimSpace(query.Get("tags")),
		Rating: strings.TrimSpace(query.Get("rating")),
		Author: strings.TrimSpace(query.Get("author")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), pageTimeout)
	defer cancel()
	list, err := s.api.ListThemes(ctx, q)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, userFacingMessage(err))
		return
	}

	totalPages := 0
	if list.Limit > 0 {
		totalPages = (list.Total + list.Limit - 1) / list.Limit
	}
	filters := url.Values{}
	for _, param := range []struct{ key, value string }{
		{"search", q.Search},
		{"tags", q.Tags},
		{"rating", q.Rating},
		{"author", q.Author},
	} {
		if param.value != "" {
			filters.Set(param.key, param.value)
		}
	}
	s.render(w, r, "themes", http.StatusOK, map[string]any{
		"Title":      "Browse themes",
		"Themes":     list.Themes,
		"Total":      list.Total,
		"Page":       list.Page,
		"TotalPages": totalPages,
		"Pages":      PageLinks(list.Page, totalPages, filters),
		"Query":      q,
	})
}

func (s *Server) handleThemeSubroutes(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/themes/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 2 && parts[0] == "download" {
		s.handleThemeDownload(w, r, parts[1])
		return
	}
	if len(parts) == 1 && parts[0] != "" {
		s.handleThemeDetail(w, r, parts[0])
		return
	}
	s.renderNotFound(w, r)
}

func (s *Server) handleThemeDetail(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		s.renderNotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pageTimeout)
	defer cancel()
	theme, err := s.api.GetTheme(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			s.renderNotFound(w, r)
			return
		}
		s.renderError(w, r, http.StatusBadGateway, userFacingMessage(err))
		return
	}
	downloadPath := "/themes/download/" + strconv.Itoa(theme.ThemeID)
	s.render(w, r, "theme", http.StatusOK, map[string]any{
		"Title":        theme.Name,
		"Theme":        theme,
		"DownloadPath": downloadPath,
		"QRPath":       "/qr?path=" + downloadPath + "&size=256",
	})
}

// handleThemeDownload streams the packaged theme from the backend,
// passing the download headers through untouched so the filename the
// backend picked survives.
func (s *Server) handleThemeDownload(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		s.renderNotFound(w, r)
		return
	}
	dl, err := s.api.DownloadTheme(r.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.renderNotFound(w, r)
			return
		}
		s.renderError(w, r, http.StatusBadGateway, userFacingMessage(err))
		return
	}
	defer dl.Body.Close()

	if dl.ContentType != "" {
		w.Header().Set("Content-Type", dl.ContentType)
	}
	if dl.Disposition != "" {
		w.Header().Set("Content-Disposition", dl.Disposition)
	}
	if dl.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	if _, err := io.Copy(w, dl.Body); err != nil {
		s.logger.Warn("theme download interrupted", "theme_id", id, "error", err)
	}
}

func (s *Server) handleUploadTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "upload", http.StatusOK, map[string]any{
			"Title": "Upload a theme",
		})
	case http.MethodPost:
		s.handleUploadThemeSubmit(w, r)
	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleUploadThemeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid upload payload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := forms.ThemeUploadForm{
		Name:             r.FormValue("name"),
		ShortDescription: r.FormValue("short_description"),
		Description:      r.FormValue("description"),
		Body:             fileMeta(r, "body_lz_bin"),
		BGM:              fileMeta(r, "bgm_bcstm"),
		Preview:          fileMeta(r, "preview_png"),
		Icon:             fileMeta(r, "icon_png"),
	}
	if errs := form.Validate(); !errs.Valid() {
		s.render(w, r, "upload", http.StatusUnprocessableEntity, map[string]any{
			"Title":  "Upload a theme",
			"Errors": errs,
			"Form":   form,
		})
		return
	}

	token, err := s.sessions.Token(r.Context(), r)
	if err != nil {
		http.Redirect(w, r, "/login-signup?redirect=/upload-theme", http.StatusSeeOther)
		return
	}

	input := api.ThemeUpload{
		Name:             form.Name,
		ShortDescription: form.ShortDescription,
		Description:      form.Description,
		Tags:             r.FormValue("tags"),
		BGMInfo:          r.FormValue("bgm_info"),
	}
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	assign := func(field string, dst *api.FilePart) bool {
		file, header, err := r.FormFile(field)
		if err != nil {
			return false
		}
		closers = append(closers, file)
		*dst = api.FilePart{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		}
		return true
	}
	if !assign("body_lz_bin", &input.Body) || !assign("bgm_bcstm", &input.BGM) || !assign("preview_png", &input.Preview) {
		s.renderError(w, r, http.StatusBadRequest, "invalid upload payload")
		return
	}
	var icon api.FilePart
	if assign("icon_png", &icon) {
		input.Icon = &icon
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()
	theme, err := s.api.UploadTheme(ctx, token, input)
	if err != nil {
		s.render(w, r, "upload", http.StatusBadGateway, map[string]any{
			"Title": "Upload a theme",
			"Flash": userFacingMessage(err),
			"Form":  form,
		})
		return
	}
	redirectWithFlash(w, r, "/themes/"+strconv.Itoa(theme.ThemeID), "Theme uploaded")
}

func fileMeta(r *http.Request, field string) *forms.FileMeta {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil
	}
	return &forms.FileMeta{Filename: headers[0].Filename, Size: headers[0].Size}
}

// userFacingMessage surfaces the message the backend chose; network
// failures collapse to the connection hint.
func userFacingMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, api.ErrUnreachable) {
		return api.ErrUnreachable.Error()
	}
	return err.Error()
}
