package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
	"github.com/anasahmed07/Highflying-Themes/internal/forms"
	"github.com/anasahmed07/Highflying-Themes/internal/session"
)

const authTimeout = 10 * time.Second

func (s *Server) handleLoginSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sess := s.currentSession(r)
		if sess.Authenticated() {
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
		tab := r.URL.Query().Get("tab")
		if tab != "signup" {
			tab = "login"
		}
		s.render(w, r, "login_signup", http.StatusOK, map[string]any{
			"Title":    "Sign in",
			"Tab":      tab,
			"Redirect": safeRedirectPath(r.URL.Query().Get("redirect")),
			"Error":    sess.Error,
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
			return
		}
		if r.PostFormValue("form") == "signup" {
			s.handleSignupSubmit(w, r)
			return
		}
		s.handleLoginSubmit(w, r)
	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := forms.LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	redirect := safeRedirectPath(r.PostFormValue("redirect"))
	if errs := form.Validate(); !errs.Valid() {
		s.render(w, r, "login_signup", http.StatusUnprocessableEntity, map[string]any{
			"Title":    "Sign in",
			"Tab":      "login",
			"Redirect": redirect,
			"Errors":   errs,
			"Email":    form.Email,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()
	sess, err := s.sessions.Login(ctx, w, r, form.Email, form.Password)
	if err != nil {
		s.render(w, r, "login_signup", http.StatusUnauthorized, map[string]any{
			"Title":    "Sign in",
			"Tab":      "login",
			"Redirect": redirect,
			"Error":    sess.Error,
			"Email":    form.Email,
		})
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (s *Server) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	form := forms.SignupForm{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	redirect := safeRedirectPath(r.PostFormValue("redirect"))
	if errs := form.Validate(); !errs.Valid() {
		s.render(w, r, "login_signup", http.StatusUnprocessableEntity, map[string]any{
			"Title":    "Create account",
			"Tab":      "signup",
			"Redirect": redirect,
			"Errors":   errs,
			"Email":    form.Email,
			"Username": form.Username,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()
	sess, err := s.sessions.Signup(ctx, w, r, api.SignupInput{
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		s.render(w, r, "login_signup", http.StatusUnprocessableEntity, map[string]any{
			"Title":    "Create account",
			"Tab":      "signup",
			"Redirect": redirect,
			"Error":    sess.Error,
			"Email":    form.Email,
			"Username": form.Username,
		})
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	s.sessions.Logout(r.Context(), w, r)
	redirectWithFlash(w, r, "/", "Signed out")
}

// handleDismissError clears the session's persisted error banner and
// returns to the page that showed it.
func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	s.sessions.ClearError(r.Context(), r)
	target := "/"
	if ref := r.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil {
			target = safeRedirectPath(u.RequestURI())
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	sess := s.currentSession(r)
	s.render(w, r, "profile", http.StatusOK, map[string]any{
		"Title": "Your profile",
		"User":  sess.User,
		"Error": sess.Error,
	})
}

func (s *Server) handleProfileSubroutes(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/profile/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 1 || parts[0] == "" {
		s.renderNotFound(w, r)
		return
	}
	switch parts[0] {
	case "update":
		s.requireAuth(s.handleProfileUpdate)(w, r)
	case "avatar":
		s.requireAuth(s.handleAvatarUpload)(w, r)
	case "password":
		s.requireAuth(s.handlePasswordChange)(w, r)
	case "delete":
		s.requireAuth(s.handleAccountDelete)(w, r)
	default:
		s.handlePublicProfile(w, r, parts[0])
	}
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	form := forms.ProfileForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Bio:      strings.TrimSpace(r.PostFormValue("bio")),
		Location: strings.TrimSpace(r.PostFormValue("location")),
		Website:  strings.TrimSpace(r.PostFormValue("website")),
	}
	if errs := form.Validate(); !errs.Valid() {
		sess := s.currentSession(r)
		s.render(w, r, "profile", http.StatusUnprocessableEntity, map[string]any{
			"Title":  "Your profile",
			"User":   sess.User,
			"Errors": errs,
		})
		return
	}

	input := api.ProfileUpdateInput{}
	if form.Username != "" {
		input.Username = &form.Username
	}
	if form.Bio != "" {
		input.Bio = &form.Bio
	}
	if form.Location != "" {
		input.Location = &form.Location
	}
	if form.Website != "" {
		input.Website = &form.Website
	}

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()
	if _, err := s.sessions.UpdateProfile(ctx, r, input); err != nil {
		redirectWithFlash(w, r, "/profile", userFacingMessage(err))
		return
	}
	redirectWithFlash(w, r, "/profile", "Profile updated")
}

func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	if err := r.ParseMultipartForm(session.MaxAvatarBytes + 1<<20); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid upload payload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("profile_image")
	if err != nil {
		redirectWithFlash(w, r, "/profile", "Choose an image to upload")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if errs := forms.ValidateAvatar(contentType, header.Size); !errs.Valid() {
		redirectWithFlash(w, r, "/profile", errs["profile_image"])
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()
	if err := s.sessions.UploadAvatar(ctx, r, header.Filename, contentType, header.Size, file); err != nil {
		redirectWithFlash(w, r, "/profile", userFacingMessage(err))
		return
	}
	redirectWithFlash(w, r, "/profile", "Profile image updated")
}

func (s *Server) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	current := r.PostFormValue("current_password")
	updated := r.PostFormValue("new_password")
	if len(updated) < 8 {
		redirectWithFlash(w, r, "/profile", "New password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()
	if err := s.sessions.ChangePassword(ctx, r, current, updated); err != nil {
		redirectWithFlash(w, r, "/profile", userFacingMessage(err))
		return
	}
	redirectWithFlash(w, r, "/profile", "Password changed")
}

func (s *Server) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	hard := r.PostFormValue("hard_delete") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()
	if err := s.sessions.DeleteAccount(ctx, w, r, hard); err != nil {
		redirectWithFlash(w, r, "/profile", userFacingMessage(err))
		return
	}
	redirectWithFlash(w, r, "/", "Account deleted")
}

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	decoded, err := url.PathUnescape(username)
	if err != nil {
		s.renderNotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pageTimeout)
	defer cancel()
	user, err := s.api.PublicProfile(ctx, decoded)
	if err != nil {
		if api.IsNotFound(err) {
			s.renderNotFound(w, r)
			return
		}
		s.renderError(w, r, http.StatusBadGateway, userFacingMessage(err))
		return
	}
	themes, err := s.api.ListThemes(ctx, api.ThemeQuery{Author: user.Username, Limit: 15})
	if err != nil {
		themes = api.ThemeList{}
	}
	s.render(w, r, "public_profile", http.StatusOK, map[string]any{
		"Title":  user.Username,
		"User":   user,
		"Themes": themes.Themes,
	})
}
