// Package forms validates user submissions before they reach the backend.
// Validation is synchronous and re-runs in full on every submit; errors
// are keyed by field name so templates can render them inline.
package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a field name to its first validation failure.
type Errors map[string]string

// Valid reports whether the submission passed every check.
func (e Errors) Valid() bool { return len(e) == 0 }

func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// ContactForm is the contact-us submission.
type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Validate checks the contact form and returns field-keyed errors.
func (f ContactForm) Validate() Errors {
	errs := Errors{}
	switch {
	case strings.TrimSpace(f.Name) == "":
		errs.add("name", "Name is required")
	case len(strings.TrimSpace(f.Name)) < 2:
		errs.add("name", "Name must be at least 2 characters")
	}
	validateEmail(errs, f.Email)
	switch {
	case strings.TrimSpace(f.Subject) == "":
		errs.add("subject", "Subject is required")
	case len(strings.TrimSpace(f.Subject)) < 5:
		errs.add("subject", "Subject must be at least 5 characters")
	}
	switch {
	case strings.TrimSpace(f.Message) == "":
		errs.add("message", "Message is required")
	case len(strings.TrimSpace(f.Message)) < 10:
		errs.add("message", "Message must be at least 10 characters")
	}
	return errs
}

// LoginForm is the sign-in submission.
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() Errors {
	errs := Errors{}
	validateEmail(errs, f.Email)
	if f.Password == "" {
		errs.add("password", "Password is required")
	}
	return errs
}

// SignupForm is the account-creation submission.
type SignupForm struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

func (f SignupForm) Validate() Errors {
	errs := Errors{}
	validateEmail(errs, f.Email)
	switch {
	case strings.TrimSpace(f.Username) == "":
		errs.add("username", "Username is required")
	case len(strings.TrimSpace(f.Username)) < 3:
		errs.add("username", "Username must be at least 3 characters")
	}
	switch {
	case f.Password == "":
		errs.add("password", "Password is required")
	case len(f.Password) < 8:
		errs.add("password", "Password must be at least 8 characters")
	}
	if f.ConfirmPassword != f.Password {
		errs.add("confirm_password", "Passwords do not match")
	}
	return errs
}

// ProfileForm carries optional profile edits; empty fields are left
// untouched by the update.
type ProfileForm struct {
	Username string
	Bio      string
	Location string
	Website  string
}

func (f ProfileForm) Validate() Errors {
	errs := Errors{}
	if u := strings.TrimSpace(f.Username); u != "" && len(u) < 3 {
		errs.add("username", "Username must be at least 3 characters")
	}
	if w := strings.TrimSpace(f.Website); w != "" {
		parsed, err := url.Parse(w)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs.add("website", "Website must be a valid http(s) URL")
		}
	}
	return errs
}

// FileMeta describes an uploaded file as seen by the multipart reader.
type FileMeta struct {
	Filename string
	Size     int64
}

// Upload ceilings, matching what the backend accepts.
const (
	maxThemeBodyBytes = 10 << 20
	maxBGMBytes       = 10 << 20
	maxImageBytes     = 5 << 20
)

// ThemeUploadForm is the theme submission. Icon may be nil.
type ThemeUploadForm struct {
	Name             string
	ShortDescription string
	Description      string
	Body             *FileMeta
	BGM              *FileMeta
	Preview          *FileMeta
	Icon             *FileMeta
}

func (f ThemeUploadForm) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Name) == "" {
		errs.add("name", "Theme name is required")
	}
	if strings.TrimSpace(f.ShortDescription) == "" {
		errs.add("short_description", "Short description is required")
	}
	if len(strings.TrimSpace(f.Description)) < 10 {
		errs.add("description", "Description must be at least 10 characters")
	}
	validateFile(errs, "body_lz_bin", f.Body, ".bin", maxThemeBodyBytes, true)
	validateFile(errs, "bgm_bcstm", f.BGM, ".bcstm", maxBGMBytes, true)
	validateFile(errs, "preview_png", f.Preview, ".png", maxImageBytes, true)
	validateFile(errs, "icon_png", f.Icon, ".png", maxImageBytes, false)
	return errs
}

func validateEmail(errs Errors, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		errs.add("email", "Email is required")
	case !emailPattern.MatchString(email):
		errs.add("email", "Enter a valid email address")
	}
}

func validateFile(errs Errors, field string, meta *FileMeta, ext string, maxBytes int64, required bool) {
	if meta == nil {
		if required {
			errs.add(field, fmt.Sprintf("A %s file is required", ext))
		}
		return
	}
	if !strings.HasSuffix(strings.ToLower(meta.Filename), ext) {
		errs.add(field, fmt.Sprintf("File must be a %s file", ext))
		return
	}
	if meta.Size > maxBytes {
		errs.add(field, fmt.Sprintf("File exceeds the %d MB limit", maxBytes>>20))
	}
}

// ValidateAvatar checks a profile image before it is streamed anywhere.
func ValidateAvatar(contentType string, size int64) Errors {
	errs := Errors{}
	if !strings.HasPrefix(contentType, "image/") {
		errs.add("profile_image", "Profile image must be an image file")
	}
	if size > maxImageBytes {
		errs.add("profile_image", "Profile image exceeds the 5 MB limit")
	}
	return errs
}
