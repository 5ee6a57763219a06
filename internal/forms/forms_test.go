package forms

import "testing"

func TestContactFormValidate(t *testing.T) {
	tests := []struct {
		name  string
		form  ContactForm
		field string
	}{
		{"valid", ContactForm{"Link", "link@hyrule.example", "Theme broken", "The preview image never loads."}, ""},
		{"short name", ContactForm{"L", "link@hyrule.example", "Theme broken", "The preview image never loads."}, "name"},
		{"missing email", ContactForm{"Link", "", "Theme broken", "The preview image never loads."}, "email"},
		{"bad email", ContactForm{"Link", "not an email", "Theme broken", "The preview image never loads."}, "email"},
		{"short subject", ContactForm{"Link", "link@hyrule.example", "Hey", "The preview image never loads."}, "subject"},
		{"short message", ContactForm{"Link", "link@hyrule.example", "Theme broken", "too short"}, "message"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.form.Validate()
			if tc.field == "" {
				if !errs.Valid() {
					t.Fatalf("expected valid, got %v", errs)
				}
				return
			}
			if errs.Valid() {
				t.Fatalf("expected error on %q, got none", tc.field)
			}
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected error keyed by %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestContactMessageBoundary(t *testing.T) {
	base := ContactForm{Name: "Link", Email: "link@hyrule.example", Subject: "Subject"}

	base.Message = "123456789"
	if base.Validate().Valid() {
		t.Fatalf("9-character message must fail")
	}
	base.Message = "1234567890"
	if errs := base.Validate(); !errs.Valid() {
		t.Fatalf("10-character message must pass, got %v", errs)
	}
}

func TestSignupFormValidate(t *testing.T) {
	valid := SignupForm{Email: "a@b.co", Username: "abc", Password: "12345678", ConfirmPassword: "12345678"}
	if errs := valid.Validate(); !errs.Valid() {
		t.Fatalf("expected valid, got %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*SignupForm)
		field  string
	}{
		{"short username", func(f *SignupForm) { f.Username = "ab" }, "username"},
		{"short password", func(f *SignupForm) { f.Password = "1234567"; f.ConfirmPassword = "1234567" }, "password"},
		{"mismatched confirmation", func(f *SignupForm) { f.ConfirmPassword = "different" }, "confirm_password"},
		{"bad email", func(f *SignupForm) { f.Email = "a@b" }, "email"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := valid
			tc.mutate(&form)
			errs := form.Validate()
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected error keyed by %q, got %v", tc.field, errs)
			}
		})
	}
}

func TestProfileFormOptionalFields(t *testing.T) {
	if errs := (ProfileForm{}).Validate(); !errs.Valid() {
		t.Fatalf("empty profile form must validate, got %v", errs)
	}
	if errs := (ProfileForm{Website: "https://example.com"}).Validate(); !errs.Valid() {
		t.Fatalf("https website must validate, got %v", errs)
	}
	if errs := (ProfileForm{Website: "ftp://example.com"}).Validate(); errs.Valid() {
		t.Fatalf("non-http scheme must fail")
	}
	if errs := (ProfileForm{Username: "ab"}).Validate(); errs.Valid() {
		t.Fatalf("short username must fail when present")
	}
}

func TestThemeUploadFormValidate(t *testing.T) {
	valid := ThemeUploadForm{
		Name:             "Kakariko Nights",
		ShortDescription: "A calm village theme",
		Description:      "Top screen shows the village at night.",
		Body:             &FileMeta{Filename: "body_LZ.bin", Size: 1 << 20},
		BGM:              &FileMeta{Filename: "bgm.bcstm", Size: 2 << 20},
		Preview:          &FileMeta{Filename: "preview.png", Size: 300 << 10},
	}
	if errs := valid.Validate(); !errs.Valid() {
		t.Fatalf("expected valid, got %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*ThemeUploadForm)
		field  string
	}{
		{"missing body", func(f *ThemeUploadForm) { f.Body = nil }, "body_lz_bin"},
		{"wrong body extension", func(f *ThemeUploadForm) { f.Body = &FileMeta{Filename: "body.zip", Size: 1} }, "body_lz_bin"},
		{"oversized body", func(f *ThemeUploadForm) { f.Body = &FileMeta{Filename: "body.bin", Size: 10<<20 + 1} }, "body_lz_bin"},
		{"oversized bgm", func(f *ThemeUploadForm) { f.BGM = &FileMeta{Filename: "bgm.bcstm", Size: 10<<20 + 1} }, "bgm_bcstm"},
		{"oversized preview", func(f *ThemeUploadForm) { f.Preview = &FileMeta{Filename: "p.png", Size: 5<<20 + 1} }, "preview_png"},
		{"wrong icon extension", func(f *ThemeUploadForm) { f.Icon = &FileMeta{Filename: "icon.jpg", Size: 1} }, "icon_png"},
		{"short description", func(f *ThemeUploadForm) { f.Description = "short" }, "description"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := valid
			tc.mutate(&form)
			errs := form.Validate()
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected error keyed by %q, got %v", tc.field, errs)
			}
		})
	}

	// Icon stays optional.
	if errs := valid.Validate(); !errs.Valid() {
		t.Fatalf("nil icon must not fail, got %v", errs)
	}
}
