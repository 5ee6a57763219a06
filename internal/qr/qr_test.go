package qr

import (
	"bytes"
	"testing"
)

func TestNewRejectsRelativeBase(t *testing.T) {
	if _, err := New("themes.example.com"); err == nil {
		t.Fatalf("expected error for non-absolute base URL")
	}
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestResolve(t *testing.T) {
	r, err := New("https://themes.example.com")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"download path", "/themes/download/42", "https://themes.example.com/themes/download/42", true},
		{"detail path", "/themes/42", "https://themes.example.com/themes/42", true},
		{"empty", "", "", false},
		{"absolute url", "https://evil.example.com/x", "", false},
		{"scheme-relative", "//evil.example.com/x", "", false},
		{"relative without slash", "themes/42", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.path)
			if tc.ok != (err == nil) {
				t.Fatalf("error mismatch: %v", err)
			}
			if tc.ok && got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPNGProducesImage(t *testing.T) {
	r, err := New("https://themes.example.com")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	png, err := r.PNG("/themes/download/42", 256)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG")
	}
}
