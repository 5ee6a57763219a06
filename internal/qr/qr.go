// Package qr renders QR code PNGs for theme download links so a 3DS
// browser can scan them straight off the detail page.
package qr

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer resolves relative paths against the site's public base URL and
// encodes the result as a QR PNG.
type Renderer struct {
	base *url.URL
}

// New builds a Renderer. baseURL must be absolute, e.g.
// "https://themes.example.com".
func New(baseURL string) (*Renderer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse public base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("public base URL %q must be absolute", baseURL)
	}
	return &Renderer{base: base}, nil
}

// Resolve turns a site-relative path into the absolute URL that gets
// encoded. Absolute inputs and scheme-relative inputs are rejected so the
// endpoint cannot be used to mint QR codes for arbitrary hosts.
func (r *Renderer) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "", fmt.Errorf("path %q must be site-relative", path)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}
	return r.base.ResolveReference(ref).String(), nil
}

// PNG encodes the resolved URL for path at size×size pixels.
func (r *Renderer) PNG(path string, size int) ([]byte, error) {
	target, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(target, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return code.PNG(size)
}
