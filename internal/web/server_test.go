package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"log/slog"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
	"github.com/anasahmed07/Highflying-Themes/internal/config"
	"github.com/anasahmed07/Highflying-Themes/internal/session"
)

// backendStub fakes the upstream API and counts contact submissions.
type backendStub struct {
	mux          *http.ServeMux
	contactCalls atomic.Int64
}

func newBackendStub() *backendStub {
	bs := &backendStub{mux: http.NewServeMux()}
	bs.mux.HandleFunc("/themes", func(w http.ResponseWriter, r *http.Request) {
		list := api.ThemeList{
			Themes: []api.Theme{
				{ID: "a1", ThemeID: 7, Name: "Kakariko Nights", AuthorName: "link", ShortDescription: "calm"},
			},
			Total: 31,
			Page:  2,
			Limit: 15,
		}
		if r.URL.Query().Get("page") != "" {
			json.NewEncoder(w).Encode(list)
			return
		}
		list.Page = 1
		json.NewEncoder(w).Encode(list)
	})
	bs.mux.HandleFunc("/themes/7", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.Theme{ID: "a1", ThemeID: 7, Name: "Kakariko Nights", AuthorName: "link", Description: "Top screen shows the village."})
	})
	bs.mux.HandleFunc("/themes/download/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="Kakariko Nights by link.zip"`)
		w.Write([]byte("zipbytes"))
	})
	bs.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	})
	bs.mux.HandleFunc("/contact/submit", func(w http.ResponseWriter, r *http.Request) {
		bs.contactCalls.Add(1)
		json.NewEncoder(w).Encode(api.ContactResponse{Message: "received", ID: "c1"})
	})
	bs.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not found"}`))
	})
	return bs
}

func newTestServer(t *testing.T) (*Server, *backendStub) {
	t.Helper()
	bs := newBackendStub()
	upstream := httptest.NewServer(bs.mux)
	t.Cleanup(upstream.Close)

	backend, err := api.New(upstream.URL)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions, err := session.NewManager(backend, store, logger, "test-secret", "hf_session", false, time.Hour)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cfg := config.WebConfig{
		Addr:          ":0",
		BackendAPIURL: upstream.URL,
		PublicBaseURL: "https://themes.example.com",
		SessionSecret: "test-secret",
		CookieName:    "hf_session",
		SessionTTL:    time.Hour,
	}
	srv, err := New(cfg, backend, sessions, NewMemoryRateLimiter(), store.Ping, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv, bs
}

func TestContactSubmitForwardsOnce(t *testing.T) {
	srv, bs := newTestServer(t)

	form := url.Values{
		"name":    {"Link"},
		"email":   {"link@hyrule.example"},
		"subject": {"Broken preview"},
		"message": {"The preview image never loads on my console."},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact-us", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := bs.contactCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one backend submission, got %d", got)
	}
	loc := rr.Header().Get("Location")
	if !strings.Contains(loc, "flash=") {
		t.Fatalf("expected flash on redirect, got %q", loc)
	}
}

func TestContactValidationFailureSkipsBackend(t *testing.T) {
	srv, bs := newTestServer(t)

	form := url.Values{
		"name":    {"Link"},
		"email":   {"link@hyrule.example"},
		"subject": {"Broken preview"},
		"message": {"too short"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact-us", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if got := bs.contactCalls.Load(); got != 0 {
		t.Fatalf("invalid form must not reach the backend, got %d calls", got)
	}
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/upload-theme", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login-signup?redirect=") {
		t.Fatalf("expected login redirect carrying the original path, got %q", loc)
	}
	if !strings.Contains(loc, url.QueryEscape("/upload-theme")) {
		t.Fatalf("redirect target missing original path: %q", loc)
	}
}

func TestDownloadProxyPassesHeadersThrough(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/themes/download/7", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("content type not passed through: %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "Kakariko Nights by link.zip") {
		t.Fatalf("disposition not passed through: %q", got)
	}
	if rr.Body.String() != "zipbytes" {
		t.Fatalf("body not streamed: %q", rr.Body.String())
	}
}

func TestUnknownPathRenders404Page(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-page", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("expected full 404 page, got %q", rr.Body.String())
	}
}

func TestThemesPageRendersPaginationWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/themes?page=2", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Kakariko Nights") {
		t.Fatalf("theme missing from listing")
	}
	// 31 themes at 15 per page is 3 pages; all of them render, no gaps.
	for _, fragment := range []string{">1<", ">2<", ">3<"} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("pagination window missing %q", fragment)
		}
	}
}

func TestThemesPaginationKeepsActiveFilters(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/themes?page=2&search=zelda&tags=retro", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	// Every page link must carry the filters that produced the result set.
	for _, fragment := range []string{
		`href="/themes?page=1&amp;search=zelda&amp;tags=retro"`,
		`href="/themes?page=3&amp;search=zelda&amp;tags=retro"`,
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("pagination link dropped the active filters, want %q in body", fragment)
		}
	}
	if !strings.Contains(body, `value="zelda"`) {
		t.Fatalf("search box lost its value")
	}
}

func TestDismissErrorClearsSessionBanner(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{
		"form":     {"login"},
		"email":    {"link@hyrule.example"},
		"password": {"not-the-password"},
	}
	req := httptest.NewRequest(http.MethodPost, "/login-signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected failed login, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	withCookies := func(r *http.Request) *http.Request {
		for _, c := range cookies {
			if c.MaxAge >= 0 && c.Value != "" {
				r.AddCookie(c)
			}
		}
		return r
	}

	// The failure sticks to the session, so the banner follows the
	// visitor onto other pages.
	home := httptest.NewRecorder()
	srv.ServeHTTP(home, withCookies(httptest.NewRequest(http.MethodGet, "/", nil)))
	if !strings.Contains(home.Body.String(), "Invalid credentials") {
		t.Fatalf("expected error banner on a later page view")
	}

	dismiss := withCookies(httptest.NewRequest(http.MethodPost, "/dismiss-error", nil))
	dismiss.Header.Set("Referer", "https://themes.example.com/themes")
	dr := httptest.NewRecorder()
	srv.ServeHTTP(dr, dismiss)
	if dr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after dismiss, got %d", dr.Code)
	}
	if loc := dr.Header().Get("Location"); loc != "/themes" {
		t.Fatalf("expected referer path redirect, got %q", loc)
	}

	after := httptest.NewRecorder()
	srv.ServeHTTP(after, withCookies(httptest.NewRequest(http.MethodGet, "/", nil)))
	if strings.Contains(after.Body.String(), "Invalid credentials") {
		t.Fatalf("banner still present after dismissal")
	}
}

func TestQRBadPathRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/qr?path="+url.QueryEscape("https://evil.example.com/x"), nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for absolute path, got %d", rr.Code)
	}
}

func TestQRRendersPNG(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/qr?path=/themes/download/7&size=128", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
}

func TestHealthzReportsSessionStore(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Status     string                    `json:"status"`
		Components map[string]map[string]any `json:"components"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("expected ok, got %q", payload.Status)
	}
	if payload.Components["session_store"]["status"] != "up" {
		t.Fatalf("expected session store up, got %v", payload.Components)
	}
}

func TestContactRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	submit := func() *httptest.ResponseRecorder {
		form := url.Values{
			"name":    {"Link"},
			"email":   {"link@hyrule.example"},
			"subject": {"Broken preview"},
			"message": {"The preview image never loads on my console."},
		}
		req := httptest.NewRequest(http.MethodPost, "/contact-us", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.9:4412"
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < rateLimitContact; i++ {
		if rr := submit(); rr.Code != http.StatusSeeOther {
			t.Fatalf("submission %d unexpectedly blocked: %d", i+1, rr.Code)
		}
	}
	rr := submit()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d submissions, got %d", rateLimitContact, rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected exhausted rate headers, got %q", rr.Header().Get("X-RateLimit-Remaining"))
	}
}
