// Package web serves the Highflying Themes site: browsing and uploading
// custom 3DS themes, account pages and the static information pages. It
// renders HTML server-side and talks to the backend API on behalf of the
// visitor.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
	"github.com/anasahmed07/Highflying-Themes/internal/config"
	"github.com/anasahmed07/Highflying-Themes/internal/qr"
	"github.com/anasahmed07/Highflying-Themes/internal/session"
)

// Server hosts the public site.
type Server struct {
	cfg         config.WebConfig
	api         *api.Client
	sessions    *session.Manager
	qr          *qr.Renderer
	templates   *template.Template
	mux         *http.ServeMux
	logger      *slog.Logger
	limiter     RateLimiter
	storeHealth func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

// New constructs a configured server ready to serve HTTP traffic.
func New(cfg config.WebConfig, backend *api.Client, sessions *session.Manager, limiter RateLimiter, storeHealth func(context.Context) error, logger *slog.Logger) (*Server, error) {
	renderer, err := qr.New(cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("qr renderer: %w", err)
	}
	tmplFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	templates, err := template.New("base").Funcs(template.FuncMap{
		"formatDate": formatDate,
	}).ParseFS(tmplFS, "*.html")
	if err != nil {
		return nil, err
	}
	srv := &Server{
		cfg:         cfg,
		api:         backend,
		sessions:    sessions,
		qr:          renderer,
		templates:   templates,
		mux:         http.NewServeMux(),
		logger:      logger,
		limiter:     limiter,
		storeHealth: storeHealth,
	}
	if srv.limiter == nil {
		srv.limiter = NewMemoryRateLimiter()
	}
	srv.initMetrics()
	srv.registerRoutes()
	return srv, nil
}

// ServeHTTP conforms to http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.audit(s.handleHome))
	s.mux.HandleFunc("/themes", s.audit(s.handleThemes))
	s.mux.HandleFunc("/themes/", s.audit(s.handleThemeSubroutes))
	s.mux.HandleFunc("/upload-theme", s.audit(s.withRateLimit("/upload-theme", rateWindowDefault, s.requireAuth(s.handleUploadTheme))))
	s.mux.HandleFunc("/login-signup", s.audit(s.withRateLimit("/login-signup", rateWindowDefault, s.handleLoginSignup)))
	s.mux.HandleFunc("/logout", s.audit(s.handleLogout))
	s.mux.HandleFunc("/dismiss-error", s.audit(s.handleDismissError))
	s.mux.HandleFunc("/profile", s.audit(s.requireAuth(s.handleProfile)))
	s.mux.HandleFunc("/profile/", s.audit(s.withRateLimit("/profile", rateWindowDefault, s.handleProfileSubroutes)))
	s.mux.HandleFunc("/about-us", s.audit(s.staticPage("about", "About us")))
	s.mux.HandleFunc("/contact-us", s.audit(s.withRateLimit("/contact-us", rateWindowDefault, s.handleContact)))
	s.mux.HandleFunc("/faq", s.audit(s.staticPage("faq", "FAQ")))
	s.mux.HandleFunc("/privacy-policy", s.audit(s.staticPage("privacy", "Privacy policy")))
	s.mux.HandleFunc("/terms-of-service", s.audit(s.staticPage("terms", "Terms of service")))
	s.mux.HandleFunc("/qr", s.audit(s.handleQR))
	s.mux.HandleFunc("/healthz", s.audit(s.handleHealthz))
	s.mux.Handle("/metrics", promhttp.Handler())
}

func formatDate(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2, 2006")
}
