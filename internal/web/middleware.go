package web

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anasahmed07/Highflying-Themes/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "web.session"

func sessionIntoContext(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func sessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Session)
	return sess, ok
}

// currentSession resolves the request's session once per request; handlers
// behind requireAuth reuse the already-resolved value.
func (s *Server) currentSession(r *http.Request) session.Session {
	if sess, ok := sessionFromContext(r.Context()); ok {
		return sess
	}
	return s.sessions.Current(r)
}

// requireAuth gates a route behind an authenticated session. Visitors are
// sent to the combined login page with the original path so login can
// bounce them back.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Current(r)
		if !sess.Authenticated() {
			target := "/login-signup?redirect=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI()))
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		ctx := sessionIntoContext(r.Context(), sess)
		if recorder, ok := w.(*statusRecorder); ok {
			recorder.setContext(ctx)
		}
		next(w, r.WithContext(ctx))
	}
}

// safeRedirectPath keeps post-login redirects on this site: only rooted
// paths survive, anything absolute or scheme-relative falls back to "/".
func safeRedirectPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	if u, err := url.Parse(raw); err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return raw
}

func (s *Server) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, r)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		actor := "visitor"
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(r); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if sess, ok := sessionFromContext(recorder.ctx()); ok && sess.User != nil {
			actor = "user"
			fields = append(fields, "username", sess.User.Username)
		}
		fields = append(fields, "actor", actor)

		s.recordRequestMetrics(r.Method, routeLabel(r.URL.Path), status, duration)

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("http_request", fields...)
		default:
			s.logger.Info("http_request", fields...)
		}
	}
}

// routeLabel collapses parameterised paths so metric cardinality stays
// bounded.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/themes/download/"):
		return "/themes/download/{id}"
	case strings.HasPrefix(path, "/themes/"):
		return "/themes/{id}"
	case strings.HasPrefix(path, "/profile/"):
		return "/profile/{user}"
	default:
		return path
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	reqCtx context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(p)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) setContext(ctx context.Context) {
	sr.reqCtx = ctx
}

func (sr *statusRecorder) ctx() context.Context {
	if sr.reqCtx != nil {
		return sr.reqCtx
	}
	return context.Background()
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func (s *Server) withRateLimit(route string, window time.Duration, next http.HandlerFunc) http.HandlerFunc {
	limit := routeLimit(route)
	return func(w http.ResponseWriter, r *http.Request) {
		// Only mutating submissions are throttled; page views pass.
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}
		if limit <= 0 || s.limiter == nil {
			next(w, r)
			return
		}
		decision := s.limiter.Allow("ip:"+clientIP(r)+":"+route, limit, window)
		s.applyRateHeaders(w, limit, decision)
		if !decision.allowed {
			s.recordRateLimitHit(route)
			s.renderError(w, r, http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.")
			return
		}
		next(w, r)
	}
}

func (s *Server) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}
