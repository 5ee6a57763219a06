package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
)

// MaxAvatarBytes is the profile image size ceiling, enforced before any
// network call.
const MaxAvatarBytes = 5 << 20

// verifyInterval bounds how long a cached verification result is trusted
// before the token is re-checked against the backend.
const verifyInterval = 5 * time.Minute

// ErrNotAuthenticated is returned by operations that require a signed-in
// session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager owns session resolution and every mutating auth operation.
type Manager struct {
	backend    *api.Client
	store      Store
	logger     *slog.Logger
	cookieName string
	secret     []byte
	ttl        time.Duration
	secure     bool
}

// NewManager constructs a Manager. The secret signs session cookies and
// must be configured.
func NewManager(backend *api.Client, store Store, logger *slog.Logger, secret, cookieName string, secure bool, ttl time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("SESSION_SECRET must be configured")
	}
	if cookieName == "" {
		cookieName = "hf_session"
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Manager{
		backend:    backend,
		store:      store,
		logger:     logger,
		cookieName: cookieName,
		secret:     []byte(secret),
		ttl:        ttl,
		secure:     secure,
	}, nil
}

// Current resolves the request's session. A persisted token is verified
// remotely in a single best-effort attempt; on any failure the token and
// cached user are discarded together.
func (m *Manager) Current(r *http.Request) Session {
	ctx := r.Context()
	id, err := m.sessionIDFromRequest(r)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			m.logger.Warn("session cookie rejected", "error", err)
		}
		return Session{State: StateUnauthenticated}
	}
	rec, ok, err := m.store.Get(ctx, id)
	if err != nil {
		m.logger.Error("session store read failed", "error", err)
		return Session{ID: id, State: StateUnauthenticated}
	}
	if !ok {
		return Session{ID: id, State: StateUnauthenticated}
	}
	if rec.Token == "" {
		return Session{ID: id, State: StateUnauthenticated, Error: rec.Error}
	}
	if rec.User != nil && time.Since(rec.VerifiedAt) < verifyInterval {
		return Session{ID: id, State: StateAuthenticated, User: rec.User, Error: rec.Error}
	}
	return m.verify(ctx, id, rec)
}

// verify re-checks the persisted token. No retry: a network failure is
// treated the same as an explicit invalid-token response.
func (m *Manager) verify(ctx context.Context, id string, rec Record) Session {
	resp, err := m.backend.VerifyToken(ctx, rec.Token)
	if err != nil || !resp.Valid {
		if err != nil {
			m.logger.Info("token verification failed", "error", err)
		}
		m.teardown(ctx, id)
		return Session{ID: id, State: StateUnauthenticated}
	}
	user, err := m.backend.Profile(ctx, rec.Token)
	if err != nil {
		m.logger.Info("profile fetch after verification failed", "error", err)
		m.teardown(ctx, id)
		return Session{ID: id, State: StateUnauthenticated}
	}
	rec.User = &user
	rec.VerifiedAt = time.Now()
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
	return Session{ID: id, State: StateAuthenticated, User: rec.User, Error: rec.Error}
}

// Login exchanges credentials for a token, persists it and caches the
// profile. On failure the session stays unauthenticated and carries the
// surfaced message in its error slot.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (Session, error) {
	id, err := m.ensureSession(w, r)
	if err != nil {
		return Session{State: StateUnauthenticated}, err
	}
	auth, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return m.fail(ctx, id, err)
	}
	user, err := m.backend.Profile(ctx, auth.AccessToken)
	if err != nil {
		return m.fail(ctx, id, err)
	}
	rec := Record{Token: auth.AccessToken, User: &user, VerifiedAt: time.Now()}
	if err := m.store.Save(ctx, id, rec); err != nil {
		return Session{ID: id, State: StateUnauthenticated}, fmt.Errorf("save session: %w", err)
	}
	m.logger.Info("user logged in", "username", user.Username)
	return Session{ID: id, State: StateAuthenticated, User: rec.User}, nil
}

// Signup creates the account, then performs the equivalent of Login with
// the same credentials.
func (m *Manager) Signup(ctx context.Context, w http.ResponseWriter, r *http.Request, input api.SignupInput) (Session, error) {
	id, err := m.ensureSession(w, r)
	if err != nil {
		return Session{State: StateUnauthenticated}, err
	}
	if _, err := m.backend.Signup(ctx, input); err != nil {
		return m.fail(ctx, id, err)
	}
	m.logger.Info("user registered", "username", input.Username)
	return m.Login(ctx, w, r, input.Email, input.Password)
}

// Logout invalidates the token remotely on a best-effort basis, then
// unconditionally clears the session record and expires the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if id, err := m.sessionIDFromRequest(r); err == nil {
		if rec, ok, _ := m.store.Get(ctx, id); ok && rec.Token != "" {
			if err := m.backend.Logout(ctx, rec.Token); err != nil {
				m.logger.Warn("remote logout failed", "error", err)
			}
		}
		m.teardown(ctx, id)
	}
	http.SetCookie(w, m.expireCookie())
}

// UpdateProfile sends changed fields; on success the cached user is
// replaced with the server's response, on failure the previous cached user
// stays untouched and the message is surfaced.
func (m *Manager) UpdateProfile(ctx context.Context, r *http.Request, input api.ProfileUpdateInput) (*api.User, error) {
	id, rec, err := m.authenticated(ctx, r)
	if err != nil {
		return nil, err
	}
	user, err := m.backend.UpdateProfile(ctx, rec.Token, input)
	if err != nil {
		return nil, m.operationFailed(ctx, id, rec, err)
	}
	rec.User = &user
	rec.Error = ""
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
	return rec.User, nil
}

// UploadAvatar enforces the image MIME and 5 MB constraints before any
// network call, uploads the file, then re-fetches the full profile so the
// cached image URL is the server's, not a locally constructed one.
func (m *Manager) UploadAvatar(ctx context.Context, r *http.Request, filename, contentType string, size int64, file io.Reader) error {
	id, rec, err := m.authenticated(ctx, r)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return m.operationFailed(ctx, id, rec, errors.New("profile image must be an image file"))
	}
	if size > MaxAvatarBytes {
		return m.operationFailed(ctx, id, rec, errors.New("profile image must be 5MB or smaller"))
	}
	if _, err := m.backend.UploadProfileImage(ctx, rec.Token, filename, contentType, file); err != nil {
		return m.operationFailed(ctx, id, rec, err)
	}
	user, err := m.backend.Profile(ctx, rec.Token)
	if err != nil {
		return m.operationFailed(ctx, id, rec, err)
	}
	rec.User = &user
	rec.Error = ""
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
	return nil
}

// ChangePassword swaps the account password for the current session.
func (m *Manager) ChangePassword(ctx context.Context, r *http.Request, current, updated string) error {
	id, rec, err := m.authenticated(ctx, r)
	if err != nil {
		return err
	}
	if err := m.backend.ChangePassword(ctx, rec.Token, current, updated); err != nil {
		return m.operationFailed(ctx, id, rec, err)
	}
	rec.Error = ""
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
	return nil
}

// DeleteAccount removes the account and destroys the session.
func (m *Manager) DeleteAccount(ctx context.Context, w http.ResponseWriter, r *http.Request, hard bool) error {
	id, rec, err := m.authenticated(ctx, r)
	if err != nil {
		return err
	}
	if err := m.backend.DeleteAccount(ctx, rec.Token, hard); err != nil {
		return m.operationFailed(ctx, id, rec, err)
	}
	m.teardown(ctx, id)
	http.SetCookie(w, m.expireCookie())
	m.logger.Info("account deleted", "hard", hard)
	return nil
}

// Token returns the persisted access token for backend calls the Manager
// does not wrap itself, such as theme uploads.
func (m *Manager) Token(ctx context.Context, r *http.Request) (string, error) {
	_, rec, err := m.authenticated(ctx, r)
	if err != nil {
		return "", err
	}
	return rec.Token, nil
}

// ClearError resets the surfaced error message without touching the rest
// of the session state.
func (m *Manager) ClearError(ctx context.Context, r *http.Request) {
	id, err := m.sessionIDFromRequest(r)
	if err != nil {
		return
	}
	rec, ok, err := m.store.Get(ctx, id)
	if err != nil || !ok || rec.Error == "" {
		return
	}
	rec.Error = ""
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
}

// Close releases the underlying store.
func (m *Manager) Close() {
	m.store.Close()
}

// ensureSession reuses the request's session ID or mints a new one and
// sets its cookie.
func (m *Manager) ensureSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, err := m.sessionIDFromRequest(r); err == nil {
		return id, nil
	}
	id := uuid.NewString()
	cookie, err := m.makeCookie(id)
	if err != nil {
		return "", fmt.Errorf("issue session cookie: %w", err)
	}
	http.SetCookie(w, cookie)
	return id, nil
}

// authenticated loads the session record for an operation that requires a
// signed-in user.
func (m *Manager) authenticated(ctx context.Context, r *http.Request) (string, Record, error) {
	id, err := m.sessionIDFromRequest(r)
	if err != nil {
		return "", Record{}, ErrNotAuthenticated
	}
	rec, ok, err := m.store.Get(ctx, id)
	if err != nil {
		return "", Record{}, fmt.Errorf("read session: %w", err)
	}
	if !ok || rec.Token == "" {
		return "", Record{}, ErrNotAuthenticated
	}
	return id, rec, nil
}

// fail records a login/signup failure: the session keeps no token and no
// user, only the surfaced message.
func (m *Manager) fail(ctx context.Context, id string, cause error) (Session, error) {
	msg := userMessage(cause)
	rec := Record{Error: msg}
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
	return Session{ID: id, State: StateUnauthenticated, Error: msg}, cause
}

// operationFailed surfaces the message in the session's error slot. A 401
// outside login/signup additionally tears the whole session down so token
// and cached user disappear together.
func (m *Manager) operationFailed(ctx context.Context, id string, rec Record, cause error) error {
	if api.IsAuthError(cause) {
		m.teardown(ctx, id)
		return cause
	}
	rec.Error = userMessage(cause)
	if err := m.store.Save(ctx, id, rec); err != nil {
		m.logger.Error("session store write failed", "error", err)
	}
	return cause
}

func (m *Manager) teardown(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Error("session store delete failed", "error", err)
	}
}

// userMessage strips transport detail from connectivity failures; API
// errors already carry a user-facing sentence.
func userMessage(err error) string {
	if errors.Is(err, api.ErrUnreachable) {
		return api.ErrUnreachable.Error()
	}
	return err.Error()
}
