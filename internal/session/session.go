// Package session is the single source of truth for "who is the current
// user". A signed cookie carries a session ID; the session record (bearer
// token, cached profile, last error) lives server-side in a Store. Token
// and cached user share one record, so they are cleared together and can
// never diverge.
package session

import (
	"github.com/anasahmed07/Highflying-Themes/internal/api"
)

// State describes where a browser session sits in its lifecycle.
type State int

const (
	// StateUnknown is the pre-resolution state; it never leaves the package.
	StateUnknown State = iota
	// StateVerifying is transient while a persisted token is checked remotely.
	StateVerifying
	// StateUnauthenticated is the stable anonymous state.
	StateUnauthenticated
	// StateAuthenticated is the stable signed-in state.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateVerifying:
		return "verifying"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the resolved view handed to page handlers.
type Session struct {
	ID    string
	State State
	User  *api.User
	Error string
}

// Authenticated reports whether the session carries a verified user.
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}
