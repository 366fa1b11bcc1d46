// Package domain defines core data structures shared by the wallet client.
package domain

// Session an authenticated session against the wallet API.
// A zero Session is anonymous.
type Session struct {
	// Token opaque bearer token issued by the backend.
	Token string
	// Identity email the session was opened for.
	Identity string
	// Generation monotonic counter distinguishing successive sessions,
	// used to deduplicate expiry notifications from concurrent requests.
	Generation uint64
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// SessionState lifecycle state of the session manager.
type SessionState int

const (
	SessionAnonymous SessionState = iota
	SessionAuthenticating
	SessionAuthenticated
	SessionExpired
	SessionLoggedOut
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticating:
		return "authenticating"
	case SessionAuthenticated:
		return "authenticated"
	case SessionExpired:
		return "expired"
	case SessionLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}
