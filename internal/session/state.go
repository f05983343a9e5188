package session

import "github.com/ecocycle/connect/types"

// Status is the position of a session in its lifecycle.
type Status int

const (
	StatusUnauthenticated Status = iota
	// StatusResolving means a stored token is being checked at startup.
	StatusResolving
	// StatusAuthenticating means a login or registration is in flight.
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusResolving:
		return "resolving"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Identity is a private copy and nil
// when nobody is logged in. While Loading is true the identity is provisional.
type State struct {
	Identity *types.Identity
	Loading  bool
	Status   Status
}

// Authenticated reports whether the snapshot holds an identity.
func (s State) Authenticated() bool {
	return s.Identity != nil
}
