package auth

import (
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/session"
)

const (
	PathWelcome   = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathEmployees = "/employees"
)

// Decision is the outcome of a guard. When Allowed is false, Redirect names
// the path to go to instead. Denials are silent.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard evaluates a session snapshot. Guards are pure and never cache.
type Guard func(s session.Session) Decision

func allow() Decision {
	return Decision{Allowed: true}
}

func redirect(path string) Decision {
	return Decision{Redirect: path}
}

// AuthGate keeps logged-in users away from the public pages.
func AuthGate(s session.Session) Decision {
	if s.Authenticated() {
		return redirect(PathDashboard)
	}
	return allow()
}

// SessionGate requires a user.
func SessionGate(s session.Session) Decision {
	if !s.HasUser() {
		return redirect(PathLogin)
	}
	return allow()
}

// RoleGate requires a user whose role is one of allowed.
func RoleGate(allowed ...user.Role) Guard {
	roles := append([]user.Role(nil), allowed...)
	return func(s session.Session) Decision {
		if !s.HasUser() {
			return redirect(PathLogin)
		}
		if !IsAllowed(s.User.Role, roles...) {
			return redirect(PathDashboard)
		}
		return allow()
	}
}
