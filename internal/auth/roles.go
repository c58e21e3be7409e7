package auth

import "github.com/spec-kit/market-portal/internal/domain"

// Policy names what a route requires of the session.
type Policy int

const (
	PolicyAuthenticated Policy = iota
	PolicyPrivileged
)

// Outcome is what the guard does with a navigation.
type Outcome int

const (
	OutcomeRender Outcome = iota
	OutcomeRedirectLogin
	OutcomeForbidden
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirectLogin:
		return "redirect_login"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "render"
	}
}

// Decision is the guard verdict. Pending marks a forbidden verdict issued
// while the role lookup has not completed.
type Decision struct {
	Outcome Outcome
	Pending bool
}

// Evaluate decides a navigation from a session snapshot. A missing token
// always redirects to login, whatever the role. An unresolved role is never
// privileged.
func Evaluate(policy Policy, s domain.Session) Decision {
	if !s.Authenticated() {
		return Decision{Outcome: OutcomeRedirectLogin}
	}
	if policy == PolicyAuthenticated {
		return Decision{Outcome: OutcomeRender}
	}
	if s.Role.IsPrivileged() {
		return Decision{Outcome: OutcomeRender}
	}
	return Decision{Outcome: OutcomeForbidden, Pending: s.Role.Status == domain.RoleUnresolved}
}
