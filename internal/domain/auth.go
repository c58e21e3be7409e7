package domain

import (
	"errors"
	"strings"
)

// Role is the privilege level the backend assigns to a user.
type Role string

const (
	RoleUnset    Role = ""
	RoleStandard Role = "STANDARD"
	RoleAdmin    Role = "ADMIN"
)

// ErrMalformedRole is returned when an identity lookup carries no usable role.
var ErrMalformedRole = errors.New("identity payload has no role")

// ParseRole maps the backend role string onto a Role. Any non-empty value other
// than ADMIN is a standard user.
func ParseRole(raw string) (Role, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RoleUnset, ErrMalformedRole
	}
	if strings.EqualFold(trimmed, string(RoleAdmin)) {
		return RoleAdmin, nil
	}
	return RoleStandard, nil
}

// RoleStatus is the resolution state of a session's role.
type RoleStatus int

const (
	RoleUnresolved RoleStatus = iota
	RoleResolved
	RoleInvalid
)

func (s RoleStatus) String() string {
	switch s {
	case RoleResolved:
		return "resolved"
	case RoleInvalid:
		return "invalid"
	default:
		return "unresolved"
	}
}

// RoleState is Unresolved, Resolved(role) or Invalid.
type RoleState struct {
	Status RoleStatus
	Role   Role
}

func UnresolvedRole() RoleState { return RoleState{Status: RoleUnresolved} }

func ResolvedRole(role Role) RoleState { return RoleState{Status: RoleResolved, Role: role} }

func InvalidRole() RoleState { return RoleState{Status: RoleInvalid} }

// IsPrivileged is true only for a resolved ADMIN role.
func (s RoleState) IsPrivileged() bool {
	return s.Status == RoleResolved && s.Role == RoleAdmin
}

// Session is the client's belief about the current token and role.
type Session struct {
	Token string
	Role  RoleState
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

// RolePending reports a token whose role has not been resolved yet.
func (s Session) RolePending() bool {
	return s.Authenticated() && s.Role.Status == RoleUnresolved
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the POST /auth/register payload.
type RegisterRequest struct {
	Name           string
	Email          string
	Password       string
	AccountNumber  AccountNumber
	BankName       string
	InitialBalance Money
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}
