package dto

import "encoding/json"

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name           string      `json:"name" form:"name"`
	Email          string      `json:"email" form:"email"`
	Password       string      `json:"password" form:"password"`
	AccountNumber  json.Number `json:"accountNumber" form:"accountNumber"`
	BankName       string      `json:"bankName" form:"bankName"`
	InitialBalance json.Number `json:"initialBalance" form:"initialBalance"`
}

// SessionView describes the caller's session without exposing the token.
type SessionView struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	RoleStatus    string `json:"roleStatus"`
	Privileged    bool   `json:"privileged"`
}
