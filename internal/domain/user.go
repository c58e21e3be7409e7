package domain

// Account is a bank account owned by the current user.
type Account struct {
	ID            int64         `json:"id"`
	AccountNumber AccountNumber `json:"accountNumber"`
	Balance       Money         `json:"balance"`
	BankName      string        `json:"bankName,omitempty"`
}

// User is the GET /users/me payload.
type User struct {
	ID       int64     `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role,omitempty"`
	Accounts []Account `json:"accounts"`
}

// NewUser is the privileged create-user payload.
type NewUser struct {
	Name           string
	Email          string
	Password       string
	AccountNumber  AccountNumber
	InitialBalance Money
}
