package domain

// Transaction is a ledger entry visible to the current user.
type Transaction struct {
	ID                int64         `json:"id"`
	FromAccountNumber AccountNumber `json:"fromAccountNumber"`
	ToAccountNumber   AccountNumber `json:"toAccountNumber"`
	Amount            Money         `json:"amount"`
	Status            string        `json:"status"`
	Timestamp         Timestamp     `json:"timestamp"`
}

// TransferRequest moves Amount between two accounts.
type TransferRequest struct {
	FromAccountNumber AccountNumber
	ToAccountNumber   AccountNumber
	Amount            Money
}

// TransferResult is whatever the backend returned for an accepted transfer.
// Transaction is set when the body decodes as a transaction, Message otherwise.
type TransferResult struct {
	Transaction *Transaction
	Message     string
}
