package dto

import "encoding/json"

// ProductRequest payload for create and update.
type ProductRequest struct {
	Name        string      `json:"name" form:"name"`
	Description string      `json:"description" form:"description"`
	Price       json.Number `json:"price" form:"price"`
	ImageURL    string      `json:"imageUrl" form:"imageUrl"`
}

// TransferRequest payload.
type TransferRequest struct {
	FromAccountNumber json.Number `json:"fromAccountNumber" form:"fromAccountNumber"`
	ToAccountNumber   json.Number `json:"toAccountNumber" form:"toAccountNumber"`
	Amount            json.Number `json:"amount" form:"amount"`
}
