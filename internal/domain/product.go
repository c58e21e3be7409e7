package domain

// Seller is the owner of a product listing.
type Seller struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Product is a catalogue entry.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       Money   `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Seller      *Seller `json:"seller,omitempty"`
}

// ProductInput describes a new product.
type ProductInput struct {
	Name        string
	Description string
	Price       Money
	ImageURL    string
}

// ProductPatch carries the fields to change on an existing product.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *Money
	ImageURL    *string
}
