package domain

// Product is a catalog item. Price may arrive as a number or as a
// locale-formatted string from the static catalog; the Price type
// normalizes it on unmarshal.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Price  `json:"price"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
	Stock       int    `json:"stock,omitempty"`
	BuyURL      string `json:"buyUrl,omitempty"` // external purchase link; skips checkout when set
}

// NewProductRequest is the admin payload to register a product.
type NewProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Price  `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Stock       int    `json:"stock,omitempty"`
	BuyURL      string `json:"buyUrl,omitempty"`
}

// Validate checks the mandatory product fields.
func (r *NewProductRequest) Validate() error {
	if r.Name == "" {
		return &ErrValidation{Field: "name", Message: "obrigatório"}
	}
	if r.Category == "" {
		return &ErrValidation{Field: "category", Message: "obrigatório"}
	}
	if r.Price < 0 {
		return &ErrValidation{Field: "price", Message: "must be non-negative"}
	}
	return nil
}
