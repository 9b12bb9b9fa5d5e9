// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/3dstuff/store-bff-go/internal/domain"
)

// PaymentBackend is the commerce-backend payment contract. Implemented by
// the HTTP client; absent entirely when no backend URL is configured.
type PaymentBackend interface {
	// CreatePayment submits one purchase attempt and returns the created
	// intent. A declined card still returns an intent (status rejected);
	// a transport or backend failure returns *domain.ErrExternalService.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*domain.PaymentIntent, error)

	// GetPaymentStatus returns the current status of an intent.
	GetPaymentStatus(ctx context.Context, paymentID string) (domain.PaymentStatus, error)

	// GetInstallmentOptions returns credit-card installment plans for a
	// product. An empty list is a valid answer.
	GetInstallmentOptions(ctx context.Context, productID string) ([]domain.InstallmentOption, error)
}

// CreatePaymentRequest is the wire payload for POST /api/payments/create.
type CreatePaymentRequest struct {
	ProductID        string  `json:"product_id"`
	Quantity         int     `json:"quantity"`
	CustomerEmail    string  `json:"customer_email"`
	CustomerDocument string  `json:"customer_document"` // digits only
	CustomerName     string  `json:"customer_name"`
	PaymentMethod    string  `json:"payment_method"`
	Amount           float64 `json:"amount"`

	// credit_card only
	Installments    int    `json:"installments,omitempty"`
	CardToken       string `json:"card_token,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	IssuerID        string `json:"issuer_id,omitempty"`
}

// ProductSource lists and resolves catalog products. Implemented by the
// backend HTTP client or by the static JSON catalog fallback.
type ProductSource interface {
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// ProductWriter registers new products. Only the backend client implements
// it; the static catalog is read-only.
type ProductWriter interface {
	CreateProduct(ctx context.Context, req *domain.NewProductRequest) (*domain.Product, error)
}

// ContactRelay delivers a contact-form message. Implemented by the backend
// client or by the mail-relay fallback.
type ContactRelay interface {
	SendContact(ctx context.Context, msg *domain.ContactMessage) error
}

// CompanyInfoSource returns the public company profile.
type CompanyInfoSource interface {
	GetCompanyInfo(ctx context.Context) (*domain.CompanyInfo, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
