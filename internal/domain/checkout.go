package domain

import (
	"regexp"
	"strings"
	"time"
)

// ============================================================
// Payment methods
// ============================================================

// PaymentMethod identifies how the customer pays. Exactly one is active
// per checkout session.
type PaymentMethod string

const (
	MethodPix        PaymentMethod = "pix"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodBoleto     PaymentMethod = "boleto"
)

// Valid reports whether the method is one of the supported variants.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodPix, MethodCreditCard, MethodBoleto:
		return true
	}
	return false
}

// ============================================================
// Customer
// ============================================================

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Customer holds the buyer data required before any payment submission.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"` // CPF or CNPJ, formatting allowed
}

// DocumentDigits returns the document with every non-digit stripped.
func (c Customer) DocumentDigits() string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Document)
}

// Validate checks all mandatory fields. It runs synchronously and returns
// the first failure; no network call may happen until it passes.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ErrValidation{Field: "name", Message: "obrigatório"}
	}
	if strings.TrimSpace(c.Email) == "" {
		return &ErrValidation{Field: "email", Message: "obrigatório"}
	}
	if !emailRe.MatchString(strings.TrimSpace(c.Email)) {
		return &ErrValidation{Field: "email", Message: "email inválido"}
	}
	if strings.TrimSpace(c.Document) == "" {
		return &ErrValidation{Field: "document", Message: "obrigatório"}
	}
	digits := c.DocumentDigits()
	if len(digits) != 11 && len(digits) != 14 {
		return &ErrValidation{Field: "document", Message: "CPF deve ter 11 dígitos ou CNPJ 14 dígitos"}
	}
	return nil
}

// ============================================================
// Payment intent
// ============================================================

// PaymentStatus is the backend-reported status of a payment intent.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// PaymentIntent is the record created by submitting customer + product +
// method to the commerce backend. Owned exclusively by one checkout
// session and discarded when the session closes.
type PaymentIntent struct {
	ID        string        `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	Method    PaymentMethod `json:"payment_method"`
	Amount    float64       `json:"amount"`
	QRCode    string        `json:"qr_code,omitempty"`    // pix: copy-paste code
	QRBase64  string        `json:"qr_base64,omitempty"`  // pix: QR image payload
	TicketURL string        `json:"ticket_url,omitempty"` // boleto: document URL
	CreatedAt time.Time     `json:"created_at"`
}

// InstallmentOption is one credit-card installment plan for a product.
type InstallmentOption struct {
	Installments       int     `json:"installments"`
	InstallmentAmount  float64 `json:"installment_amount"`
	RecommendedMessage string  `json:"recommended_message,omitempty"`
}

// ============================================================
// Checkout session
// ============================================================

// SessionState is a state of the checkout session machine.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateSubmitting SessionState = "submitting"
	StateAwaiting   SessionState = "awaiting_confirmation"
	StateResolved   SessionState = "resolved"
)

// Outcome is the terminal result of a resolved session.
type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeRejected  Outcome = "rejected"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeTimedOut  Outcome = "timed_out"
)

// PaymentRequest is the submit payload for one purchase attempt.
type PaymentRequest struct {
	Customer Customer      `json:"customer"`
	Method   PaymentMethod `json:"payment_method"`
	Quantity int           `json:"quantity,omitempty"`

	// Credit card only — the hosted widget tokenizes the card client-side,
	// so the BFF never sees raw card data.
	Installments    int    `json:"installments,omitempty"`
	CardToken       string `json:"card_token,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	IssuerID        string `json:"issuer_id,omitempty"`
}

// SessionSnapshot is the externally visible view of a session.
type SessionSnapshot struct {
	SessionID     string              `json:"session_id"`
	ProductID     string              `json:"product_id"`
	Amount        float64             `json:"amount"`
	AmountDisplay string              `json:"amount_display"`
	State         SessionState        `json:"state"`
	Outcome       Outcome             `json:"outcome,omitempty"`
	Intent        *PaymentIntent      `json:"payment,omitempty"`
	Installments  []InstallmentOption `json:"installment_options,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}
