package domain_test

import (
	"errors"
	"testing"

	"github.com/3dstuff/store-bff-go/internal/domain"
)

func TestCustomerValidate(t *testing.T) {
	valid := domain.Customer{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Document: "123.456.789-09",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid customer, got %v", err)
	}

	tests := []struct {
		name     string
		customer domain.Customer
		field    string
	}{
		{
			name:     "empty name",
			customer: domain.Customer{Name: "   ", Email: "maria@example.com", Document: "12345678909"},
			field:    "name",
		},
		{
			name:     "empty email",
			customer: domain.Customer{Name: "Maria", Email: "", Document: "12345678909"},
			field:    "email",
		},
		{
			name:     "malformed email",
			customer: domain.Customer{Name: "Maria", Email: "maria@semdominio", Document: "12345678909"},
			field:    "email",
		},
		{
			name:     "email with spaces",
			customer: domain.Customer{Name: "Maria", Email: "ma ria@example.com", Document: "12345678909"},
			field:    "email",
		},
		{
			name:     "empty document",
			customer: domain.Customer{Name: "Maria", Email: "maria@example.com", Document: ""},
			field:    "document",
		},
		{
			name:     "document wrong length",
			customer: domain.Customer{Name: "Maria", Email: "maria@example.com", Document: "123456"},
			field:    "document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.customer.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var ve *domain.ErrValidation
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ErrValidation, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestCustomerValidate_FormattedDocuments(t *testing.T) {
	// CPF and CNPJ with punctuation must pass: only digits count.
	cpf := domain.Customer{Name: "Maria", Email: "m@example.com", Document: "123.456.789-09"}
	if err := cpf.Validate(); err != nil {
		t.Errorf("formatted CPF: %v", err)
	}

	cnpj := domain.Customer{Name: "Empresa", Email: "e@example.com", Document: "12.345.678/0001-90"}
	if err := cnpj.Validate(); err != nil {
		t.Errorf("formatted CNPJ: %v", err)
	}
}

func TestDocumentDigits(t *testing.T) {
	c := domain.Customer{Document: "12.345.678/0001-90"}
	if got := c.DocumentDigits(); got != "12345678000190" {
		t.Errorf("DocumentDigits() = %q, want %q", got, "12345678000190")
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []domain.PaymentMethod{domain.MethodPix, domain.MethodCreditCard, domain.MethodBoleto} {
		if !m.Valid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if domain.PaymentMethod("paypal").Valid() {
		t.Error("expected unknown method to be invalid")
	}
	if domain.PaymentMethod("").Valid() {
		t.Error("expected empty method to be invalid")
	}
}
