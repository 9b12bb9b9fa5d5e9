package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/resilience"
	"github.com/3dstuff/store-bff-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// createPaymentResponse is the wire shape of POST /api/payments/create.
type createPaymentResponse struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	QRCode    string `json:"qr_code"`
	QRBase64  string `json:"qr_base64"`
	TicketURL string `json:"ticket_url"`
	Detail    string `json:"detail"`
}

// CreatePayment submits one purchase attempt. Never retried: the checkout
// session allows at most one create request in flight, and a duplicate on a
// flaky network would double-charge.
func (b *Backend) CreatePayment(ctx context.Context, req *port.CreatePaymentRequest) (*domain.PaymentIntent, error) {
	ctx, span := tracer.Start(ctx, "Backend.CreatePayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.method", req.PaymentMethod),
		attribute.Float64("payment.amount", req.Amount),
	)

	result, err := b.cb.Execute(func() (any, error) {
		status, body, err := b.do(ctx, http.MethodPost, "/api/payments/create", req)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, externalErr("payments", body, fmt.Errorf("payments API returned status %d", status))
		}

		var out createPaymentResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, externalErr("payments", nil, fmt.Errorf("decode create response: %w", err))
		}
		if !out.Success {
			return nil, &domain.ErrExternalService{
				Service: "payments",
				Detail:  out.Detail,
				Err:     fmt.Errorf("backend reported failure"),
			}
		}
		return &out, nil
	})
	if err != nil {
		b.logger.Warn("payment create failed",
			zap.String("method", req.PaymentMethod),
			zap.Error(err),
		)
		return nil, wrapExternal("payments", err)
	}

	out := result.(*createPaymentResponse)
	return &domain.PaymentIntent{
		ID:        out.PaymentID,
		Status:    domain.PaymentStatus(out.Status),
		Method:    domain.PaymentMethod(req.PaymentMethod),
		Amount:    req.Amount,
		QRCode:    out.QRCode,
		QRBase64:  out.QRBase64,
		TicketURL: out.TicketURL,
		CreatedAt: time.Now(),
	}, nil
}

// GetPaymentStatus queries the current status of an intent. Called from the
// polling loop, so no retry layer — the next tick is the retry.
func (b *Backend) GetPaymentStatus(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	ctx, span := tracer.Start(ctx, "Backend.GetPaymentStatus")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	result, err := b.cb.Execute(func() (any, error) {
		status, body, err := b.do(ctx, http.MethodGet, "/api/payments/"+url.PathEscape(paymentID)+"/status", nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			return nil, &domain.ErrNotFound{Resource: "payment", ID: paymentID}
		}
		if status < 200 || status >= 300 {
			return nil, externalErr("payments", body, fmt.Errorf("status API returned status %d", status))
		}

		var out struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, externalErr("payments", nil, fmt.Errorf("decode status response: %w", err))
		}
		return domain.PaymentStatus(out.Status), nil
	})
	if err != nil {
		return "", wrapExternal("payments", err)
	}
	return result.(domain.PaymentStatus), nil
}

// GetInstallmentOptions fetches credit-card installment plans for a product.
// Idempotent, so retried with backoff under the breaker.
func (b *Backend) GetInstallmentOptions(ctx context.Context, productID string) ([]domain.InstallmentOption, error) {
	ctx, span := tracer.Start(ctx, "Backend.GetInstallmentOptions")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	var options []domain.InstallmentOption
	err := resilience.Do(ctx, b.cb, b.cfg, func() error {
		status, body, err := b.do(ctx, http.MethodGet, "/api/payments/installments/"+url.PathEscape(productID), nil)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			return externalErr("payments", body, fmt.Errorf("installments API returned status %d", status))
		}

		var out struct {
			Success            bool                       `json:"success"`
			InstallmentOptions []domain.InstallmentOption `json:"installment_options"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return externalErr("payments", nil, fmt.Errorf("decode installments response: %w", err))
		}
		if !out.Success {
			options = nil
			return nil
		}
		options = out.InstallmentOptions
		return nil
	})
	if err != nil {
		return nil, wrapExternal("payments", err)
	}
	return options, nil
}

// wrapExternal keeps already-typed domain errors intact and wraps raw
// transport/breaker errors as external-service failures.
func wrapExternal(service string, err error) error {
	switch err.(type) {
	case *domain.ErrExternalService, *domain.ErrNotFound, *domain.ErrValidation:
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: service}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: service}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}
