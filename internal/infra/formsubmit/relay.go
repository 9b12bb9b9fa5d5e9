// Package formsubmit delivers contact-form messages through a third-party
// mail-relay endpoint (FormSubmit-style fixed JSON envelope). It is the
// fallback ContactRelay when no commerce backend is configured.
package formsubmit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/3dstuff/store-bff-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("formsubmit")

// Relay posts contact messages to a FormSubmit-compatible endpoint.
type Relay struct {
	httpClient *http.Client
	endpoint   string
	subject    string
	source     string
	logger     *zap.Logger
}

// NewRelay creates a mail-relay client. subject and source are the fixed
// routing fields the relay expects on every envelope.
func NewRelay(httpClient *http.Client, endpoint, subject, source string, logger *zap.Logger) *Relay {
	return &Relay{
		httpClient: httpClient,
		endpoint:   endpoint,
		subject:    subject,
		source:     source,
		logger:     logger,
	}
}

// envelope is the fixed JSON shape the relay accepts.
type envelope struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Subject  string `json:"_subject"`
	Captcha  bool   `json:"_captcha"`
	Template string `json:"_template"`
	Source   string `json:"source"`
}

// SendContact delivers one contact-form message.
func (r *Relay) SendContact(ctx context.Context, msg *domain.ContactMessage) error {
	ctx, span := tracer.Start(ctx, "Relay.SendContact")
	defer span.End()

	payload, err := json.Marshal(envelope{
		Name:     msg.Name,
		Email:    msg.Email,
		Message:  msg.Message,
		Subject:  r.subject,
		Captcha:  false,
		Template: "table",
		Source:   r.source,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &domain.ErrExternalService{Service: "formsubmit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("form relay rejected message",
			zap.Int("status", resp.StatusCode),
		)
		return &domain.ErrExternalService{
			Service: "formsubmit",
			Err:     fmt.Errorf("relay returned status %d", resp.StatusCode),
		}
	}
	return nil
}
