// Package service — CheckoutService owns the lifecycle of checkout
// sessions: one purchase attempt for one product, from customer data
// collection through payment creation and asynchronous settlement.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/infra/sched"
	"github.com/3dstuff/store-bff-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var checkoutTracer = otel.Tracer("service/checkout")

// CheckoutOptions tune the session controller.
type CheckoutOptions struct {
	// PollInterval is the fixed delay between pix settlement polls.
	PollInterval time.Duration
	// PollBudget is the hard wall-clock bound on the polling loop. It
	// fires even if every individual poll errors.
	PollBudget time.Duration
	// SessionTTL expires abandoned sessions.
	SessionTTL time.Duration
	// CreditCardEnabled is false when no gateway public key is configured;
	// the credit_card method is then blocked before any network call.
	CreditCardEnabled bool
}

// CheckoutService manages checkout sessions. The backend port is nil when
// no commerce backend is configured, which blocks all submissions with a
// typed configuration error.
type CheckoutService struct {
	backend   port.PaymentBackend
	products  port.ProductSource
	instCache port.Cache[[]domain.InstallmentOption]
	metrics   *observability.Metrics
	logger    *zap.Logger
	opts      CheckoutOptions

	sf singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*session
}

// session is one purchase attempt. All mutable fields are guarded by mu;
// async completions additionally check epoch so a late callback from a
// superseded submission or a closed session mutates nothing.
type session struct {
	id           string
	product      domain.Product
	installments []domain.InstallmentOption
	createdAt    time.Time

	mu      sync.Mutex
	state   domain.SessionState
	outcome domain.Outcome
	intent  *domain.PaymentIntent
	closed  bool
	epoch   uint64
	poll    *sched.Handle
}

// NewCheckout creates the checkout session controller. backend may be nil
// (fallback mode: catalog browsing works, payments are blocked).
func NewCheckout(
	backend port.PaymentBackend,
	products port.ProductSource,
	instCache port.Cache[[]domain.InstallmentOption],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts CheckoutOptions,
) *CheckoutService {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.PollBudget <= 0 {
		opts.PollBudget = 10 * time.Minute
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	s := &CheckoutService{
		backend:   backend,
		products:  products,
		instCache: instCache,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
		sessions:  make(map[string]*session),
	}
	go s.expireLoop()
	return s
}

// ============================================================
// Session lifecycle
// ============================================================

// OpenSession starts a checkout session for a product. Installment options
// are loaded best-effort: a backend failure degrades to an empty list
// rather than blocking the session (intentional degraded mode).
func (s *CheckoutService) OpenSession(ctx context.Context, productID string) (*domain.SessionSnapshot, error) {
	ctx, span := checkoutTracer.Start(ctx, "CheckoutService.OpenSession")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("checkout_open", time.Since(start)) }()

	if productID == "" {
		return nil, &domain.ErrValidation{Field: "product_id", Message: "obrigatório"}
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.BuyURL != "" {
		return nil, &domain.ErrValidation{Field: "product_id", Message: "produto usa link externo de compra"}
	}
	if product.Price < 0 {
		return nil, &domain.ErrValidation{Field: "price", Message: "must be non-negative"}
	}

	sess := &session{
		id:           uuid.New().String(),
		product:      *product,
		installments: s.loadInstallments(ctx, productID),
		createdAt:    time.Now(),
		state:        domain.StateIdle,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.SessionOpened()

	s.logger.Info("checkout session opened",
		zap.String("session_id", sess.id),
		zap.String("product_id", productID),
		zap.Float64("amount", float64(product.Price)),
	)
	return sess.snapshot(), nil
}

// Snapshot returns the current externally visible state of a session.
func (s *CheckoutService) Snapshot(sessionID string) (*domain.SessionSnapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

// Installments returns the installment options loaded for the session.
func (s *CheckoutService) Installments(sessionID string) ([]domain.InstallmentOption, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.installments, nil
}

// CloseSession tears a session down synchronously: by the time it returns
// the polling loop has exited, so no stale callback can mutate state. An
// unresolved session records outcome cancelled. Idempotent.
func (s *CheckoutService) CloseSession(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return &domain.ErrNotFound{Resource: "checkout_session", ID: sessionID}
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil
	}
	sess.closed = true
	sess.epoch++ // invalidate in-flight completions
	if sess.state != domain.StateResolved {
		sess.state = domain.StateResolved
		sess.outcome = domain.OutcomeCancelled
		s.metrics.IncrPaymentOutcome(domain.OutcomeCancelled)
	}
	poll := sess.poll
	sess.poll = nil
	sess.mu.Unlock()

	// Stop outside the session lock: Stop waits for an in-flight tick,
	// and ticks take the session lock.
	if poll != nil {
		poll.Stop()
	}
	s.metrics.SessionClosed()

	s.logger.Info("checkout session closed", zap.String("session_id", sessionID))
	return nil
}

// ============================================================
// Payment submission
// ============================================================

// Submit runs one payment attempt through the state machine. Validation
// and configuration gates run before any network call. On transport or
// backend failure the session returns to idle so the caller may retry.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, req *domain.PaymentRequest) (*domain.SessionSnapshot, error) {
	ctx, span := checkoutTracer.Start(ctx, "CheckoutService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("payment.method", string(req.Method)),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("checkout_submit", time.Since(start)) }()

	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	// Gate 1: client-side validation, before anything leaves the process.
	if !req.Method.Valid() {
		return nil, &domain.ErrValidation{Field: "payment_method", Message: "must be pix, credit_card or boleto"}
	}
	if err := req.Customer.Validate(); err != nil {
		return nil, err
	}
	if req.Method == domain.MethodCreditCard && req.CardToken == "" {
		return nil, &domain.ErrValidation{Field: "card_token", Message: "obrigatório"}
	}

	// Gate 2: environment readiness.
	if s.backend == nil {
		return nil, &domain.ErrConfig{Setting: "BACKEND_URL", Action: "pagamentos"}
	}
	if req.Method == domain.MethodCreditCard && !s.opts.CreditCardEnabled {
		return nil, &domain.ErrConfig{Setting: "MERCADO_PAGO_PUBLIC_KEY", Action: "pagamento por cartão"}
	}

	// Gate 3: state machine. At most one create request in flight, and
	// no resubmission once the session has left idle.
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, &domain.ErrSessionClosed{SessionID: sessionID}
	}
	if sess.state != domain.StateIdle {
		state := sess.state
		sess.mu.Unlock()
		return nil, &domain.ErrSessionState{Current: state}
	}
	sess.state = domain.StateSubmitting
	sess.epoch++
	epoch := sess.epoch
	amount := float64(sess.product.Price)
	productID := sess.product.ID
	sess.mu.Unlock()

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	intent, err := s.backend.CreatePayment(ctx, &port.CreatePaymentRequest{
		ProductID:        productID,
		Quantity:         quantity,
		CustomerEmail:    req.Customer.Email,
		CustomerDocument: req.Customer.DocumentDigits(),
		CustomerName:     req.Customer.Name,
		PaymentMethod:    string(req.Method),
		Amount:           amount,
		Installments:     req.Installments,
		CardToken:        req.CardToken,
		PaymentMethodID:  req.PaymentMethodID,
		IssuerID:         req.IssuerID,
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// A response landing after close (or after a newer submission) must be
	// discarded, not acted upon.
	if sess.closed || sess.epoch != epoch {
		return nil, &domain.ErrSessionClosed{SessionID: sessionID}
	}

	if err != nil {
		sess.state = domain.StateIdle
		s.metrics.IncrExternalError("payments")
		s.logger.Warn("payment submission failed",
			zap.String("session_id", sessionID),
			zap.String("method", string(req.Method)),
			zap.Error(err),
		)
		return nil, err
	}

	sess.intent = intent
	s.metrics.IncrPaymentCreated(req.Method)

	switch req.Method {
	case domain.MethodCreditCard:
		// Synchronous decision, no polling state for cards.
		if intent.Status == domain.PaymentApproved {
			s.resolveLocked(sess, domain.OutcomeApproved)
		} else {
			s.resolveLocked(sess, domain.OutcomeRejected)
		}
	case domain.MethodPix:
		sess.state = domain.StateAwaiting
		s.startPollingLocked(sess, epoch, intent.ID)
	case domain.MethodBoleto:
		// Settlement happens out of band; no polling loop.
		sess.state = domain.StateAwaiting
	}

	s.logger.Info("payment intent created",
		zap.String("session_id", sessionID),
		zap.String("payment_id", intent.ID),
		zap.String("method", string(req.Method)),
		zap.String("status", string(intent.Status)),
	)
	return sess.snapshotLocked(), nil
}

// ============================================================
// Settlement polling (pix)
// ============================================================

// startPollingLocked starts the status poller for an intent. Caller holds
// sess.mu. Any previous poller belongs to an older epoch: its ticks are
// already inert, and its handle is replaced so at most one loop is live.
func (s *CheckoutService) startPollingLocked(sess *session, epoch uint64, paymentID string) {
	if prev := sess.poll; prev != nil {
		// Cancel without waiting here (Stop blocks on ticks that need
		// sess.mu). The epoch guard keeps the old loop inert until it
		// drains; CloseSession still waits on the current handle only.
		go prev.Stop()
	}

	sess.poll = sched.Repeat(s.opts.PollInterval, s.opts.PollBudget,
		func(ctx context.Context) bool {
			return s.pollOnce(ctx, sess, epoch, paymentID)
		},
		func() {
			s.expirePoll(sess, epoch, paymentID)
		},
	)
}

// pollOnce performs a single status query. Transport errors are logged and
// never terminal; only approval or the wall-clock budget ends the loop.
func (s *CheckoutService) pollOnce(ctx context.Context, sess *session, epoch uint64, paymentID string) bool {
	status, err := s.backend.GetPaymentStatus(ctx, paymentID)
	if err != nil {
		if ctx.Err() != nil {
			return true // poller stopped mid-request
		}
		s.metrics.IncrPollTick("error")
		s.logger.Warn("payment status poll failed",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		return false
	}

	if status != domain.PaymentApproved {
		s.metrics.IncrPollTick("pending")
		return false
	}

	s.metrics.IncrPollTick("approved")
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || sess.epoch != epoch {
		return true
	}
	if sess.intent != nil {
		sess.intent.Status = domain.PaymentApproved
	}
	s.resolveLocked(sess, domain.OutcomeApproved)
	s.logger.Info("pix payment approved",
		zap.String("session_id", sess.id),
		zap.String("payment_id", paymentID),
	)
	return true
}

// expirePoll fires when the polling budget is exhausted without approval.
func (s *CheckoutService) expirePoll(sess *session, epoch uint64, paymentID string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || sess.epoch != epoch || sess.state != domain.StateAwaiting {
		return
	}
	s.resolveLocked(sess, domain.OutcomeTimedOut)
	s.logger.Warn("pix payment polling timed out",
		zap.String("session_id", sess.id),
		zap.String("payment_id", paymentID),
	)
}

// resolveLocked moves the session to its terminal state. Caller holds mu.
func (s *CheckoutService) resolveLocked(sess *session, outcome domain.Outcome) {
	if sess.state == domain.StateResolved {
		return
	}
	sess.state = domain.StateResolved
	sess.outcome = outcome
	s.metrics.IncrPaymentOutcome(outcome)
}

// ============================================================
// Installment options
// ============================================================

// loadInstallments fetches credit-card installment plans, with a TTL cache
// and single-flight collapse of concurrent lookups per product. A backend
// failure degrades to an empty list: checkout proceeds without plans.
func (s *CheckoutService) loadInstallments(ctx context.Context, productID string) []domain.InstallmentOption {
	if s.backend == nil || !s.opts.CreditCardEnabled {
		return nil
	}

	if cached, ok := s.instCache.Get(productID); ok {
		s.metrics.IncrCacheHit("installments")
		return cached
	}
	s.metrics.IncrCacheMiss("installments")

	v, err, _ := s.sf.Do(productID, func() (any, error) {
		options, err := s.backend.GetInstallmentOptions(ctx, productID)
		if err != nil {
			return nil, err
		}
		s.instCache.Set(productID, options)
		return options, nil
	})
	if err != nil {
		s.metrics.IncrExternalError("payments")
		s.logger.Warn("installment options unavailable, continuing without",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil
	}
	options, _ := v.([]domain.InstallmentOption)
	return options
}

// ============================================================
// Internals
// ============================================================

func (s *CheckoutService) get(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "checkout_session", ID: sessionID}
	}
	return sess, nil
}

// expireLoop closes sessions that outlived the TTL (abandoned carts).
func (s *CheckoutService) expireLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-s.opts.SessionTTL)

		s.mu.RLock()
		var expired []string
		for id, sess := range s.sessions {
			if sess.createdAt.Before(cutoff) {
				expired = append(expired, id)
			}
		}
		s.mu.RUnlock()

		for _, id := range expired {
			s.logger.Info("expiring abandoned checkout session", zap.String("session_id", id))
			_ = s.CloseSession(id)
		}
	}
}

func (sess *session) snapshot() *domain.SessionSnapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked()
}

func (sess *session) snapshotLocked() *domain.SessionSnapshot {
	var intent *domain.PaymentIntent
	if sess.intent != nil {
		copied := *sess.intent
		intent = &copied
	}
	return &domain.SessionSnapshot{
		SessionID:     sess.id,
		ProductID:     sess.product.ID,
		Amount:        float64(sess.product.Price),
		AmountDisplay: domain.FormatBRL(float64(sess.product.Price)),
		State:         sess.state,
		Outcome:       sess.outcome,
		Intent:        intent,
		Installments:  sess.installments,
		CreatedAt:     sess.createdAt,
	}
}
