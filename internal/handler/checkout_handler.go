package handler

import (
	"encoding/json"
	"net/http"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Checkout session handlers
// ============================================================

func openSessionHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/checkout/sessions")
		defer span.End()

		var req struct {
			ProductID string `json:"product_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		snapshot, err := svc.OpenSession(ctx, req.ProductID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, snapshot)
	}
}

func getSessionHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/checkout/sessions/{sessionId}")
		defer span.End()

		snapshot, err := svc.Snapshot(chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func submitPaymentHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/checkout/sessions/{sessionId}/pay")
		defer span.End()

		var req domain.PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		snapshot, err := svc.Submit(ctx, chi.URLParam(r, "sessionId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func closeSessionHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "DELETE /v1/checkout/sessions/{sessionId}")
		defer span.End()

		if err := svc.CloseSession(chi.URLParam(r, "sessionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func installmentsHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/checkout/sessions/{sessionId}/installments")
		defer span.End()

		options, err := svc.Installments(chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":             true,
			"installment_options": options,
		})
	}
}
