package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/3dstuff/store-bff-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var config *domain.ErrConfig
	var sessionState *domain.ErrSessionState
	var sessionClosed *domain.ErrSessionClosed
	var external *domain.ErrExternalService
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var unauthorized *domain.ErrUnauthorized

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &config):
		logger.Warn("blocked by missing configuration", zap.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &sessionState):
		logger.Debug("session state conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &sessionClosed):
		logger.Debug("session closed", zap.String("error", err.Error()))
		writeError(w, http.StatusGone, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		// Surface the backend-provided detail when present.
		if external.Detail != "" {
			writeError(w, http.StatusBadGateway, external.Detail)
		} else {
			writeError(w, http.StatusBadGateway, "falha na comunicação com o serviço de pagamentos")
		}
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
