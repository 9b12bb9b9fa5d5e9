package handler

import (
	"encoding/json"
	"net/http"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/service"

	"go.uber.org/zap"
)

func sendContactHandler(svc *service.ContactService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contact")
		defer span.End()

		var msg domain.ContactMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.Send(ctx, &msg); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
