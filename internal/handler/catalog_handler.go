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
// Catalog handlers
// ============================================================

func listProductsHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products")
		defer span.End()

		products, err := svc.ListProducts(ctx, r.URL.Query().Get("category"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func getProductHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/products/{productId}")
		defer span.End()

		product, err := svc.GetProduct(ctx, chi.URLParam(r, "productId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

func createProductHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/products")
		defer span.End()

		var req domain.NewProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := svc.CreateProduct(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		logger.Info("product registered via admin API",
			zap.String("product_id", product.ID),
			zap.String("admin", AdminUserFromContext(ctx)),
		)
		writeJSON(w, http.StatusCreated, product)
	}
}

func companyInfoHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/company/info")
		defer span.End()

		info, err := svc.GetCompanyInfo(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
