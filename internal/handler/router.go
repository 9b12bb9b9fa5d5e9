package handler

import (
	"net/http"
	"time"

	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the storefront frontend.
func NewRouter(
	checkoutSvc *service.CheckoutService,
	catalogSvc *service.CatalogService,
	contactSvc *service.ContactService,
	authSvc *service.AuthService,
	metrics *observability.Metrics,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 🛒 Checkout
		// =============================================
		r.Post("/checkout/sessions", openSessionHandler(checkoutSvc, logger))
		r.Get("/checkout/sessions/{sessionId}", getSessionHandler(checkoutSvc, logger))
		r.Post("/checkout/sessions/{sessionId}/pay", submitPaymentHandler(checkoutSvc, logger))
		r.Delete("/checkout/sessions/{sessionId}", closeSessionHandler(checkoutSvc, logger))
		r.Get("/checkout/sessions/{sessionId}/installments", installmentsHandler(checkoutSvc, logger))

		// =============================================
		// 2. 📦 Catálogo
		// =============================================
		r.Get("/products", listProductsHandler(catalogSvc, logger))
		r.Get("/products/{productId}", getProductHandler(catalogSvc, logger))

		// =============================================
		// 3. ✉️ Contato & Empresa
		// =============================================
		r.Post("/contact", sendContactHandler(contactSvc, logger))
		r.Get("/company/info", companyInfoHandler(catalogSvc, logger))

		// =============================================
		// 4. 📊 Métricas
		// =============================================
		r.Get("/metrics/checkout", checkoutMetricsHandler(metrics, logger))

		// =============================================
		// 5. 🔐 Admin
		// =============================================
		r.Post("/auth/login", loginHandler(authSvc, logger))
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))
			r.Post("/products", createProductHandler(catalogSvc, logger))
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func checkoutMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/checkout")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetCheckoutSnapshot())
	}
}
