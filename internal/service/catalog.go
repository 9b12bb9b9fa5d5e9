package service

import (
	"context"
	"fmt"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var catalogTracer = otel.Tracer("service/catalog")

// CatalogService serves the product catalog. The source is chosen at
// startup: the commerce backend when configured, otherwise the static
// JSON catalog. Listings are cached with a short TTL.
type CatalogService struct {
	source  port.ProductSource
	writer  port.ProductWriter // nil in fallback mode (read-only catalog)
	company port.CompanyInfoSource
	cache   port.Cache[[]domain.Product]
	metrics *observability.Metrics
	logger  *zap.Logger

	companyDefaults domain.CompanyInfo
}

// NewCatalog creates the catalog service. writer and company may be nil;
// companyDefaults answers GET company info when no source is available.
func NewCatalog(
	source port.ProductSource,
	writer port.ProductWriter,
	company port.CompanyInfoSource,
	cache port.Cache[[]domain.Product],
	metrics *observability.Metrics,
	logger *zap.Logger,
	companyDefaults domain.CompanyInfo,
) *CatalogService {
	return &CatalogService{
		source:          source,
		writer:          writer,
		company:         company,
		cache:           cache,
		metrics:         metrics,
		logger:          logger,
		companyDefaults: companyDefaults,
	}
}

// ListProducts returns the catalog, optionally filtered by category.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.category", category))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("products_list", time.Since(start)) }()

	key := "products:" + category
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("products")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("products")

	products, err := s.source.ListProducts(ctx, category)
	if err != nil {
		s.metrics.IncrExternalError("products")
		return nil, err
	}
	s.cache.Set(key, products)
	return products, nil
}

// GetProduct returns one product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "obrigatório"}
	}
	return s.source.GetProduct(ctx, id)
}

// CreateProduct registers a product through the backend. Unavailable in
// fallback mode: the static catalog is read-only.
func (s *CatalogService) CreateProduct(ctx context.Context, req *domain.NewProductRequest) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if s.writer == nil {
		return nil, &domain.ErrConfig{Setting: "BACKEND_URL", Action: "cadastro de produtos"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.writer.CreateProduct(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("products")
		return nil, err
	}

	// Listings are stale now; drop the hot keys.
	s.cache.Delete("products:")
	s.cache.Delete("products:" + product.Category)
	s.cache.Delete(fmt.Sprintf("products:%s", "Todos"))

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("category", product.Category),
	)
	return product, nil
}

// GetCompanyInfo returns the public company profile, falling back to the
// configured defaults when no source is available or the source fails.
func (s *CatalogService) GetCompanyInfo(ctx context.Context) (*domain.CompanyInfo, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetCompanyInfo")
	defer span.End()

	if s.company == nil {
		info := s.companyDefaults
		return &info, nil
	}

	info, err := s.company.GetCompanyInfo(ctx)
	if err != nil {
		s.logger.Warn("company info unavailable, using defaults", zap.Error(err))
		fallback := s.companyDefaults
		return &fallback, nil
	}
	return info, nil
}
