package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/cache"
	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/service"

	"go.uber.org/zap"
)

type countingProductSource struct {
	*mockProductSource
	listCalls atomic.Int32
}

func (c *countingProductSource) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	c.listCalls.Add(1)
	return c.mockProductSource.ListProducts(ctx, category)
}

type mockProductWriter struct {
	created *domain.Product
	err     error
}

func (m *mockProductWriter) CreateProduct(_ context.Context, req *domain.NewProductRequest) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &domain.Product{ID: "novo", Name: req.Name, Price: req.Price, Category: req.Category}
	return m.created, nil
}

type mockCompanySource struct {
	info *domain.CompanyInfo
	err  error
}

func (m *mockCompanySource) GetCompanyInfo(_ context.Context) (*domain.CompanyInfo, error) {
	return m.info, m.err
}

func newCatalogSvc(source *countingProductSource, writer *mockProductWriter, company *mockCompanySource) *service.CatalogService {
	return service.NewCatalog(
		source,
		writer,
		company,
		cache.New[[]domain.Product](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		domain.CompanyInfo{Name: "3D Stuff", Email: "contato@3dstuff.com.br"},
	)
}

func TestListProducts_SecondCallServedFromCache(t *testing.T) {
	source := &countingProductSource{mockProductSource: testProducts()}
	svc := newCatalogSvc(source, &mockProductWriter{}, &mockCompanySource{})

	if _, err := svc.ListProducts(context.Background(), "Decoração"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListProducts(context.Background(), "Decoração"); err != nil {
		t.Fatal(err)
	}

	if got := source.listCalls.Load(); got != 1 {
		t.Errorf("expected 1 source call, got %d", got)
	}
}

func TestCreateProduct_ReadOnlyWithoutBackend(t *testing.T) {
	source := &countingProductSource{mockProductSource: testProducts()}
	svc := service.NewCatalog(
		source,
		nil, // fallback mode
		nil,
		cache.New[[]domain.Product](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		domain.CompanyInfo{},
	)

	_, err := svc.CreateProduct(context.Background(), &domain.NewProductRequest{Name: "X", Category: "Y"})
	var ce *domain.ErrConfig
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ErrConfig in read-only mode, got %v", err)
	}
}

func TestCreateProduct_ValidatesAndInvalidatesCache(t *testing.T) {
	source := &countingProductSource{mockProductSource: testProducts()}
	writer := &mockProductWriter{}
	svc := newCatalogSvc(source, writer, &mockCompanySource{})

	// Warm the cache for the category being written to.
	if _, err := svc.ListProducts(context.Background(), "Decoração"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CreateProduct(context.Background(), &domain.NewProductRequest{Price: 10}); err == nil {
		t.Error("expected validation error for missing name")
	}

	p, err := svc.CreateProduct(context.Background(), &domain.NewProductRequest{
		Name: "Luminária", Category: "Decoração", Price: 120,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Error("expected created product id")
	}

	// The category listing must hit the source again after the write.
	before := source.listCalls.Load()
	if _, err := svc.ListProducts(context.Background(), "Decoração"); err != nil {
		t.Fatal(err)
	}
	if got := source.listCalls.Load(); got != before+1 {
		t.Errorf("expected cache invalidation to force a source call, got %d -> %d", before, got)
	}
}

func TestGetCompanyInfo_FallsBackToDefaults(t *testing.T) {
	source := &countingProductSource{mockProductSource: testProducts()}

	// No company source at all.
	svc := service.NewCatalog(source, nil, nil,
		cache.New[[]domain.Product](time.Minute),
		observability.NewMetrics(), zap.NewNop(),
		domain.CompanyInfo{Name: "3D Stuff", Email: "contato@3dstuff.com.br"},
	)
	info, err := svc.GetCompanyInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "3D Stuff" {
		t.Errorf("expected default company name, got %q", info.Name)
	}

	// Source present but failing.
	failing := &mockCompanySource{err: errors.New("down")}
	svc = newCatalogSvc(source, &mockProductWriter{}, failing)
	info, err = svc.GetCompanyInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "3D Stuff" {
		t.Errorf("expected defaults on source failure, got %q", info.Name)
	}

	// Healthy source wins.
	healthy := &mockCompanySource{info: &domain.CompanyInfo{Name: "Backend Corp"}}
	svc = newCatalogSvc(source, &mockProductWriter{}, healthy)
	info, err = svc.GetCompanyInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "Backend Corp" {
		t.Errorf("expected backend company info, got %q", info.Name)
	}
}
