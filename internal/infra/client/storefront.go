package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ListProducts fetches the catalog, optionally filtered by category.
// The backend may answer either a bare array or an {items: [...]} envelope.
func (b *Backend) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Backend.ListProducts")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.category", category))

	path := "/api/products"
	if category != "" && category != "Todos" {
		path += "?category=" + url.QueryEscape(category)
	}

	var products []domain.Product
	err := resilience.Do(ctx, b.cb, b.cfg, func() error {
		status, body, err := b.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			return externalErr("products", body, fmt.Errorf("products API returned status %d", status))
		}

		if err := json.Unmarshal(body, &products); err == nil {
			return nil
		}
		var envelope struct {
			Items []domain.Product `json:"items"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return externalErr("products", nil, fmt.Errorf("decode products response: %w", err))
		}
		products = envelope.Items
		return nil
	})
	if err != nil {
		return nil, wrapExternal("products", err)
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (b *Backend) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Backend.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	var product domain.Product
	err := resilience.Do(ctx, b.cb, b.cfg, func() error {
		status, body, err := b.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			return &domain.ErrNotFound{Resource: "product", ID: id}
		}
		if status < 200 || status >= 300 {
			return externalErr("products", body, fmt.Errorf("products API returned status %d", status))
		}
		return json.Unmarshal(body, &product)
	})
	if err != nil {
		return nil, wrapExternal("products", err)
	}
	return &product, nil
}

// CreateProduct registers a new product. Not retried (not idempotent).
func (b *Backend) CreateProduct(ctx context.Context, req *domain.NewProductRequest) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Backend.CreateProduct")
	defer span.End()

	result, err := b.cb.Execute(func() (any, error) {
		status, body, err := b.do(ctx, http.MethodPost, "/api/products", req)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, externalErr("products", body, fmt.Errorf("products API returned status %d", status))
		}
		var product domain.Product
		if err := json.Unmarshal(body, &product); err != nil {
			return nil, externalErr("products", nil, fmt.Errorf("decode product response: %w", err))
		}
		return &product, nil
	})
	if err != nil {
		return nil, wrapExternal("products", err)
	}
	return result.(*domain.Product), nil
}

// SendContact posts a contact-form message to the backend. Not retried.
func (b *Backend) SendContact(ctx context.Context, msg *domain.ContactMessage) error {
	ctx, span := tracer.Start(ctx, "Backend.SendContact")
	defer span.End()

	_, err := b.cb.Execute(func() (any, error) {
		status, body, err := b.do(ctx, http.MethodPost, "/api/contact", msg)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, externalErr("contact", body, fmt.Errorf("contact API returned status %d", status))
		}
		return nil, nil
	})
	if err != nil {
		return wrapExternal("contact", err)
	}
	return nil
}

// GetCompanyInfo fetches the public company profile.
func (b *Backend) GetCompanyInfo(ctx context.Context) (*domain.CompanyInfo, error) {
	ctx, span := tracer.Start(ctx, "Backend.GetCompanyInfo")
	defer span.End()

	var info domain.CompanyInfo
	err := resilience.Do(ctx, b.cb, b.cfg, func() error {
		status, body, err := b.do(ctx, http.MethodGet, "/api/company-info", nil)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			return externalErr("company", body, fmt.Errorf("company API returned status %d", status))
		}
		return json.Unmarshal(body, &info)
	})
	if err != nil {
		return nil, wrapExternal("company", err)
	}
	return &info, nil
}
