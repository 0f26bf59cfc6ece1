package shop

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/transport"
)

// Product is a catalog entry. Name and description carry both storefront
// languages; the view layer picks one.
type Product struct {
	ID            int64   `json:"id"`
	NameEn        string  `json:"nameEn"`
	NameAr        string  `json:"nameAr"`
	DescriptionEn string  `json:"descriptionEn,omitempty"`
	DescriptionAr string  `json:"descriptionAr,omitempty"`
	Category      string  `json:"category,omitempty"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	InStock       bool    `json:"inStock"`
}

// ListProductsParams filters and pages a catalog listing.
type ListProductsParams struct {
	Page     int
	PageSize int
	Search   string
	Category string
}

// CatalogService reads the product catalog. It runs on the public transport
// so anonymous visitors can browse.
type CatalogService struct {
	api *transport.Transport
}

// NewCatalogService wraps the public transport.
func NewCatalogService(public *transport.Transport) *CatalogService {
	return &CatalogService{api: public}
}

// ListProducts returns a page of the catalog.
func (s *CatalogService) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Category != "" {
		query.Set("category", params.Category)
	}

	path := "/api/Products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var env model.Envelope
	if err := s.api.Get(ctx, path, &env); err != nil {
		return nil, err
	}
	return unwrap[[]Product](env)
}

// GetProduct returns a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (Product, error) {
	var env model.Envelope
	if err := s.api.Get(ctx, fmt.Sprintf("/api/Products/%d", id), &env); err != nil {
		return Product{}, err
	}
	return unwrap[Product](env)
}
