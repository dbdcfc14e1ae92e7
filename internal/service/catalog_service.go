package service

import (
	"context"
	"fmt"
	"math"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

const (
	// DefaultLatestLimit is the number of products in the "latest" strip
	DefaultLatestLimit = 8

	// DefaultFeaturedLimit is the number of hero products on the homepage
	DefaultFeaturedLimit = 5

	// FeaturedPoolSize is how many of the newest products hero picks draw from
	FeaturedPoolSize = 50

	// DefaultRelatedLimit is the number of "you may like" products on a detail page
	DefaultRelatedLimit = 20

	// DefaultGalleryPoolSize is how many products the image gallery draws from
	DefaultGalleryPoolSize = 100
)

// CatalogService defines the read operations exposed to the storefront.
// Every call fetches the collection and runs a fresh query over it.
type CatalogService interface {
	FetchProducts(ctx context.Context, query *domain.Query) (*domain.ProductsResponse, error)
	FetchLatestProducts(ctx context.Context, limit int) ([]domain.Product, error)
	FetchProductsByCategory(ctx context.Context, category string, limit int) ([]domain.Product, error)
	GetUniqueCategories(ctx context.Context) ([]string, error)
	GetUniqueTags(ctx context.Context) ([]string, error)
	FetchUniqueCategoryProducts(ctx context.Context, limit int) ([]domain.Product, error)
	FetchProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FetchRelatedProducts(ctx context.Context, slug string, limit int) ([]domain.Product, error)
	FetchGalleryImages(ctx context.Context, poolSize int) ([]string, error)
}

type catalogService struct {
	source repository.ProductSource
	logger *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(source repository.ProductSource, logger *zap.Logger) CatalogService {
	return &catalogService{
		source: source,
		logger: logger,
	}
}

// FetchProducts runs query over the full collection. A nil query returns
// every product with the default ordering.
func (s *catalogService) FetchProducts(ctx context.Context, query *domain.Query) (*domain.ProductsResponse, error) {
	products, err := s.source.FetchAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch products", zap.Error(err))
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}

	var q domain.Query
	if query != nil {
		q = *query
	}

	result := catalog.Apply(products, q)

	s.logger.Debug("Catalog query applied",
		zap.Int("source_size", len(products)),
		zap.Int("total", result.Pagination.Total),
		zap.Int("returned", len(result.Data)),
		zap.String("sort_by", string(result.Filters.SortBy)),
		zap.String("sort_order", string(result.Filters.SortOrder)),
	)

	return &result, nil
}

// FetchLatestProducts returns the newest products first
func (s *catalogService) FetchLatestProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	result, err := s.FetchProducts(ctx, newestQuery(limit))
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// FetchProductsByCategory returns the newest products of one category
func (s *catalogService) FetchProductsByCategory(ctx context.Context, category string, limit int) ([]domain.Product, error) {
	q := newestQuery(limit)
	q.Category = &category

	result, err := s.FetchProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetUniqueCategories returns every category in first-seen order
func (s *catalogService) GetUniqueCategories(ctx context.Context) ([]string, error) {
	result, err := s.FetchProducts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return catalog.UniqueCategories(result.Data), nil
}

// GetUniqueTags returns every non-blank tag, sorted
func (s *catalogService) GetUniqueTags(ctx context.Context) ([]string, error) {
	result, err := s.FetchProducts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return catalog.UniqueTags(result.Data), nil
}

// FetchUniqueCategoryProducts picks hero products from the newest
// FeaturedPoolSize products, preferring one per category
func (s *catalogService) FetchUniqueCategoryProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	result, err := s.FetchProducts(ctx, newestQuery(FeaturedPoolSize))
	if err != nil {
		return nil, err
	}
	return catalog.PickUniqueCategories(result.Data, limit), nil
}

// FetchProductBySlug returns the product with the given slug. A missing
// product is reported as (nil, nil).
func (s *catalogService) FetchProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	result, err := s.FetchProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	product := catalog.FindBySlug(result.Data, slug)
	if product == nil {
		s.logger.Debug("Product not found", zap.String("slug", slug))
	}
	return product, nil
}

// FetchRelatedProducts returns the newest products other than slug
func (s *catalogService) FetchRelatedProducts(ctx context.Context, slug string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		return []domain.Product{}, nil
	}

	// One extra so the excluded product does not shorten the list.
	result, err := s.FetchProducts(ctx, newestQuery(limit+min(1, math.MaxInt-limit)))
	if err != nil {
		return nil, err
	}

	related := make([]domain.Product, 0, min(limit, len(result.Data)))
	for _, p := range result.Data {
		if p.Slug == slug {
			continue
		}
		if len(related) == limit {
			break
		}
		related = append(related, p)
	}
	return related, nil
}

// FetchGalleryImages returns the distinct primary images of the first
// poolSize products in default order
func (s *catalogService) FetchGalleryImages(ctx context.Context, poolSize int) ([]string, error) {
	result, err := s.FetchProducts(ctx, &domain.Query{Limit: &poolSize})
	if err != nil {
		return nil, err
	}
	return catalog.UniqueImageURLs(result.Data), nil
}

func newestQuery(limit int) *domain.Query {
	return &domain.Query{
		SortBy:    domain.SortByCreatedAt,
		SortOrder: domain.SortOrderDesc,
		Limit:     &limit,
	}
}
