package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListProductsRequest represents the query string of a product listing
type ListProductsRequest struct {
	Search    *string  `json:"search" validate:"omitempty,max=200"`
	Category  *string  `json:"category"`
	Tag       *string  `json:"tag"`
	MinPrice  *float64 `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"maxPrice" validate:"omitempty,gte=0"`
	SortBy    string   `json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt name price"`
	SortOrder string   `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Limit     *int     `json:"limit" validate:"omitempty,gte=1"`
	Offset    *int     `json:"offset" validate:"omitempty,gte=0"`
}

// ToQuery converts a validated request into a catalog query
func (req ListProductsRequest) ToQuery() domain.Query {
	q := domain.Query{
		Search:    req.Search,
		Category:  req.Category,
		Tag:       req.Tag,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		SortBy:    domain.SortField(req.SortBy),
		SortOrder: domain.SortOrder(req.SortOrder),
		Limit:     req.Limit,
	}
	if req.Offset != nil {
		q.Offset = *req.Offset
	}
	return q
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/latest", h.LatestProducts)
			r.Get("/featured", h.FeaturedProducts)
			r.Get("/{slug}", h.GetProduct)
			r.Get("/{slug}/related", h.RelatedProducts)
		})

		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{category}/products", h.CategoryProducts)
		r.Get("/tags", h.ListTags)
		r.Get("/gallery", h.GalleryImages)
	})
}

// ListProducts handles filtered, sorted and paginated product listings
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	req, validationErrors := parseListProductsRequest(r.URL.Query())
	if len(validationErrors) == 0 {
		if err := middleware.ValidateRequest(&req); err != nil {
			validationErrors = middleware.FormatValidationErrors(err)
		}
	}
	if len(validationErrors) > 0 {
		h.logger.Debug("Listing validation failed", zap.Any("errors", validationErrors))
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	query := req.ToQuery()
	result, err := h.catalogService.FetchProducts(r.Context(), &query)
	if err != nil {
		h.respondWithCatalogError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// GetProduct handles product detail lookups by slug
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalogService.FetchProductBySlug(r.Context(), slug)
	if err != nil {
		h.respondWithCatalogError(w, r, err)
		return
	}

	if product == nil {
		middleware.RespondWithRequestError(w, r, http.StatusNotFound, "product not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{
		Product: *product,
		Images:  product.Images(),
	})
}

// ListCategories handles the category facet
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.GetUniqueCategories(r.Context())
	if err != nil {
		h.respondWithCatalogError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[string]{Data: categories})
}

// ListTags handles the tag facet
func (h *ProductHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalogService.GetUniqueTags(r.Context())
	if err != nil {
		h.respondWithCatalogError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[string]{Data: tags})
}

// CategoryProducts handles the newest products of a single category
func (h *ProductHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, service.DefaultLatestLimit)
	if !ok {
		return
	}

	category := chi.URLParam(r, "category")
	// chi matches against the raw path when the request carries escaped slashes
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(category)
		if err != nil {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "category", Message: "Invalid value"},
			})
			return
		}
		category = unescaped
	}

	products, err := h.catalogService.FetchProductsByCategory(r.Context(), category, limit)
	if err != nil {
		h.respondWithCatalogError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[domain.Product]{Data: products})
}

// LatestProducts handles the newest-products strip of the homepage
func (h *ProductHandler) LatestProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, service.DefaultLatestLimit)
	if !ok {
		return
	}

	products, err := h.catalogService.FetchLatestProducts(r.Context(), limit)
	h.respondWithSection(w, r, "latest", products, err)
}

// FeaturedProducts handles the homepage hero, one product per category
func (h *ProductHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, service.DefaultFeaturedLimit)
	if !ok {
		return
	}

	products, err := h.catalogService.FetchUniqueCategoryProducts(r.Context(), limit)
	h.respondWithSection(w, r, "featured", products, err)
}

// RelatedProducts handles the "you may like" section of a product page
func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, service.DefaultRelatedLimit)
	if !ok {
		return
	}

	products, err := h.catalogService.FetchRelatedProducts(r.Context(), chi.URLParam(r, "slug"), limit)
	h.respondWithSection(w, r, "related", products, err)
}

// GalleryImages handles the image feed of the homepage gallery
func (h *ProductHandler) GalleryImages(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, service.DefaultGalleryPoolSize)
	if !ok {
		return
	}

	images, err := h.catalogService.FetchGalleryImages(r.Context(), limit)
	if err != nil {
		h.logger.Warn("Gallery degraded to empty result",
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
		images = []string{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[string]{Data: images})
}

// respondWithSection writes a promotional section. These sections degrade to
// an empty list instead of failing the page.
func (h *ProductHandler) respondWithSection(w http.ResponseWriter, r *http.Request, section string, products []domain.Product, err error) {
	if err != nil {
		h.logger.Warn("Section degraded to empty result",
			zap.String("section", section),
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
		products = []domain.Product{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[domain.Product]{Data: products})
}

// respondWithCatalogError maps source failures onto HTTP status codes
func (h *ProductHandler) respondWithCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrUpstreamNotConfigured):
		h.logger.Error("Products API is not configured", zap.String("request_id", requestID(r)))
		middleware.RespondWithRequestError(w, r, http.StatusServiceUnavailable, "catalog is not configured")
	case errors.Is(err, repository.ErrUpstreamUnavailable):
		h.logger.Error("Products API request failed",
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
		middleware.RespondWithRequestError(w, r, http.StatusBadGateway, "catalog is temporarily unavailable")
	default:
		h.logger.Error("Catalog request failed",
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
		middleware.RespondWithRequestError(w, r, http.StatusInternalServerError, "failed to load catalog")
	}
}

// parseLimit reads an optional positive "limit" parameter, writing a
// validation error response when it is malformed
func (h *ProductHandler) parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "limit", Message: "Value must be a positive integer"},
		})
		return 0, false
	}

	return limit, true
}
