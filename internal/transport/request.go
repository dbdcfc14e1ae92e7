package transport

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

var errNotFinite = errors.New("value is not a finite number")

// ListResponse wraps a plain collection in a data envelope
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// ProductDetailResponse is a single product with its resolved gallery
type ProductDetailResponse struct {
	domain.Product
	Images []string `json:"images"`
}

// parseListProductsRequest reads listing parameters from the query string.
// Blank values count as absent; text filters are otherwise passed through
// untrimmed. Numbers that fail to parse are reported the same way as failed
// validation rules.
func parseListProductsRequest(values url.Values) (ListProductsRequest, []middleware.ValidationError) {
	var errs []middleware.ValidationError

	req := ListProductsRequest{
		Search:    optionalString(values, "search"),
		Category:  optionalString(values, "category"),
		Tag:       optionalString(values, "tag"),
		SortBy:    strings.TrimSpace(values.Get("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(values.Get("sortOrder"))),
	}

	var err error
	if req.MinPrice, err = optionalFloat(values, "minPrice"); err != nil {
		errs = append(errs, middleware.ValidationError{Field: "minPrice", Message: "Value must be a number"})
	}
	if req.MaxPrice, err = optionalFloat(values, "maxPrice"); err != nil {
		errs = append(errs, middleware.ValidationError{Field: "maxPrice", Message: "Value must be a number"})
	}
	if req.Limit, err = optionalInt(values, "limit"); err != nil {
		errs = append(errs, middleware.ValidationError{Field: "limit", Message: "Value must be an integer"})
	}
	if req.Offset, err = optionalInt(values, "offset"); err != nil {
		errs = append(errs, middleware.ValidationError{Field: "offset", Message: "Value must be an integer"})
	}

	return req, errs
}

func optionalString(values url.Values, key string) *string {
	v := values.Get(key)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func optionalFloat(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, errNotFinite
	}
	return &v, nil
}

func optionalInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func requestID(r *http.Request) string {
	return chimiddleware.GetReqID(r.Context())
}
