package catalog

import (
	"strings"

	"storefront/internal/domain"
)

// Apply runs a query over an in-memory product collection. Filters are applied
// in a fixed order (category, tag, price range, search), then the working set is
// sorted and paginated. The input slice is never modified.
func Apply(products []domain.Product, q domain.Query) domain.ProductsResponse {
	q = q.Resolve()

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matches(p, q) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, q.SortBy, q.SortOrder)

	total := len(filtered)
	page := paginate(filtered, q.Offset, q.Limit)

	return domain.ProductsResponse{
		Data: page,
		Pagination: domain.Pagination{
			Total:   total,
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: q.Limit != nil && *q.Limit < total-q.Offset,
		},
		Filters: domain.AppliedFilters{
			Search:    q.Search,
			Category:  q.Category,
			Tag:       q.Tag,
			Status:    domain.StatusPublished,
			MinPrice:  q.MinPrice,
			MaxPrice:  q.MaxPrice,
			SortBy:    q.SortBy,
			SortOrder: q.SortOrder,
		},
	}
}

func matches(p domain.Product, q domain.Query) bool {
	if q.Category != nil && *q.Category != "" && !strings.EqualFold(p.Category, *q.Category) {
		return false
	}

	if q.Tag != nil && *q.Tag != "" && !anyTagContains(p.Tags, strings.ToLower(*q.Tag)) {
		return false
	}

	// Price bounds apply to the base price, not the discounted one.
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}

	if q.Search != nil && *q.Search != "" && !matchesSearch(p, strings.ToLower(*q.Search)) {
		return false
	}

	return true
}

// matchesSearch expects term to be lower-cased already
func matchesSearch(p domain.Product, term string) bool {
	for _, field := range []string{p.Name, p.Slug, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return anyTagContains(p.Tags, term)
}

func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func paginate(products []domain.Product, offset int, limit *int) []domain.Product {
	if offset >= len(products) {
		return []domain.Product{}
	}

	end := len(products)
	if limit != nil && *limit < end-offset {
		end = offset + max(*limit, 0)
	}

	return products[offset:end]
}
