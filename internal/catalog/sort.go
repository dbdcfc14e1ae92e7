package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"storefront/internal/domain"
)

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// comparators maps every sortable field to an ascending comparison
var comparators = map[domain.SortField]func(a, b domain.Product) int{
	domain.SortByCreatedAt: func(a, b domain.Product) int {
		return parseTimestamp(a.CreatedAt).Compare(parseTimestamp(b.CreatedAt))
	},
	domain.SortByUpdatedAt: func(a, b domain.Product) int {
		return parseTimestamp(a.UpdatedAt).Compare(parseTimestamp(b.UpdatedAt))
	},
	domain.SortByName: func(a, b domain.Product) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	},
	domain.SortByPrice: func(a, b domain.Product) int {
		return cmp.Compare(a.Price, b.Price)
	},
}

// ParseSortField maps a sortBy parameter onto a known field. An empty value
// resolves to createdAt.
func ParseSortField(s string) (domain.SortField, error) {
	if s == "" {
		return domain.SortByCreatedAt, nil
	}
	field := domain.SortField(s)
	if _, ok := comparators[field]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortField, s)
	}
	return field, nil
}

// ParseSortOrder maps a sortOrder parameter onto a direction. An empty value
// resolves to desc.
func ParseSortOrder(s string) (domain.SortOrder, error) {
	switch domain.SortOrder(strings.ToLower(s)) {
	case "":
		return domain.SortOrderDesc, nil
	case domain.SortOrderAsc:
		return domain.SortOrderAsc, nil
	case domain.SortOrderDesc:
		return domain.SortOrderDesc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
	}
}

// SortFields lists the accepted sortBy values
func SortFields() []string {
	return []string{
		string(domain.SortByCreatedAt),
		string(domain.SortByUpdatedAt),
		string(domain.SortByName),
		string(domain.SortByPrice),
	}
}

// sortProducts orders products in place. The sort is stable so equal keys keep
// their upstream order.
func sortProducts(products []domain.Product, field domain.SortField, order domain.SortOrder) {
	compare, ok := comparators[field]
	if !ok {
		compare = comparators[domain.SortByCreatedAt]
	}

	if order == domain.SortOrderAsc {
		slices.SortStableFunc(products, compare)
		return
	}

	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return compare(b, a)
	})
}

// timestampLayouts are tried in order; date-only values are midnight UTC
var timestampLayouts = []string{time.RFC3339Nano, time.DateOnly}

// parseTimestamp returns the zero time for values matching no known layout
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
