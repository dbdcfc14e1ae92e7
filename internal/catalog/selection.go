package catalog

import (
	"slices"
	"strings"

	"storefront/internal/domain"
)

// UniqueCategories returns the distinct categories in first-seen order
func UniqueCategories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := []string{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// UniqueTags returns every distinct non-blank tag, sorted lexicographically
func UniqueTags(products []domain.Product) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range products {
		for _, tag := range p.Tags {
			if strings.TrimSpace(tag) == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

// PickUniqueCategories selects up to limit products, at most one per category,
// walking products in order. When there are fewer categories than limit the
// selection is topped up with the next products not yet picked, regardless of
// category.
func PickUniqueCategories(products []domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		return []domain.Product{}
	}

	size := min(limit, len(products))
	picked := make([]domain.Product, 0, size)
	pickedIdx := make(map[int]struct{}, size)
	usedCategories := make(map[string]struct{})

	for i, p := range products {
		if len(picked) >= limit {
			break
		}
		if _, ok := usedCategories[p.Category]; ok {
			continue
		}
		usedCategories[p.Category] = struct{}{}
		pickedIdx[i] = struct{}{}
		picked = append(picked, p)
	}

	for i, p := range products {
		if len(picked) >= limit {
			break
		}
		if _, ok := pickedIdx[i]; ok {
			continue
		}
		picked = append(picked, p)
	}

	return picked
}

// FindBySlug returns the first product whose slug equals slug exactly, or nil
func FindBySlug(products []domain.Product, slug string) *domain.Product {
	for i := range products {
		if products[i].Slug == slug {
			p := products[i]
			return &p
		}
	}
	return nil
}

// UniqueImageURLs returns the distinct non-empty primary images in order
func UniqueImageURLs(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	urls := []string{}
	for _, p := range products {
		if p.ImageURL == "" {
			continue
		}
		if _, ok := seen[p.ImageURL]; ok {
			continue
		}
		seen[p.ImageURL] = struct{}{}
		urls = append(urls, p.ImageURL)
	}
	return urls
}
