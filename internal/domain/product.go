package domain

// Product represents a catalog entry as published by the upstream products API.
// Timestamps are kept as the ISO strings received from upstream.
type Product struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	PercentOff      *float64 `json:"percentOff,omitempty"`
	OriginalPrice   float64  `json:"originalPrice"`
	DiscountedPrice float64  `json:"discountedPrice"`
	Savings         float64  `json:"savings"`
	Currency        string   `json:"currency"`
	ImageURL        string   `json:"imageUrl"`
	ImageURLs       []string `json:"imageUrls"`
	ProductURL      string   `json:"productUrl"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Status          string   `json:"status"`
	UserID          string   `json:"userId"`
	BlogID          string   `json:"blogId"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

// Images returns the gallery images of the product, falling back to the
// primary image when the gallery is empty.
func (p Product) Images() []string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs
	}
	if p.ImageURL == "" {
		return nil
	}
	return []string{p.ImageURL}
}
