package domain

// SortField is one of the product fields a listing can be ordered by
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// StatusPublished is echoed in every response's filters block. It is not
// applied to the working set.
const StatusPublished = "published"

// Query describes a single catalog query. Nil pointers mean "not supplied".
type Query struct {
	Search    *string
	Category  *string
	Tag       *string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    SortField
	SortOrder SortOrder
	Limit     *int
	Offset    int
}

// Resolve returns a copy of the query with defaults filled in.
func (q Query) Resolve() Query {
	if q.SortBy == "" {
		q.SortBy = SortByCreatedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = SortOrderDesc
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Pagination describes the slice of the filtered collection returned
type Pagination struct {
	Total   int  `json:"total"`
	Limit   *int `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// AppliedFilters echoes the resolved query back to the caller
type AppliedFilters struct {
	Search    *string   `json:"search"`
	Category  *string   `json:"category"`
	Tag       *string   `json:"tag"`
	Status    string    `json:"status"`
	MinPrice  *float64  `json:"minPrice"`
	MaxPrice  *float64  `json:"maxPrice"`
	SortBy    SortField `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// ProductsResponse is the envelope returned by every catalog query
type ProductsResponse struct {
	Data       []Product      `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Filters    AppliedFilters `json:"filters"`
}
