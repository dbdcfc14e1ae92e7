package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock product source for testing
type mockProductSource struct {
	products []domain.Product
	err      error
	calls    int32
}

func (m *mockProductSource) FetchAll(ctx context.Context) ([]domain.Product, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func newTestService(products []domain.Product) (CatalogService, *mockProductSource) {
	source := &mockProductSource{products: products}
	return NewCatalogService(source, zap.NewNop()), source
}

// product builds a product created `age` hours before a fixed reference time;
// smaller ages are newer
func product(slug, category string, age int) domain.Product {
	created := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(age) * time.Hour)
	return domain.Product{
		ID:        "id-" + slug,
		Slug:      slug,
		Name:      slug,
		Category:  category,
		ImageURL:  fmt.Sprintf("https://cdn.example.com/%s.png", category),
		CreatedAt: created.Format(time.RFC3339),
		UpdatedAt: created.Format(time.RFC3339),
	}
}

func slugsOf(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Slug
	}
	return out
}

func TestFetchProducts_NilQueryReturnsEverything(t *testing.T) {
	svc, source := newTestService([]domain.Product{
		product("old", "A", 3),
		product("new", "B", 1),
		product("mid", "A", 2),
	})

	result, err := svc.FetchProducts(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, slugsOf(result.Data))
	assert.Equal(t, 3, result.Pagination.Total)
	assert.Nil(t, result.Pagination.Limit)
	assert.False(t, result.Pagination.HasMore)
	assert.Equal(t, domain.StatusPublished, result.Filters.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
}

func TestFetchProducts_EveryCallRefetches(t *testing.T) {
	svc, source := newTestService([]domain.Product{product("a", "A", 1)})

	for i := 0; i < 3; i++ {
		_, err := svc.FetchProducts(context.Background(), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&source.calls))
}

func TestFetchProducts_PropagatesSourceErrors(t *testing.T) {
	source := &mockProductSource{err: repository.ErrUpstreamUnavailable}
	svc := NewCatalogService(source, zap.NewNop())

	_, err := svc.FetchProducts(context.Background(), nil)
	assert.ErrorIs(t, err, repository.ErrUpstreamUnavailable)

	_, err = svc.GetUniqueCategories(context.Background())
	assert.ErrorIs(t, err, repository.ErrUpstreamUnavailable)

	_, err = svc.FetchProductBySlug(context.Background(), "anything")
	assert.ErrorIs(t, err, repository.ErrUpstreamUnavailable)

	_, err = svc.FetchUniqueCategoryProducts(context.Background(), 5)
	assert.ErrorIs(t, err, repository.ErrUpstreamUnavailable)
}

func TestFetchProducts_ConfigurationMissingNeverCallsNetwork(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer upstream.Close()

	svc := NewCatalogService(repository.NewHTTPProductSource("", repository.WithHTTPClient(upstream.Client())), zap.NewNop())

	_, err := svc.FetchProducts(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrUpstreamNotConfigured))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFetchLatestProducts(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("p3", "A", 3),
		product("p1", "A", 1),
		product("p4", "B", 4),
		product("p2", "C", 2),
	})

	latest, err := svc.FetchLatestProducts(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, slugsOf(latest))
}

func TestFetchProductsByCategory(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("a-old", "Audio", 3),
		product("l-new", "Laptops", 1),
		product("a-new", "audio", 2),
	})

	products, err := svc.FetchProductsByCategory(context.Background(), "AUDIO", 6)

	require.NoError(t, err)
	assert.Equal(t, []string{"a-new", "a-old"}, slugsOf(products))
}

func TestGetUniqueCategories_FirstSeenOrder(t *testing.T) {
	var products []domain.Product
	// Ages increase along the list, so default ordering matches creation order.
	for i, c := range []string{"A", "A", "B", "B", "B", "C", "A", "B", "C", "A"} {
		products = append(products, product(fmt.Sprintf("p%d", i), c, i))
	}
	svc, _ := newTestService(products)

	categories, err := svc.GetUniqueCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, categories)
}

func TestGetUniqueTags(t *testing.T) {
	p1 := product("p1", "A", 1)
	p1.Tags = []string{"wireless", "", "sale"}
	p2 := product("p2", "A", 2)
	p2.Tags = []string{"sale", "Audio", " "}
	svc, _ := newTestService([]domain.Product{p1, p2})

	tags, err := svc.GetUniqueTags(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Audio", "sale", "wireless"}, tags)
}

func TestFetchUniqueCategoryProducts_Backfill(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("a3", "A", 3),
		product("b2", "B", 2),
		product("a1", "A", 1),
		product("b5", "B", 5),
		product("a4", "A", 4),
	})

	hero, err := svc.FetchUniqueCategoryProducts(context.Background(), 5)

	require.NoError(t, err)
	// Newest of each category first, then the remaining newest.
	assert.Equal(t, []string{"a1", "b2", "a3", "a4", "b5"}, slugsOf(hero))
}

func TestFetchUniqueCategoryProducts_OnlyConsidersNewestPool(t *testing.T) {
	var products []domain.Product
	for i := 0; i < FeaturedPoolSize; i++ {
		products = append(products, product(fmt.Sprintf("a%d", i), "A", i))
	}
	products = append(products, product("ancient", "Z", FeaturedPoolSize+10))
	svc, _ := newTestService(products)

	hero, err := svc.FetchUniqueCategoryProducts(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"a0", "a1"}, slugsOf(hero))
}

func TestFetchProductBySlug(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("sony-wh", "Audio", 1),
		product("jbl-go", "Audio", 2),
	})

	found, err := svc.FetchProductBySlug(context.Background(), "jbl-go")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "id-jbl-go", found.ID)

	missing, err := svc.FetchProductBySlug(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFetchRelatedProducts_ExcludesCurrentProduct(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("p1", "A", 1),
		product("p2", "A", 2),
		product("p3", "B", 3),
		product("p4", "C", 4),
	})

	related, err := svc.FetchRelatedProducts(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, slugsOf(related))

	related, err = svc.FetchRelatedProducts(context.Background(), "p9", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, slugsOf(related))

	related, err = svc.FetchRelatedProducts(context.Background(), "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestFetchRelatedProducts_MaximumLimit(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("p1", "A", 1),
		product("p2", "A", 2),
		product("p3", "B", 3),
	})

	related, err := svc.FetchRelatedProducts(context.Background(), "p2", math.MaxInt)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, slugsOf(related))
}

func TestFetchUniqueCategoryProducts_MaximumLimit(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("p1", "A", 1),
		product("p2", "A", 2),
		product("p3", "B", 3),
	})

	picked, err := svc.FetchUniqueCategoryProducts(context.Background(), math.MaxInt)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3", "p2"}, slugsOf(picked))
}

func TestLookupsFollowNewestFirstOrder(t *testing.T) {
	// Upstream order differs from creation order.
	svc, _ := newTestService([]domain.Product{
		product("old-a", "A", 5),
		product("dup", "B", 4),
		product("new-c", "C", 1),
		{ID: "id-dup-newer", Slug: "dup", Category: "B", CreatedAt: "2024-06-01T10:30:00Z"},
	})

	categories, err := svc.GetUniqueCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, categories)

	found, err := svc.FetchProductBySlug(context.Background(), "dup")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "id-dup-newer", found.ID)
}

func TestFetchGalleryImages(t *testing.T) {
	svc, _ := newTestService([]domain.Product{
		product("p1", "A", 1),
		product("p2", "B", 2),
		product("p3", "A", 3),
		product("p4", "C", 4),
	})

	images, err := svc.FetchGalleryImages(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/A.png",
		"https://cdn.example.com/B.png",
	}, images)
}
