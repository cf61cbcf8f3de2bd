package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitakbarhub/service-locator-database/internal/catalog"
	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

var lahoreAnchor = geo.Point{Lat: 31.4880, Lng: 74.3430}

func provider(id int64, cat catalog.Category, rating float64, reviews int) catalog.Provider {
	return catalog.Provider{
		ID:          id,
		Name:        "shop-" + string(cat),
		Category:    cat,
		Location:    lahoreAnchor,
		Rating:      rating,
		ReviewCount: reviews,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
	}
}

func TestDefaultPicksHigherRatingOverReviewCount(t *testing.T) {
	// Scenario: the 4.8-rated plumber with 3 reviews beats the 4.5-rated
	// one with 10 reviews.
	providers := []catalog.Provider{
		provider(1, catalog.CategoryPlumber, 4.5, 10),
		provider(2, catalog.CategoryPlumber, 4.8, 3),
	}

	res := Discover(providers, FilterSpec{}, ModeDefault)
	require.Len(t, res.Providers, 1)
	assert.Equal(t, int64(2), res.Providers[0].ID)
	assert.False(t, res.More)
}

func TestDefaultTieBreaks(t *testing.T) {
	tests := []struct {
		name   string
		a, b   catalog.Provider
		wantID int64
	}{
		{
			name:   "equal rating, more reviews wins",
			a:      provider(1, catalog.CategoryWelder, 4.0, 2),
			b:      provider(2, catalog.CategoryWelder, 4.0, 9),
			wantID: 2,
		},
		{
			name:   "equal rating and reviews, lower id wins",
			a:      provider(7, catalog.CategoryWelder, 4.0, 5),
			b:      provider(3, catalog.CategoryWelder, 4.0, 5),
			wantID: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Discover([]catalog.Provider{tt.a, tt.b}, FilterSpec{}, ModeDefault)
			require.Len(t, res.Providers, 1)
			assert.Equal(t, tt.wantID, res.Providers[0].ID)
		})
	}
}

func TestDefaultOnePerCategorySortedByRating(t *testing.T) {
	providers := []catalog.Provider{
		provider(1, catalog.CategoryPlumber, 4.1, 5),
		provider(2, catalog.CategoryPlumber, 3.0, 50),
		provider(3, catalog.CategoryElectrician, 4.9, 2),
		provider(4, catalog.CategoryMechanic, 4.5, 7),
		provider(5, catalog.CategoryPainter, 2.0, 1),
	}

	res := Discover(providers, FilterSpec{}, ModeDefault)
	require.Len(t, res.Providers, 4)
	assert.False(t, res.More)

	seen := map[catalog.Category]bool{}
	for _, p := range res.Providers {
		assert.False(t, seen[p.Category], "category %s returned twice", p.Category)
		seen[p.Category] = true
	}

	// Winners ordered by rating descending.
	assert.Equal(t, []int64{3, 4, 1, 5}, ids(res.Providers))
}

func TestDefaultTruncatesToFeaturedPage(t *testing.T) {
	providers := []catalog.Provider{
		provider(1, catalog.CategoryElectrician, 4.0, 1),
		provider(2, catalog.CategoryPlumber, 4.1, 1),
		provider(3, catalog.CategoryMechanic, 4.2, 1),
		provider(4, catalog.CategoryCarwash, 4.3, 1),
		provider(5, catalog.CategoryCarpenter, 4.4, 1),
		provider(6, catalog.CategoryPainter, 4.5, 1),
	}

	res := Discover(providers, FilterSpec{}, ModeDefault)
	assert.Len(t, res.Providers, FeaturedPageSize)
	assert.True(t, res.More)
	// Highest rated winners fill the page.
	assert.Equal(t, []int64{6, 5, 4, 3}, ids(res.Providers))
}

func TestDefaultEmptyCatalog(t *testing.T) {
	res := Discover(nil, FilterSpec{}, ModeDefault)
	assert.NotNil(t, res.Providers)
	assert.Empty(t, res.Providers)
	assert.False(t, res.More)
}

func TestFilteredConjunction(t *testing.T) {
	inRadius := lahoreAnchor
	outOfRadius := geo.Point{Lat: 31.60, Lng: 74.50}

	mk := func(id int64, cat catalog.Category, rating float64, loc geo.Point) catalog.Provider {
		p := provider(id, cat, rating, 0)
		p.Location = loc
		return p
	}

	providers := []catalog.Provider{
		mk(1, catalog.CategoryPlumber, 4.5, inRadius),
		mk(2, catalog.CategoryPlumber, 2.0, inRadius),    // below rating floor
		mk(3, catalog.CategoryPlumber, 4.9, outOfRadius), // outside radius
		mk(4, catalog.CategoryMechanic, 5.0, inRadius),   // wrong category
	}

	spec := FilterSpec{
		Category:  catalog.CategoryPlumber,
		MinRating: 3.0,
		RadiusKm:  5,
		Anchor:    lahoreAnchor,
	}
	res := Discover(providers, spec, ModeFiltered)
	assert.Equal(t, []int64{1}, ids(res.Providers))
}

func TestFilteredCategoryAllMatchesEverything(t *testing.T) {
	providers := []catalog.Provider{
		provider(1, catalog.CategoryPlumber, 4.5, 0),
		provider(2, catalog.CategoryMechanic, 4.0, 0),
	}
	spec := FilterSpec{Category: catalog.CategoryAll, RadiusKm: 5, Anchor: lahoreAnchor}
	res := Discover(providers, spec, ModeFiltered)
	assert.Len(t, res.Providers, 2)
}

func TestFilteredRadiusScenario(t *testing.T) {
	// ~140 m away is inside a 1 km radius, ~14 km away is not.
	near := provider(1, catalog.CategoryPlumber, 4.0, 0)
	near.Location = geo.Point{Lat: 31.4890, Lng: 74.3440}
	far := provider(2, catalog.CategoryPlumber, 4.0, 0)
	far.Location = geo.Point{Lat: 31.60, Lng: 74.50}

	spec := FilterSpec{Category: catalog.CategoryAll, RadiusKm: 1, Anchor: lahoreAnchor}
	res := Discover([]catalog.Provider{near, far}, spec, ModeFiltered)
	assert.Equal(t, []int64{1}, ids(res.Providers))
}

func TestFilteredZeroValuesAreRealFilters(t *testing.T) {
	at := provider(1, catalog.CategoryPlumber, 0, 0)
	off := provider(2, catalog.CategoryPlumber, 5, 0)
	off.Location = geo.Point{Lat: 31.4890, Lng: 74.3440}

	// radius 0 keeps only the provider exactly at the anchor,
	// minRating 0 keeps a zero-rated provider.
	spec := FilterSpec{Category: catalog.CategoryAll, MinRating: 0, RadiusKm: 0, Anchor: lahoreAnchor}
	res := Discover([]catalog.Provider{at, off}, spec, ModeFiltered)
	assert.Equal(t, []int64{1}, ids(res.Providers))
}

func TestFilteredFreeText(t *testing.T) {
	a := provider(1, catalog.CategoryPlumber, 4.0, 0)
	a.Name = "Ali Water Works"
	b := provider(2, catalog.CategoryElectrician, 4.0, 0)
	b.Name = "Sparky"

	spec := FilterSpec{Category: catalog.CategoryAll, RadiusKm: 5, Anchor: lahoreAnchor}

	spec.FreeText = "water"
	assert.Equal(t, []int64{1}, ids(Discover([]catalog.Provider{a, b}, spec, ModeFiltered).Providers))

	// Category names match too, case-insensitively.
	spec.FreeText = "ELECT"
	assert.Equal(t, []int64{2}, ids(Discover([]catalog.Provider{a, b}, spec, ModeFiltered).Providers))

	spec.FreeText = "no such shop"
	assert.Empty(t, Discover([]catalog.Provider{a, b}, spec, ModeFiltered).Providers)
}

func TestFilteredNewestFirstAndStable(t *testing.T) {
	providers := []catalog.Provider{
		provider(1, catalog.CategoryPlumber, 4.0, 0), // oldest
		provider(2, catalog.CategoryPlumber, 4.0, 0),
		provider(3, catalog.CategoryPlumber, 4.0, 0), // newest
	}
	spec := FilterSpec{Category: catalog.CategoryAll, RadiusKm: 5, Anchor: lahoreAnchor}

	first := Discover(providers, spec, ModeFiltered)
	assert.Equal(t, []int64{3, 2, 1}, ids(first.Providers))

	// Unchanged input gives the identical ordering.
	second := Discover(providers, spec, ModeFiltered)
	assert.Equal(t, ids(first.Providers), ids(second.Providers))
}

func TestFilteredEmptyResultIsNotAnError(t *testing.T) {
	res := Discover(nil, FilterSpec{Category: catalog.CategoryAll}, ModeFiltered)
	assert.NotNil(t, res.Providers)
	assert.Empty(t, res.Providers)
}

func ids(providers []catalog.Provider) []int64 {
	out := make([]int64, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.ID)
	}
	return out
}
