package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

type fakeSource struct {
	providers []Provider
	err       error
}

func (s *fakeSource) FetchProviders(context.Context) ([]Provider, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.providers, nil
}

func validProvider(id int64) Provider {
	return Provider{
		ID:       id,
		Name:     "Test Shop",
		Category: CategoryPlumber,
		Location: geo.Point{Lat: 31.4880, Lng: 74.3430},
		Rating:   4.2,
	}
}

func TestLoadReplacesSnapshotWholesale(t *testing.T) {
	src := &fakeSource{providers: []Provider{validProvider(1), validProvider(2)}}
	cat := NewCatalog(src)

	require.NoError(t, cat.Load(context.Background()))
	assert.Equal(t, 2, cat.Len())

	src.providers = []Provider{validProvider(3)}
	require.NoError(t, cat.Load(context.Background()))
	assert.Equal(t, 1, cat.Len())

	_, ok := cat.ByID(1)
	assert.False(t, ok, "stale entries must not survive a reload")
	_, ok = cat.ByID(3)
	assert.True(t, ok)
}

func TestLoadFailureRetainsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{providers: []Provider{validProvider(1)}}
	cat := NewCatalog(src)
	require.NoError(t, cat.Load(context.Background()))

	src.err = errors.New("store unreachable")
	err := cat.Load(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, cat.Len(), "previous snapshot survives a failed load")
	_, ok := cat.ByID(1)
	assert.True(t, ok)
}

func TestLoadFailureOnFirstLoadLeavesEmptyCatalog(t *testing.T) {
	cat := NewCatalog(&fakeSource{err: errors.New("boom")})
	err := cat.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, cat.Len())
	assert.Empty(t, cat.All())
}

func TestAllReturnsACopy(t *testing.T) {
	cat := NewCatalog(&fakeSource{providers: []Provider{validProvider(1)}})
	require.NoError(t, cat.Load(context.Background()))

	snapshot := cat.All()
	snapshot[0].Name = "mutated"

	fresh := cat.All()
	assert.Equal(t, "Test Shop", fresh[0].Name)
}

func TestProviderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Provider)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Provider) {}},
		{name: "missing name", mutate: func(p *Provider) { p.Name = "" }, wantErr: true},
		{name: "unknown category", mutate: func(p *Provider) { p.Category = "locksmith" }, wantErr: true},
		{name: "wildcard category not storable", mutate: func(p *Provider) { p.Category = CategoryAll }, wantErr: true},
		{name: "latitude out of range", mutate: func(p *Provider) { p.Location.Lat = 91 }, wantErr: true},
		{name: "longitude out of range", mutate: func(p *Provider) { p.Location.Lng = -181 }, wantErr: true},
		{name: "rating above 5", mutate: func(p *Provider) { p.Rating = 5.1 }, wantErr: true},
		{name: "negative reviews", mutate: func(p *Provider) { p.ReviewCount = -1 }, wantErr: true},
		{name: "zero rating is fine", mutate: func(p *Provider) { p.Rating = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProvider(1)
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("ac_repair")
	require.NoError(t, err)
	assert.Equal(t, CategoryACRepair, c)

	_, err = ParseCategory("astrologer")
	assert.Error(t, err)

	_, err = ParseCategory("all")
	assert.Error(t, err, "the filter wildcard is not a storable category")
}
