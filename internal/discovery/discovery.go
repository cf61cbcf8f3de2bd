// Package discovery ranks and filters the provider catalog for the two
// listing views: the featured best-per-category home view and the
// user-driven filter view.
package discovery

import (
	"sort"
	"strings"

	"github.com/gitakbarhub/service-locator-database/internal/catalog"
	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

// Mode selects which listing view Discover produces.
type Mode string

const (
	// ModeDefault reduces the catalog to the top-rated provider per
	// category and returns the first featured page.
	ModeDefault Mode = "default"
	// ModeFiltered applies the full FilterSpec conjunction.
	ModeFiltered Mode = "filtered"
)

// FeaturedPageSize is how many best-per-category entries the default view
// shows before the "see more" affordance.
const FeaturedPageSize = 4

// FilterSpec is the transient filter state driving a filtered discovery.
// Zero MinRating and zero RadiusKm are real values, not "unset".
type FilterSpec struct {
	Category  catalog.Category
	MinRating float64
	RadiusKm  float64
	Anchor    geo.Point
	FreeText  string
}

// Result is a ranked provider view. More is only meaningful in default
// mode and signals that entries beyond the featured page exist; rendering
// the "see more" affordance is the caller's business.
type Result struct {
	Providers []catalog.Provider `json:"providers"`
	More      bool               `json:"more"`
}

// Discover produces the ranked, paginated provider view for the given
// mode. It never fails: an empty catalog or an empty match set yields an
// empty (non-nil) sequence.
func Discover(providers []catalog.Provider, spec FilterSpec, mode Mode) Result {
	switch mode {
	case ModeDefault:
		return discoverDefault(providers)
	default:
		return discoverFiltered(providers, spec)
	}
}

// discoverDefault picks the best provider per category over the fixed
// enumeration, orders the winners by rating, and truncates to the
// featured page.
func discoverDefault(providers []catalog.Provider) Result {
	featured := make([]catalog.Provider, 0, FeaturedPageSize)
	for _, cat := range catalog.Categories() {
		best, ok := bestInCategory(providers, cat)
		if !ok {
			continue
		}
		featured = append(featured, best)
	}

	sort.SliceStable(featured, func(i, j int) bool {
		if featured[i].Rating != featured[j].Rating {
			return featured[i].Rating > featured[j].Rating
		}
		if featured[i].ReviewCount != featured[j].ReviewCount {
			return featured[i].ReviewCount > featured[j].ReviewCount
		}
		return featured[i].ID < featured[j].ID
	})

	more := len(featured) > FeaturedPageSize
	if more {
		featured = featured[:FeaturedPageSize]
	}
	return Result{Providers: featured, More: more}
}

// bestInCategory returns the max-rating provider of a category, breaking
// ties by review count and then by lower id for determinism.
func bestInCategory(providers []catalog.Provider, cat catalog.Category) (catalog.Provider, bool) {
	var best catalog.Provider
	found := false
	for _, p := range providers {
		if p.Category != cat {
			continue
		}
		if !found || beats(p, best) {
			best = p
			found = true
		}
	}
	return best, found
}

func beats(a, b catalog.Provider) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if a.ReviewCount != b.ReviewCount {
		return a.ReviewCount > b.ReviewCount
	}
	return a.ID < b.ID
}

// discoverFiltered returns every provider matching the spec conjunction,
// most recently created first. Repeated calls with unchanged input give
// the same ordering.
func discoverFiltered(providers []catalog.Provider, spec FilterSpec) Result {
	matched := make([]catalog.Provider, 0, len(providers))
	for _, p := range providers {
		if !Matches(p, spec) {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return Result{Providers: matched}
}

// Matches reports whether a single provider satisfies every clause of the
// filter spec.
func Matches(p catalog.Provider, spec FilterSpec) bool {
	if spec.Category != catalog.CategoryAll && p.Category != spec.Category {
		return false
	}
	if p.Rating < spec.MinRating {
		return false
	}
	if !geo.WithinRadius(spec.Anchor, p.Location, spec.RadiusKm) {
		return false
	}
	if spec.FreeText != "" {
		needle := strings.ToLower(spec.FreeText)
		name := strings.ToLower(p.Name)
		cat := strings.ToLower(string(p.Category))
		if !strings.Contains(name, needle) && !strings.Contains(cat, needle) {
			return false
		}
	}
	return true
}
