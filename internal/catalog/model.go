package catalog

import (
	"fmt"
	"time"

	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

// Category is the closed set of service categories a shop can register under.
type Category string

const (
	CategoryElectrician Category = "electrician"
	CategoryPlumber     Category = "plumber"
	CategoryMechanic    Category = "mechanic"
	CategoryCarwash     Category = "carwash"
	CategoryCarpenter   Category = "carpenter"
	CategoryPainter     Category = "painter"
	CategoryACRepair    Category = "ac_repair"
	CategoryWelder      Category = "welder"

	// CategoryAll is the filter wildcard, never stored on a provider.
	CategoryAll Category = "all"
)

// Categories returns the fixed enumeration in its canonical order.
func Categories() []Category {
	return []Category{
		CategoryElectrician,
		CategoryPlumber,
		CategoryMechanic,
		CategoryCarwash,
		CategoryCarpenter,
		CategoryPainter,
		CategoryACRepair,
		CategoryWelder,
	}
}

// Valid reports whether c is a storable category (the wildcard is not).
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory validates a raw category string from a request payload.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Provider is a registered service business.
type Provider struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Category    Category  `json:"service"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Location    geo.Point `json:"location"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"reviews"`
	OpenTime    string    `json:"openTime,omitempty"`
	CloseTime   string    `json:"closeTime,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate checks the invariants a provider record must satisfy before it
// may be persisted.
func (p Provider) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	if !p.Category.Valid() {
		return fmt.Errorf("unknown category %q", p.Category)
	}
	if !p.Location.Valid() {
		return fmt.Errorf("location out of range: lat=%v lng=%v", p.Location.Lat, p.Location.Lng)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("rating %v outside [0,5]", p.Rating)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("negative review count %d", p.ReviewCount)
	}
	return nil
}
