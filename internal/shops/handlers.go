// Package shops exposes the provider catalog and the two discovery views
// over HTTP.
package shops

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gitakbarhub/service-locator-database/internal/catalog"
	"github.com/gitakbarhub/service-locator-database/internal/discovery"
	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

var source *catalog.PostgresSource

// Init wires the store used for shop writes. Reads go through the
// package-level catalog snapshot.
func Init(src *catalog.PostgresSource) {
	source = src
}

// refresh reloads the catalog snapshot before serving. A FetchError keeps
// the previous snapshot: readers are served stale rather than failed.
func refresh(c echo.Context) {
	var fetchErr *catalog.FetchError
	if err := catalog.Default().Load(c.Request().Context()); errors.As(err, &fetchErr) {
		log.Printf("shops: serving previous catalog snapshot: %v", err)
	}
}

// ListShops handles GET /api/shops: the full current catalog.
func ListShops(c echo.Context) error {
	refresh(c)
	return c.JSON(http.StatusOK, echo.Map{"shops": catalog.Default().All()})
}

// GetShop handles GET /api/shops/:id.
func GetShop(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop id"})
	}
	refresh(c)
	p, ok := catalog.Default().ByID(id)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
	}
	return c.JSON(http.StatusOK, p)
}

// Featured handles GET /api/shops/featured: the default best-per-category
// view, four entries plus a truncation flag.
func Featured(c echo.Context) error {
	refresh(c)
	res := discovery.Discover(catalog.Default().All(), discovery.FilterSpec{}, discovery.ModeDefault)
	return c.JSON(http.StatusOK, res)
}

// Search handles GET /api/shops/search: the filtered view driven by query
// params. Absent rating/radius params default to accept-everything values
// so that an explicit 0 stays meaningful.
func Search(c echo.Context) error {
	spec := discovery.FilterSpec{
		Category:  catalog.CategoryAll,
		MinRating: 0,
		RadiusKm:  25,
		FreeText:  c.QueryParam("q"),
	}

	if raw := c.QueryParam("category"); raw != "" && raw != string(catalog.CategoryAll) {
		cat, err := catalog.ParseCategory(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		spec.Category = cat
	}
	if raw := c.QueryParam("minRating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid minRating"})
		}
		spec.MinRating = v
	}
	if raw := c.QueryParam("radiusKm"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid radiusKm"})
		}
		spec.RadiusKm = v
	}

	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if errLat != nil || errLng != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "anchor lat and lng are required"})
	}
	spec.Anchor = geo.Point{Lat: lat, Lng: lng}
	if !spec.Anchor.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "anchor out of range"})
	}

	refresh(c)
	res := discovery.Discover(catalog.Default().All(), spec, discovery.ModeFiltered)
	return c.JSON(http.StatusOK, res)
}

// SaveShop handles POST /api/shops: create when no id is supplied, update
// otherwise. Only the shop's owner or an admin may write it; the engine
// itself never deletes shops.
func SaveShop(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	var req struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Service     string  `json:"service"`
		Phone       string  `json:"phone"`
		Address     string  `json:"address"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		Rating      float64 `json:"rating"`
		Reviews     int     `json:"reviews"`
		OpenTime    string  `json:"openTime"`
		CloseTime   string  `json:"closeTime"`
		Description string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	cat, err := catalog.ParseCategory(req.Service)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	p := catalog.Provider{
		ID:          req.ID,
		OwnerID:     uid,
		Name:        req.Name,
		Category:    cat,
		Phone:       req.Phone,
		Address:     req.Address,
		Location:    geo.Point{Lat: req.Lat, Lng: req.Lng},
		Rating:      req.Rating,
		ReviewCount: req.Reviews,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		Description: req.Description,
	}
	if err := p.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	if req.ID > 0 {
		owner, err := source.OwnerOf(ctx, req.ID)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		if owner != uid && role != "admin" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your shop"})
		}
		updated, err := source.Update(ctx, p)
		if err != nil || !updated {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update shop"})
		}
		refresh(c)
		return c.JSON(http.StatusOK, echo.Map{"id": req.ID})
	}

	if role != "provider" && role != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "provider account required"})
	}
	id, err := source.Insert(ctx, p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create shop"})
	}
	refresh(c)
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
