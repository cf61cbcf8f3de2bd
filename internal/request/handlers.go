package request

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gitakbarhub/service-locator-database/internal/alerts"
	"github.com/gitakbarhub/service-locator-database/internal/db"
	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

// OwnerLookup resolves the owning account of a provider, so the handlers
// can keep a provider's inbox private to its owner (or an admin).
type OwnerLookup func(ctx context.Context, providerID int64) (string, error)

var (
	manager *Manager
	ownerOf OwnerLookup
)

// Init wires the package-level manager used by the HTTP handlers.
func Init(store Store, lookup OwnerLookup) {
	manager = NewManager(store)
	ownerOf = lookup
}

// CreateRequest handles POST /api/requests. The requester location must be
// resolved before a request can be created.
func CreateRequest(c echo.Context) error {
	var req struct {
		ProviderID       int64    `json:"providerId"`
		RequesterName    string   `json:"requesterName"`
		RequesterPhone   string   `json:"requesterPhone"`
		RequesterAddress string   `json:"requesterAddress"`
		Lat              *float64 `json:"lat"`
		Lng              *float64 `json:"lng"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ProviderID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "providerId is required"})
	}

	var location *geo.Point
	if req.Lat != nil && req.Lng != nil {
		location = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}

	requesterID, _ := c.Get("user_id").(string)
	contact := Contact{Name: req.RequesterName, Phone: req.RequesterPhone, Address: req.RequesterAddress}

	id, err := manager.Create(c.Request().Context(), req.ProviderID, requesterID, contact, location)
	if err != nil {
		return writeError(c, err)
	}

	// Best effort: the provider also learns about the request on their
	// next inbox poll.
	if email := providerOwnerEmail(c.Request().Context(), req.ProviderID); email != "" {
		if err := alerts.EnqueueRequestReceived(id, req.ProviderID, email, contact.Name); err != nil {
			log.Printf("request: enqueue received alert for %s: %v", id, err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListRequests handles GET /api/requests for both directions of the poll:
// ?requestId=X is the requester's status poll, ?providerId=X is the
// provider inbox (which marks sent requests delivered). The admin sentinel
// as provider id lists everything.
func ListRequests(c echo.Context) error {
	ctx := c.Request().Context()

	if reqID := c.QueryParam("requestId"); reqID != "" {
		status, err := manager.Status(ctx, reqID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": status})
	}

	rawProvider := c.QueryParam("providerId")
	if rawProvider == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "providerId or requestId is required"})
	}
	providerID, err := strconv.ParseInt(rawProvider, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid providerId"})
	}

	role, _ := c.Get("role").(string)
	if providerID == AdminProviderID {
		if role != "admin" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access only"})
		}
		items, err := manager.All(ctx)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"requests": items})
	}

	if err := requireProviderAccess(c, providerID); err != nil {
		return err
	}
	items, err := manager.Inbox(ctx, providerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}

// PatchRequest handles PATCH /api/requests: the guarded status transition.
func PatchRequest(c echo.Context) error {
	var req struct {
		RequestID string `json:"requestId"`
		Status    string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.RequestID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "requestId and status are required"})
	}
	target, err := ParseStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := authorizeTransition(c, req.RequestID, target); err != nil {
		return err
	}
	if err := manager.Apply(c.Request().Context(), req.RequestID, target); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// AcceptRequest handles POST /api/requests/:id/accept. Acceptance is what
// authorizes routing to the requester's location, so the accepted
// request's coordinates come back in the response.
func AcceptRequest(c echo.Context) error {
	id := c.Param("id")
	if err := authorizeTransition(c, id, StatusAccepted); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := manager.Accept(ctx, id); err != nil {
		return writeError(c, err)
	}
	r, err := manager.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	if email, shopName := requesterEmailAndShop(ctx, r); email != "" {
		if err := alerts.EnqueueRequestAccepted(id, email, shopName); err != nil {
			log.Printf("request: enqueue accepted alert for %s: %v", id, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "requesterLocation": r.Location})
}

// CancelRequest handles POST /api/requests/:id/cancel.
func CancelRequest(c echo.Context) error {
	id := c.Param("id")
	if err := authorizeTransition(c, id, StatusCancelled); err != nil {
		return err
	}
	if err := manager.Cancel(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// authorizeTransition enforces which side of the conversation may move a
// request: provider-side marks belong to the provider's owner, cancel
// belongs to the requester. Admins may do either.
func authorizeTransition(c echo.Context, id string, target Status) error {
	uid, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if role == "admin" {
		return nil
	}

	r, err := manager.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	if target == StatusCancelled {
		if r.RequesterID != "" && r.RequesterID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
		}
		return nil
	}

	owner, err := ownerOf(c.Request().Context(), r.ProviderID)
	if err != nil || owner != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your inbox"})
	}
	return nil
}

func requireProviderAccess(c echo.Context, providerID int64) error {
	uid, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if role == "admin" {
		return nil
	}
	owner, err := ownerOf(c.Request().Context(), providerID)
	if err != nil || owner != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your inbox"})
	}
	return nil
}

// providerOwnerEmail resolves the email of a shop's owning account, or ""
// when none is on file.
func providerOwnerEmail(ctx context.Context, providerID int64) string {
	var email string
	err := db.Conn.QueryRow(ctx,
		`SELECT COALESCE(u.email, '') FROM shops s JOIN users u ON u.id = s.owner_id WHERE s.id = $1`,
		providerID).Scan(&email)
	if err != nil {
		return ""
	}
	return email
}

// requesterEmailAndShop resolves the requester's email and the shop name
// for the acceptance alert.
func requesterEmailAndShop(ctx context.Context, r *ServiceRequest) (string, string) {
	if r.RequesterID == "" {
		return "", ""
	}
	var email, shopName string
	err := db.Conn.QueryRow(ctx,
		`SELECT COALESCE(u.email, ''), s.name
		 FROM users u, shops s WHERE u.id = $1 AND s.id = $2`,
		r.RequesterID, r.ProviderID).Scan(&email, &shopName)
	if err != nil {
		return "", ""
	}
	return email, shopName
}

// writeError maps engine errors onto the API's status codes.
func writeError(c echo.Context, err error) error {
	var (
		verr *ValidationError
		terr *InvalidTransitionError
		nf   *NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
	case errors.As(err, &terr):
		return c.JSON(http.StatusConflict, echo.Map{"error": terr.Error()})
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
