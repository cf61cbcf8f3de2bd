package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gitakbarhub/service-locator-database/internal/db"
)

// Me returns the authenticated account.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var (
		username  string
		role      string
		createdAt time.Time
	)
	err := db.Conn.QueryRow(context.Background(), `
        SELECT username, role, created_at FROM users WHERE id = $1
    `, userID).Scan(&username, &role, &createdAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         userID,
		"username":   username,
		"role":       role,
		"created_at": createdAt.UTC().Format(time.RFC3339),
	})
}
