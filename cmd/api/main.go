package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gitakbarhub/service-locator-database/internal/alerts"
	"github.com/gitakbarhub/service-locator-database/internal/auth"
	"github.com/gitakbarhub/service-locator-database/internal/catalog"
	"github.com/gitakbarhub/service-locator-database/internal/db"
	"github.com/gitakbarhub/service-locator-database/internal/help"
	appmw "github.com/gitakbarhub/service-locator-database/internal/middleware"
	"github.com/gitakbarhub/service-locator-database/internal/notify"
	"github.com/gitakbarhub/service-locator-database/internal/request"
	"github.com/gitakbarhub/service-locator-database/internal/shops"
)

func main() {
	_ = godotenv.Load()

	// Init subsystems
	db.Init()
	alerts.Init()
	defer alerts.Close()

	source := catalog.NewPostgresSource(db.Conn)
	catalog.Init(source)
	shops.Init(source)
	request.Init(request.NewPostgresStore(db.Conn), source.OwnerOf)

	// Admin-side synchronizer: one poll loop for the whole server
	// session, stopped on shutdown. New help tickets get flagged to the
	// platform admins between their own polls.
	sync := notify.New(adminBacklog, pollInterval(), func(u notify.Update) {
		for _, n := range u.New {
			log.Printf("[admin] new %s (%d outstanding): %s", n.Kind, u.Total, n.Title)
		}
	})
	sync.Start(context.Background())
	defer sync.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/ready", func(c echo.Context) error {
		if err := db.Conn.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes
	e.POST("/api/signup", auth.Signup)
	e.POST("/api/login", auth.Login)
	e.GET("/api/shops", shops.ListShops)
	e.GET("/api/shops/featured", shops.Featured)
	e.GET("/api/shops/search", shops.Search)
	e.GET("/api/shops/:id", shops.GetShop)
	e.POST("/api/help", help.CreateTicket, appmw.OptionalJWT)

	// Authenticated group
	g := e.Group("", appmw.JWTMiddleware)
	g.GET("/api/me", auth.Me)
	g.POST("/api/shops", shops.SaveShop)
	g.POST("/api/requests", request.CreateRequest)
	g.GET("/api/requests", request.ListRequests)
	g.PATCH("/api/requests", request.PatchRequest)
	g.POST("/api/requests/:id/accept", request.AcceptRequest, appmw.RequireRoles("provider", "admin"))
	g.POST("/api/requests/:id/cancel", request.CancelRequest)

	// Admin routes
	g.GET("/api/help", help.ListTickets, appmw.AdminGuard)
	g.POST("/api/help/:id/answer", help.AnswerTicket, appmw.AdminGuard)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// adminBacklog feeds the synchronizer the help tickets still waiting for
// an answer.
func adminBacklog(ctx context.Context) ([]notify.Notice, error) {
	tickets, err := help.Open(ctx)
	if err != nil {
		return nil, err
	}
	notices := make([]notify.Notice, 0, len(tickets))
	for _, t := range tickets {
		notices = append(notices, notify.Notice{
			ID:        t.ID,
			Kind:      "help_ticket",
			Title:     "Help ticket from " + t.Name,
			Body:      t.Problem,
			CreatedAt: t.CreatedAt,
		})
	}
	return notices, nil
}

func pollInterval() time.Duration {
	if raw := os.Getenv("NOTIFY_POLL_SECONDS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return 5 * time.Second
}
