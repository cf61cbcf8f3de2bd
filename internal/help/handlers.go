package help

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gitakbarhub/service-locator-database/internal/alerts"
	"github.com/gitakbarhub/service-locator-database/internal/db"
)

// CreateTicket handles POST /api/help. Open to anonymous visitors, so the
// requester id is attached only when a session is present.
func CreateTicket(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Role    string `json:"role"`
		Problem string `json:"problem"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Problem == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and problem are required"})
	}

	requesterID, _ := c.Get("user_id").(string)
	ticketID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO help_tickets (id, requester_id, name, role, problem, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ticketID, nullable(requesterID), req.Name, req.Role, req.Problem, StatusOpen, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create ticket"})
	}

	if err := alerts.EnqueueHelpOpened(ticketID, req.Name, req.Problem); err != nil {
		log.Printf("help: enqueue alert for ticket %s: %v", ticketID, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": ticketID})
}

// ListTickets handles GET /api/help, newest first. Admin only (route
// guarded).
func ListTickets(c echo.Context) error {
	items, err := OpenAndAnswered(context.Background())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": items})
}

// AnswerTicket handles POST /api/help/:id/answer. Answering an already
// answered ticket is rejected; the two-state lifecycle has no way back.
func AnswerTicket(c echo.Context) error {
	ticketID := c.Param("id")
	var req struct {
		Answer string `json:"answer"`
	}
	if err := c.Bind(&req); err != nil || req.Answer == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "answer is required"})
	}

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE help_tickets SET status = $2, answer = $3, answered_at = NOW()
		 WHERE id = $1 AND status = $4`,
		ticketID, StatusAnswered, req.Answer, StatusOpen,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update ticket"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found or already answered"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// OpenAndAnswered returns every ticket, newest first.
func OpenAndAnswered(ctx context.Context) ([]Ticket, error) {
	rows, err := db.Conn.Query(ctx,
		`SELECT id, COALESCE(requester_id, ''), name, role, problem, status,
		        COALESCE(answer, ''), created_at, answered_at
		 FROM help_tickets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.RequesterID, &t.Name, &t.Role, &t.Problem,
			&t.Status, &t.Answer, &t.CreatedAt, &t.AnsweredAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Open returns only the tickets still waiting for an answer, newest first.
func Open(ctx context.Context) ([]Ticket, error) {
	rows, err := db.Conn.Query(ctx,
		`SELECT id, COALESCE(requester_id, ''), name, role, problem, status,
		        COALESCE(answer, ''), created_at, answered_at
		 FROM help_tickets WHERE status = $1 ORDER BY created_at DESC`, StatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.RequesterID, &t.Name, &t.Role, &t.Problem,
			&t.Status, &t.Answer, &t.CreatedAt, &t.AnsweredAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
