package help

import "time"

// Ticket statuses. A ticket is a degenerate request with no provider:
// it is addressed to the platform and only moves open -> answered.
const (
	StatusOpen     = "open"
	StatusAnswered = "answered"
)

// Ticket is a consumer-to-admin support message.
type Ticket struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requesterId,omitempty"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Problem     string     `json:"problem"`
	Status      string     `json:"status"`
	Answer      string     `json:"answer,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	AnsweredAt  *time.Time `json:"answeredAt,omitempty"`
}
