package request

import (
	"fmt"
	"time"

	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

// Status is the delivery-acknowledgement stage of a service request,
// analogous to message read receipts. The four regular stages are strictly
// ordered; cancelled sits outside the scale as the terminal escape hatch.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusSeen      Status = "seen"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
)

// Rank maps a status onto the ordered scale. Cancelled has no rank.
func (s Status) Rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusSeen:
		return 2
	case StatusAccepted:
		return 3
	}
	return -1
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusSeen, StatusAccepted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus validates a raw status string from a request payload.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Contact is how the provider reaches the requester.
type Contact struct {
	Name    string `json:"requesterName"`
	Phone   string `json:"requesterPhone"`
	Address string `json:"requesterAddress"`
}

// ServiceRequest is one consumer-to-provider ask.
type ServiceRequest struct {
	ID          string    `json:"id"`
	ProviderID  int64     `json:"providerId"`
	RequesterID string    `json:"requesterId,omitempty"`
	Contact     Contact   `json:"contact"`
	Location    geo.Point `json:"location"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
