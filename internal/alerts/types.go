package alerts

import "time"

// Task type constants
const (
	TaskRequestReceived = "email:request_received"
	TaskRequestAccepted = "email:request_accepted"
	TaskHelpOpened      = "email:help_opened"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// RequestReceivedPayload notifies a provider of a new service request
type RequestReceivedPayload struct {
	RequestID     string        `json:"request_id"`
	ProviderID    int64         `json:"provider_id"`
	ProviderEmail string        `json:"provider_email"`
	RequesterName string        `json:"requester_name"`
	Envelope      EmailEnvelope `json:"envelope"`
	SentAt        time.Time     `json:"sent_at"`
}

// RequestAcceptedPayload notifies a requester their request was accepted
type RequestAcceptedPayload struct {
	RequestID      string        `json:"request_id"`
	RequesterEmail string        `json:"requester_email"`
	ProviderName   string        `json:"provider_name"`
	Envelope       EmailEnvelope `json:"envelope"`
	SentAt         time.Time     `json:"sent_at"`
}

// HelpOpenedPayload alerts the platform admins to a new support ticket
type HelpOpenedPayload struct {
	TicketID string        `json:"ticket_id"`
	Name     string        `json:"name"`
	Problem  string        `json:"problem"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}
