package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

// EnqueueRequestReceived notifies a provider that a new request landed in
// their inbox.
func EnqueueRequestReceived(requestID string, providerID int64, providerEmail, requesterName string) error {
	env := EmailEnvelope{
		To:      providerEmail,
		Subject: "New service request",
		Body:    fmt.Sprintf("%s sent you a service request. Open your inbox to respond.", requesterName),
	}
	payload := RequestReceivedPayload{
		RequestID: requestID, ProviderID: providerID, ProviderEmail: providerEmail,
		RequesterName: requesterName, Envelope: env, SentAt: time.Now(),
	}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskRequestReceived, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueRequestAccepted notifies the requester their request was accepted.
func EnqueueRequestAccepted(requestID, requesterEmail, providerName string) error {
	env := EmailEnvelope{
		To:      requesterEmail,
		Subject: "Your request was accepted",
		Body:    fmt.Sprintf("%s accepted your request and is on the way.", providerName),
	}
	payload := RequestAcceptedPayload{
		RequestID: requestID, RequesterEmail: requesterEmail,
		ProviderName: providerName, Envelope: env, SentAt: time.Now(),
	}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskRequestAccepted, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueHelpOpened alerts the platform admins to a new support ticket.
func EnqueueHelpOpened(ticketID, name, problem string) error {
	to := os.Getenv("ADMIN_EMAIL")
	if to == "" {
		to = "admin@service-locator.local"
	}
	env := EmailEnvelope{
		To:      to,
		Subject: "New help ticket",
		Body:    fmt.Sprintf("%s opened a ticket: %s", name, problem),
	}
	payload := HelpOpenedPayload{TicketID: ticketID, Name: name, Problem: problem, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskHelpOpened, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("alerts"))
	return err
}
