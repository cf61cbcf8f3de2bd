package request

import (
	"context"
	"log"

	"github.com/gitakbarhub/service-locator-database/internal/geo"
)

// Manager owns the request state machine. Every transition goes through
// the store's compare-and-set, so a stale or out-of-order client write can
// never regress a status that has already moved forward.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Create validates and persists a new request in the sent state and
// returns its assigned id. A request without a resolved location is
// refused with a ValidationError and nothing is persisted.
func (m *Manager) Create(ctx context.Context, providerID int64, requesterID string, contact Contact, location *geo.Point) (string, error) {
	if location == nil {
		return "", &ValidationError{Field: "location", Reason: "is required"}
	}
	if !location.Valid() {
		return "", &ValidationError{Field: "location", Reason: "is out of range"}
	}
	if contact.Name == "" {
		return "", &ValidationError{Field: "requesterName", Reason: "is required"}
	}

	r := &ServiceRequest{
		ProviderID:  providerID,
		RequesterID: requesterID,
		Contact:     contact,
		Location:    *location,
		Status:      StatusSent,
	}
	if err := m.store.Insert(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

// MarkDelivered records that the request reached the provider's client.
// Already being at or past delivered is a stale duplicate, not an error.
func (m *Manager) MarkDelivered(ctx context.Context, id string) error {
	return m.advance(ctx, id, StatusDelivered)
}

// MarkSeen records that the provider opened the request.
func (m *Manager) MarkSeen(ctx context.Context, id string) error {
	return m.advance(ctx, id, StatusSeen)
}

// Accept moves a non-terminal request to accepted. Under concurrent
// accepts the first writer wins; the loser sees an
// InvalidTransitionError.
func (m *Manager) Accept(ctx context.Context, id string) error {
	applied, current, err := m.store.UpdateStatusIfBelow(ctx, id, StatusAccepted)
	if err != nil {
		return err
	}
	if !applied {
		return &InvalidTransitionError{ID: id, From: current, To: StatusAccepted}
	}
	return nil
}

// Cancel moves any non-terminal request to cancelled. Cancelling an
// accepted or already-cancelled request fails.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	applied, current, err := m.store.UpdateStatusIfBelow(ctx, id, StatusCancelled)
	if err != nil {
		return err
	}
	if !applied {
		return &InvalidTransitionError{ID: id, From: current, To: StatusCancelled}
	}
	return nil
}

// Apply runs the guarded transition for a raw status value, as supplied by
// the PATCH endpoint.
func (m *Manager) Apply(ctx context.Context, id string, target Status) error {
	switch target {
	case StatusDelivered:
		return m.MarkDelivered(ctx, id)
	case StatusSeen:
		return m.MarkSeen(ctx, id)
	case StatusAccepted:
		return m.Accept(ctx, id)
	case StatusCancelled:
		return m.Cancel(ctx, id)
	}
	return &ValidationError{Field: "status", Reason: "is not a reachable target"}
}

// Status returns the persisted status for a requester's poll.
func (m *Manager) Status(ctx context.Context, id string) (Status, error) {
	r, err := m.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return r.Status, nil
}

// Get returns the full persisted request.
func (m *Manager) Get(ctx context.Context, id string) (*ServiceRequest, error) {
	return m.store.Get(ctx, id)
}

// Inbox lists a provider's requests, newest first, marking any still-sent
// entry as delivered: fetching the list is the delivery event. Marking is
// best effort; a failed mark leaves the stored status for the next fetch.
func (m *Manager) Inbox(ctx context.Context, providerID int64) ([]ServiceRequest, error) {
	items, err := m.store.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Status != StatusSent {
			continue
		}
		if err := m.MarkDelivered(ctx, items[i].ID); err != nil {
			log.Printf("inbox: mark delivered %s: %v", items[i].ID, err)
			continue
		}
		items[i].Status = StatusDelivered
	}
	return items, nil
}

// All lists every request in the store, newest first.
func (m *Manager) All(ctx context.Context) ([]ServiceRequest, error) {
	return m.store.ListAll(ctx)
}

// advance applies a forward-only mark. A rejected update against a
// non-terminal status means the request is already at or past the target
// (a stale duplicate): a no-op. A rejected update against a terminal
// status is a real transition attempt out of a final state and fails.
func (m *Manager) advance(ctx context.Context, id string, target Status) error {
	applied, current, err := m.store.UpdateStatusIfBelow(ctx, id, target)
	if err != nil {
		return err
	}
	if !applied && current.Terminal() {
		return &InvalidTransitionError{ID: id, From: current, To: target}
	}
	return nil
}
