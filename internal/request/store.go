package request

import "context"

// AdminProviderID is the sentinel provider id for requests addressed to
// the platform itself rather than to a shop.
const AdminProviderID int64 = 0

// Store is the persistence boundary of the lifecycle manager. The backing
// store is the only resource shared between the requester's and the
// provider's runtime, so UpdateStatusIfBelow must be atomic with respect
// to concurrent writers.
type Store interface {
	// Insert persists a new request and fills in its assigned id and
	// timestamps.
	Insert(ctx context.Context, r *ServiceRequest) error

	// Get returns a request by id, or a NotFoundError.
	Get(ctx context.Context, id string) (*ServiceRequest, error)

	// ListByProvider returns the requests addressed to one provider,
	// newest first.
	ListByProvider(ctx context.Context, providerID int64) ([]ServiceRequest, error)

	// ListAll returns every request, newest first. Admin use only.
	ListAll(ctx context.Context) ([]ServiceRequest, error)

	// UpdateStatusIfBelow is the guarded compare-and-set: it sets the
	// status to target only if the persisted status ranks strictly below
	// target, or if target is cancelled and the persisted status is not
	// terminal. It returns whether the update was applied and the status
	// that was current when the store decided (the new status when
	// applied). A rejected update leaves the persisted status untouched.
	UpdateStatusIfBelow(ctx context.Context, id string, target Status) (applied bool, current Status, err error)
}
