package request

import "fmt"

// ValidationError rejects a request that is missing a required field, most
// importantly an unresolved requester location. Recoverable: the caller
// re-prompts the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// InvalidTransitionError rejects a status change from a terminal state or
// any other move the guard does not allow.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("request %s: cannot transition %s -> %s", e.ID, e.From, e.To)
}

// NotFoundError marks an unknown request id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request %s not found", e.ID)
}
