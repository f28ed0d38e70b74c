// internal/organizer/errors.go
package organizer

import "fmt"

// ValidationError reports invalid input: an empty trigger, a bad
// field combination, or an unknown feedback action.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown pattern for an owner. Cross-tenant
// lookups deliberately surface as not-found rather than permission
// errors to avoid leaking pattern existence.
type NotFoundError struct {
	OwnerID   string
	PatternID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("pattern not found: owner %s pattern %s", e.OwnerID, e.PatternID)
}

// StorageError wraps a transient persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

// ErrConflict signals an optimistic-concurrency version mismatch; the
// caller reloads and retries.
var ErrConflict = fmt.Errorf("pattern version conflict")
