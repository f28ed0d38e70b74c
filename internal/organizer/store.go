// internal/organizer/store.go
package organizer

import "context"

// PatternStore is pure data access for organization patterns. The
// business rules (derivation, scoring, feedback math) live in the
// engine; the store guarantees atomic per-pattern read-modify-write:
// ReinforceOrCreate is an additive upsert and Update uses optimistic
// versioning so concurrent writers never lose increments.
type PatternStore interface {
	// ReinforceOrCreate inserts the pattern, or, when an active
	// pattern with the same (owner, kind, trigger, destination)
	// already exists, increments its occurrences and moves its
	// confidence the given fraction of the remaining distance to 1.0.
	// The returned bool is true when a new pattern was created.
	ReinforceOrCreate(ctx context.Context, p *OrganizationPattern, step float64) (*OrganizationPattern, bool, error)

	// ListActive returns all active patterns for an owner. An owner
	// with no patterns yields an empty slice, not an error.
	ListActive(ctx context.Context, ownerID string) ([]*OrganizationPattern, error)

	// Get returns the pattern only if it belongs to the owner;
	// anything else is a NotFoundError.
	Get(ctx context.Context, ownerID, patternID string) (*OrganizationPattern, error)

	// Update persists the pattern if its version still matches,
	// bumping the version. A stale version yields ErrConflict.
	Update(ctx context.Context, p *OrganizationPattern) error

	// SetExplanation attaches an AI-generated rationale. Best-effort
	// metadata; missing patterns are not an error.
	SetExplanation(ctx context.Context, ownerID, patternID, text string) error

	// RenameFolder refreshes the denormalized destination folder name
	// on every pattern of the owner pointing at the folder, returning
	// the number touched.
	RenameFolder(ctx context.Context, ownerID, folderID, name string) (int64, error)

	// OwnerStats summarizes the owner's patterns.
	OwnerStats(ctx context.Context, ownerID string) (*OwnerStats, error)
}
