package consent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for grants. Create assigns
// monotonically increasing ids starting at zero; grants are never deleted.
type Repository interface {
	Create(ctx context.Context, g *Grant) error
	GetByID(ctx context.Context, id uint64) (*Grant, error)
	// SetRevoked flips an active grant to revoked as one atomic step. It
	// fails with ErrAlreadyRevoked when the grant is already inactive, so
	// of any number of concurrent revokes exactly one succeeds.
	SetRevoked(ctx context.Context, id uint64, at time.Time) error
	HasActive(ctx context.Context, patient, clinician uuid.UUID) (bool, error)
	ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Grant, int, error)
}
