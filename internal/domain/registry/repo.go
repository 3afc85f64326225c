package registry

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for clinician entries.
// ListVerified must return a de-duplicated set in time proportional to the
// number of ever-registered clinicians, in no particular order.
type Repository interface {
	Upsert(ctx context.Context, c *Clinician) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinician, error)
	ListVerified(ctx context.Context) ([]uuid.UUID, error)
	List(ctx context.Context, limit, offset int) ([]*Clinician, int, error)
}
