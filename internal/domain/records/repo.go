package records

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists record entries. Append assigns the id; there is no
// update or delete.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uint64) (*Record, error)
	// ListByPatient returns a patient's entries oldest first.
	ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Record, int, error)
	CountByPatient(ctx context.Context, patient uuid.UUID) (int, error)
}
