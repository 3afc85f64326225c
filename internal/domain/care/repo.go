package care

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository persists the patient roster. Register must fail with
// ErrAlreadyRegistered on a duplicate patient id.
type PatientRepository interface {
	Register(ctx context.Context, reg *Registration) error
	IsRegistered(ctx context.Context, patient uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Registration, int, error)
}
