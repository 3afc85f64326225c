package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create issues a new active grant from the calling patient to a clinician.
// Any patient identity may issue grants; whether the clinician is verified is
// checked at use time by the care platform, not here.
func (s *Service) Create(ctx context.Context, patient, clinician uuid.UUID, payloadRef string) (*Grant, error) {
	if patient == uuid.Nil {
		return nil, fmt.Errorf("patient id is required")
	}
	if clinician == uuid.Nil {
		return nil, fmt.Errorf("clinician id is required")
	}

	g := &Grant{
		PatientID:   patient,
		ClinicianID: clinician,
		Active:      true,
		PayloadRef:  payloadRef,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Revoke deactivates a grant. Only the issuing patient may revoke, and a
// grant revokes exactly once; a second attempt fails rather than no-ops.
// The true->false flip itself happens atomically in the repository, so
// concurrent revokes of the same grant cannot both succeed.
func (s *Service) Revoke(ctx context.Context, actor uuid.UUID, id uint64) error {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g.PatientID != actor {
		return fmt.Errorf("%w: only the issuing patient may revoke grant %d", ErrUnauthorized, id)
	}
	if !g.Active {
		return fmt.Errorf("%w: %d", ErrAlreadyRevoked, id)
	}
	return s.repo.SetRevoked(ctx, id, time.Now())
}

func (s *Service) Get(ctx context.Context, id uint64) (*Grant, error) {
	return s.repo.GetByID(ctx, id)
}

// HasActiveGrant reports whether the patient currently authorizes the
// clinician. Read-only; used by the care platform's write guard.
func (s *Service) HasActiveGrant(ctx context.Context, patient, clinician uuid.UUID) (bool, error) {
	return s.repo.HasActive(ctx, patient, clinician)
}

func (s *Service) ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Grant, int, error) {
	return s.repo.ListByPatient(ctx, patient, limit, offset)
}
