package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Service enforces the steward capability and the verify/revoke transition
// rules on top of a Repository.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	steward   uuid.UUID
	delegated bool
}

// NewService creates the registry with the deploying party as steward.
// When the registry runs standalone the capability can be handed over once,
// at setup, via TransferSteward.
func NewService(repo Repository, deployer uuid.UUID) *Service {
	return &Service{repo: repo, steward: deployer}
}

// Steward returns the identity currently allowed to mutate the registry.
func (s *Service) Steward() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steward
}

// TransferSteward hands the mutation capability to a new holder. It may be
// invoked exactly once, by the deploying party; afterwards the deployer
// permanently loses mutation rights.
func (s *Service) TransferSteward(actor, to uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if actor != s.steward {
		return fmt.Errorf("%w: only the steward may transfer stewardship", ErrUnauthorized)
	}
	if s.delegated {
		return fmt.Errorf("%w: stewardship has already been transferred", ErrUnauthorized)
	}
	if to == uuid.Nil {
		return fmt.Errorf("new steward is required")
	}
	s.steward = to
	s.delegated = true
	return nil
}

// Register verifies a clinician, creating or updating its entry. Fails with
// ErrAlreadyVerified when the clinician is currently verified; re-approval
// after a revocation is permitted.
func (s *Service) Register(ctx context.Context, actor uuid.UUID, c *Clinician) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor != s.steward {
		return fmt.Errorf("%w: only the steward may register clinicians", ErrUnauthorized)
	}
	if c.ID == uuid.Nil {
		return fmt.Errorf("clinician id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("clinician name is required")
	}

	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil && existing.Verified {
		return fmt.Errorf("%w: %s", ErrAlreadyVerified, c.ID)
	}

	c.Verified = true
	return s.repo.Upsert(ctx, c)
}

// Revoke removes a clinician from the verified set. The entry is retained so
// a later re-approval does not lose profile data.
func (s *Service) Revoke(ctx context.Context, actor, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor != s.steward {
		return fmt.Errorf("%w: only the steward may revoke clinicians", ErrUnauthorized)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotCurrentlyVerified, id)
	}
	if err != nil {
		return err
	}
	if !existing.Verified {
		return fmt.Errorf("%w: %s", ErrNotCurrentlyVerified, id)
	}

	existing.Verified = false
	return s.repo.Upsert(ctx, existing)
}

func (s *Service) IsVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.Verified, nil
}

func (s *Service) ListVerified(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListVerified(ctx)
}

// Details returns the stored entry, or a zero-value unverified entry when the
// clinician was never registered.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*Clinician, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &Clinician{ID: id}, nil
	}
	return c, err
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Clinician, int, error) {
	return s.repo.List(ctx, limit, offset)
}
