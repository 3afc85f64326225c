package consent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memRepo struct {
	mu     sync.RWMutex
	grants map[uint64]*Grant
	nextID uint64
}

func NewMemRepo() Repository {
	return &memRepo{grants: make(map[uint64]*Grant)}
}

func (r *memRepo) Create(_ context.Context, g *Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g.ID = r.nextID
	g.CreatedAt = time.Now()
	r.nextID++

	cp := *g
	r.grants[g.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uint64) (*Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	cp := *g
	return &cp, nil
}

func (r *memRepo) SetRevoked(_ context.Context, id uint64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	// Checked under the write lock so two racing revokes cannot both pass.
	if !g.Active {
		return fmt.Errorf("%w: %d", ErrAlreadyRevoked, id)
	}
	g.Active = false
	g.RevokedAt = &at
	return nil
}

func (r *memRepo) HasActive(_ context.Context, patient, clinician uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.grants {
		if g.Active && g.PatientID == patient && g.ClinicianID == clinician {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListByPatient(_ context.Context, patient uuid.UUID, limit, offset int) ([]*Grant, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Grant
	// grant ids are assigned in creation order
	for id := uint64(0); id < r.nextID; id++ {
		g, ok := r.grants[id]
		if !ok || g.PatientID != patient {
			continue
		}
		cp := *g
		all = append(all, &cp)
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
