package care

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memPatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*Registration
	order    []uuid.UUID
}

// NewMemPatientRepo returns an empty in-memory patient roster.
func NewMemPatientRepo() PatientRepository {
	return &memPatientRepo{patients: make(map[uuid.UUID]*Registration)}
}

func (r *memPatientRepo) Register(_ context.Context, reg *Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.patients[reg.PatientID]; exists {
		return ErrAlreadyRegistered
	}
	reg.RegisteredAt = time.Now().UTC()
	cp := *reg
	r.patients[reg.PatientID] = &cp
	r.order = append(r.order, reg.PatientID)
	return nil
}

func (r *memPatientRepo) IsRegistered(_ context.Context, patient uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.patients[patient]
	return ok, nil
}

func (r *memPatientRepo) List(_ context.Context, limit, offset int) ([]*Registration, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := len(r.order)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*Registration, 0, end-offset)
	for _, id := range r.order[offset:end] {
		cp := *r.patients[id]
		out = append(out, &cp)
	}
	return out, total, nil
}
