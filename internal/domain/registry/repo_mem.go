package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memRepo is the serialized in-memory backend. The verified set is a backing
// slice plus a presence index; removal swaps the last element into the hole
// and truncates, so membership changes are O(1) and enumeration order is
// unspecified.
type memRepo struct {
	mu         sync.RWMutex
	clinicians map[uuid.UUID]*Clinician
	verified   []uuid.UUID
	index      map[uuid.UUID]int
}

func NewMemRepo() Repository {
	return &memRepo{
		clinicians: make(map[uuid.UUID]*Clinician),
		index:      make(map[uuid.UUID]int),
	}
}

func (r *memRepo) Upsert(_ context.Context, c *Clinician) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored, ok := r.clinicians[c.ID]
	if !ok {
		cp := *c
		cp.CreatedAt = now
		cp.UpdatedAt = now
		r.clinicians[c.ID] = &cp
		c.CreatedAt = now
	} else {
		stored.Name = c.Name
		stored.Specialization = c.Specialization
		stored.ProfileRef = c.ProfileRef
		stored.Verified = c.Verified
		stored.UpdatedAt = now
		c.CreatedAt = stored.CreatedAt
	}
	c.UpdatedAt = now

	if c.Verified {
		r.addVerified(c.ID)
	} else {
		r.removeVerified(c.ID)
	}
	return nil
}

func (r *memRepo) addVerified(id uuid.UUID) {
	if _, ok := r.index[id]; ok {
		return
	}
	r.index[id] = len(r.verified)
	r.verified = append(r.verified, id)
}

func (r *memRepo) removeVerified(id uuid.UUID) {
	pos, ok := r.index[id]
	if !ok {
		return
	}
	last := len(r.verified) - 1
	moved := r.verified[last]
	r.verified[pos] = moved
	r.index[moved] = pos
	r.verified = r.verified[:last]
	delete(r.index, id)
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clinicians[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) ListVerified(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uuid.UUID, len(r.verified))
	copy(out, r.verified)
	return out, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*Clinician, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Clinician, 0, len(r.clinicians))
	for _, c := range r.clinicians {
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

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
