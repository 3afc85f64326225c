package records

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memRepo struct {
	mu        sync.Mutex
	records   []*Record
	byPatient map[uuid.UUID][]uint64
}

// NewMemRepo returns an empty in-memory record store.
func NewMemRepo() Repository {
	return &memRepo{byPatient: make(map[uuid.UUID][]uint64)}
}

func (r *memRepo) Append(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = uint64(len(r.records))
	rec.CreatedAt = time.Now().UTC()
	cp := *rec
	r.records = append(r.records, &cp)
	r.byPatient[rec.PatientID] = append(r.byPatient[rec.PatientID], rec.ID)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uint64) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id >= uint64(len(r.records)) {
		return nil, ErrNotFound
	}
	cp := *r.records[id]
	return &cp, nil
}

func (r *memRepo) ListByPatient(_ context.Context, patient uuid.UUID, limit, offset int) ([]*Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byPatient[patient]
	total := len(ids)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*Record, 0, end-offset)
	for _, id := range ids[offset:end] {
		cp := *r.records[id]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (r *memRepo) CountByPatient(_ context.Context, patient uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPatient[patient]), nil
}
