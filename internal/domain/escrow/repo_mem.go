package escrow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memRepo is the in-memory backend. All state lives behind one mutex so a
// Transition observes and mutates the appointment, the pool and the party
// balances as a single step.
type memRepo struct {
	mu           sync.Mutex
	appointments map[uint64]*Appointment
	transfers    map[uint64]*Transfer
	balances     map[uuid.UUID]uint64
	pool         uint64
	nextID       uint64
}

// NewMemRepo returns an empty in-memory appointment store.
func NewMemRepo() Repository {
	return &memRepo{
		appointments: make(map[uint64]*Appointment),
		transfers:    make(map[uint64]*Transfer),
		balances:     make(map[uuid.UUID]uint64),
	}
}

func (r *memRepo) Create(_ context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	appt.ID = r.nextID
	appt.Status = StatusPending
	appt.CreatedAt = now
	appt.UpdatedAt = now
	r.nextID++

	cp := *appt
	r.appointments[appt.ID] = &cp
	r.pool += appt.Amount
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uint64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *memRepo) NextID(_ context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window(func(*Appointment) bool { return true }, limit, offset)
}

func (r *memRepo) ListByParty(_ context.Context, party uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window(func(a *Appointment) bool {
		return a.PatientID == party || a.ClinicianID == party
	}, limit, offset)
}

// window walks ids in booking order; ids are dense from zero so iterating
// up to nextID visits every appointment exactly once.
func (r *memRepo) window(keep func(*Appointment) bool, limit, offset int) ([]*Appointment, int, error) {
	matched := 0
	out := make([]*Appointment, 0, limit)
	for id := uint64(0); id < r.nextID; id++ {
		appt := r.appointments[id]
		if appt == nil || !keep(appt) {
			continue
		}
		if matched >= offset && len(out) < limit {
			cp := *appt
			out = append(out, &cp)
		}
		matched++
	}
	return out, matched, nil
}

func (r *memRepo) Transition(_ context.Context, id uint64, from, to Status, transfer *Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	if appt.Status != from {
		return fmt.Errorf("%w: appointment %d is %s, expected %s", ErrInvalidState, id, appt.Status, from)
	}
	if transfer != nil {
		if transfer.Amount > r.pool {
			return fmt.Errorf("escrow pool underflow on appointment %d", id)
		}
		if _, exists := r.transfers[id]; exists {
			return fmt.Errorf("%w: appointment %d already settled", ErrInvalidState, id)
		}
		cp := *transfer
		cp.CreatedAt = time.Now().UTC()
		r.transfers[id] = &cp
		r.pool -= cp.Amount
		r.balances[cp.Recipient] += cp.Amount
	}
	appt.Status = to
	appt.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memRepo) EscrowBalance(_ context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool, nil
}

func (r *memRepo) BalanceOf(_ context.Context, party uuid.UUID) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[party], nil
}

func (r *memRepo) Transfers(_ context.Context, appointmentID uint64) ([]*Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transfers[appointmentID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return []*Transfer{&cp}, nil
}
