package escrow

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists appointments and the escrow ledger. Transition is
// the critical operation: it must apply the status change and the optional
// fund movement atomically, and must fail with ErrInvalidState when the
// appointment is not in the expected from status.
type Repository interface {
	// Create stores a new pending appointment, assigns the next id and
	// credits its amount to the escrow pool.
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id uint64) (*Appointment, error)
	// NextID returns the id the next booking will receive.
	NextID(ctx context.Context) (uint64, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByParty(ctx context.Context, party uuid.UUID, limit, offset int) ([]*Appointment, int, error)

	// Transition compare-and-swaps the status from from to to. When
	// transfer is non-nil the transfer amount is debited from the escrow
	// pool and credited to the recipient in the same atomic step.
	Transition(ctx context.Context, id uint64, from, to Status, transfer *Transfer) error

	// EscrowBalance is the total currently custodied by the pool.
	EscrowBalance(ctx context.Context) (uint64, error)
	// BalanceOf is the total released to a party across all appointments.
	BalanceOf(ctx context.Context, party uuid.UUID) (uint64, error)
	Transfers(ctx context.Context, appointmentID uint64) ([]*Transfer, error)
}
