// Package escrow books appointments between patients and clinicians and
// custodies the consultation payment until a lifecycle transition releases
// it. Exactly one of refund-to-patient or pay-to-clinician happens per
// appointment, at most once, atomically with the status change.
//
// Disputed is reachable from Confirmed but has no outgoing transition; the
// observed behavior specifies no resolution path, so disputed funds stay
// custodied indefinitely. Resolving that gap (for example admin arbitration)
// is an open product decision, deliberately not invented here.
package escrow

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidState  = errors.New("invalid state for this transition")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("appointment not found")
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending              Status = "pending"
	StatusConfirmed            Status = "confirmed"
	StatusCompleted            Status = "completed"
	StatusCancelledByPatient   Status = "cancelled-by-patient"
	StatusCancelledByClinician Status = "cancelled-by-clinician"
	StatusDisputed             Status = "disputed"
)

// Custodial reports whether funds for an appointment in this status are
// still held by the escrow account.
func (s Status) Custodial() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDisputed:
		return true
	}
	return false
}

// Appointment maps to the appointment table. Ids are assigned strictly
// increasingly starting at zero and never reused; the amount is fixed at
// booking. Appointments are never deleted, they remain as audit records.
type Appointment struct {
	ID          uint64    `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id"`
	Amount      uint64    `db:"amount" json:"amount"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TransferKind distinguishes the two ways custodied funds leave escrow.
type TransferKind string

const (
	TransferRefund TransferKind = "refund"
	TransferPayout TransferKind = "payout"
)

// Transfer is the audit record of the single fund movement of an
// appointment.
type Transfer struct {
	AppointmentID uint64       `db:"appointment_id" json:"appointment_id"`
	Recipient     uuid.UUID    `db:"recipient" json:"recipient"`
	Amount        uint64       `db:"amount" json:"amount"`
	Kind          TransferKind `db:"kind" json:"kind"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}
