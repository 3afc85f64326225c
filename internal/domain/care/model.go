// Package care is the orchestration layer tying the clinician registry,
// the consent ledger, the appointment escrow and the record store into one
// platform. It owns the patient roster and enforces the write rule for
// medical records: the author must be a currently verified clinician AND
// hold an active consent grant from the patient.
package care

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAlreadyRegistered = errors.New("patient already registered")
	ErrNotRegistered     = errors.New("patient not registered")
)

// Registration maps to the patient_registration table.
type Registration struct {
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	Name         string    `db:"name" json:"name,omitempty"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}
