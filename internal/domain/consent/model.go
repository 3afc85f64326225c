// Package consent holds patient-issued, per-clinician capability grants.
// A grant authorizes one clinician to write records for the issuing patient
// until the patient revokes it; revocation is permanent and re-authorization
// requires a new grant.
package consent

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAlreadyRevoked = errors.New("grant is already revoked")
	ErrNotFound       = errors.New("grant not found")
)

// Grant maps to the consent_grant table. PayloadRef points at an encrypted
// off-ledger payload the core never interprets.
type Grant struct {
	ID          uint64     `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	ClinicianID uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	Active      bool       `db:"active" json:"active"`
	PayloadRef  string     `db:"payload_ref" json:"payload_ref"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	RevokedAt   *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}
