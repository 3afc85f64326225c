// Package registry is the admin-curated allowlist of verified clinician
// identities. Only the current steward (the care platform, after delegation)
// may mutate it.
package registry

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAlreadyVerified      = errors.New("clinician is already verified")
	ErrNotCurrentlyVerified = errors.New("clinician is not currently verified")
	ErrNotFound             = errors.New("clinician not found")
)

// Clinician maps to the clinician table. A revoked clinician keeps its entry
// with Verified=false; re-approval flips the flag back without creating a
// duplicate.
type Clinician struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	ProfileRef     string    `db:"profile_ref" json:"profile_ref"`
	Verified       bool      `db:"verified" json:"verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
