// Package records is the append-only store of medical record entries.
// Entries are never updated or deleted once written; corrections are new
// entries. Authorization for writing lives above this package.
package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyRecord = errors.New("record content required")
	ErrNotFound    = errors.New("record not found")
)

// Record maps to the medical_record table. Content carries short inline
// notes; ContentRef points at a content-addressed blob for anything larger
// (imaging, documents). At least one of the two must be set. Encrypted
// marks the payload as ciphertext the author encrypted client-side; the
// store never inspects content either way.
type Record struct {
	ID         uint64    `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	AuthorID   uuid.UUID `db:"author_id" json:"author_id"`
	Content    string    `db:"content" json:"content,omitempty"`
	ContentRef string    `db:"content_ref" json:"content_ref,omitempty"`
	Encrypted  bool      `db:"encrypted" json:"encrypted"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
