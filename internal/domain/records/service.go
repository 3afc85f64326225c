package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/platform/blobstore"
)

// Service validates and appends record entries. It deliberately has no
// notion of consent or verification; callers gate access before reaching
// this layer.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append writes a new entry for the patient. Either inline content or a
// valid blob reference must be supplied; encrypted records the author's
// claim that the payload is ciphertext.
func (s *Service) Append(ctx context.Context, patient, author uuid.UUID, content, contentRef string, encrypted bool) (*Record, error) {
	if patient == uuid.Nil {
		return nil, fmt.Errorf("patient id is required")
	}
	if content == "" && contentRef == "" {
		return nil, ErrEmptyRecord
	}
	if contentRef != "" && !blobstore.ValidRef(contentRef) {
		return nil, fmt.Errorf("invalid content ref %q", contentRef)
	}

	rec := &Record{
		PatientID:  patient,
		AuthorID:   author,
		Content:    content,
		ContentRef: contentRef,
		Encrypted:  encrypted,
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns entries oldest first.
func (s *Service) ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByPatient(ctx, patient, limit, offset)
}

func (s *Service) CountByPatient(ctx context.Context, patient uuid.UUID) (int, error) {
	return s.repo.CountByPatient(ctx, patient)
}
