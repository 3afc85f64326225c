package care

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/careledger/careledger/internal/domain/consent"
	"github.com/careledger/careledger/internal/domain/escrow"
	"github.com/careledger/careledger/internal/domain/records"
	"github.com/careledger/careledger/internal/domain/registry"
)

// Deps carries the storage backends the platform builds its services on.
// Metrics may be nil.
type Deps struct {
	Patients PatientRepository
	Registry registry.Repository
	Consent  consent.Repository
	Escrow   escrow.Repository
	Records  records.Repository
	Metrics  prometheus.Registerer
}

// Platform wires the four domains together behind a single surface. It
// has its own identity, distinct from the admin, and instantiates the
// clinician registry with that identity as steward so that clinician
// approval and revocation are only reachable through the admin checks
// here. The admin can change over time; the platform identity cannot.
type Platform struct {
	mu    sync.Mutex
	id    uuid.UUID
	admin uuid.UUID

	patients PatientRepository
	registry *registry.Service
	consent  *consent.Service
	escrow   *escrow.Service
	records  *records.Service
}

// NewPlatform builds the platform with the given admin identity. The
// registry starts under a throwaway bootstrap identity and stewardship is
// handed to the platform immediately; the transfer is one-shot, so after
// setup the capability can never move again.
func NewPlatform(admin uuid.UUID, d Deps) *Platform {
	id := uuid.New()
	boot := uuid.New()
	reg := registry.NewService(d.Registry, boot)
	if err := reg.TransferSteward(boot, id); err != nil {
		// Unreachable: boot holds the fresh, untransferred capability.
		panic(err)
	}
	return &Platform{
		id:       id,
		admin:    admin,
		patients: d.Patients,
		registry: reg,
		consent:  consent.NewService(d.Consent),
		escrow:   escrow.NewService(d.Escrow, d.Metrics),
		records:  records.NewService(d.Records),
	}
}

// ID is the platform's own identity, the steward of its registry.
func (p *Platform) ID() uuid.UUID { return p.id }

// Admin returns the current admin identity.
func (p *Platform) Admin() uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.admin
}

// TransferAdmin hands the admin role to another identity in a single
// step. Only the current admin may do it.
func (p *Platform) TransferAdmin(actor, to uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if actor != p.admin {
		return fmt.Errorf("%w: only the admin may transfer the role", ErrUnauthorized)
	}
	if to == uuid.Nil {
		return fmt.Errorf("new admin id is required")
	}
	p.admin = to
	return nil
}

func (p *Platform) requireAdmin(actor uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if actor != p.admin {
		return fmt.Errorf("%w: admin only", ErrUnauthorized)
	}
	return nil
}

// ApproveClinician verifies a clinician on behalf of the admin. The
// platform relays the call to the registry under its steward identity.
func (p *Platform) ApproveClinician(ctx context.Context, actor uuid.UUID, c *registry.Clinician) error {
	if err := p.requireAdmin(actor); err != nil {
		return err
	}
	return p.registry.Register(ctx, p.id, c)
}

// RevokeClinician removes a clinician from the verified set.
func (p *Platform) RevokeClinician(ctx context.Context, actor, clinician uuid.UUID) error {
	if err := p.requireAdmin(actor); err != nil {
		return err
	}
	return p.registry.Revoke(ctx, p.id, clinician)
}

// RegisterPatient puts the actor on the roster. A second registration of
// the same identity fails with ErrAlreadyRegistered.
func (p *Platform) RegisterPatient(ctx context.Context, actor uuid.UUID, name string) (*Registration, error) {
	if actor == uuid.Nil {
		return nil, fmt.Errorf("%w: patient identity required", ErrUnauthorized)
	}
	reg := &Registration{PatientID: actor, Name: name}
	if err := p.patients.Register(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (p *Platform) IsRegistered(ctx context.Context, patient uuid.UUID) (bool, error) {
	return p.patients.IsRegistered(ctx, patient)
}

func (p *Platform) ListPatients(ctx context.Context, limit, offset int) ([]*Registration, int, error) {
	return p.patients.List(ctx, limit, offset)
}

// mayWriteRecord is the record write rule: the author must be a currently
// verified clinician holding an active consent grant from the patient.
// Both conditions are re-evaluated on every write, so a revocation on
// either side takes effect immediately.
func (p *Platform) mayWriteRecord(ctx context.Context, author, patient uuid.UUID) error {
	verified, err := p.registry.IsVerified(ctx, author)
	if err != nil {
		return err
	}
	if !verified {
		return fmt.Errorf("%w: author is not a verified clinician", ErrUnauthorized)
	}
	consented, err := p.consent.HasActiveGrant(ctx, patient, author)
	if err != nil {
		return err
	}
	if !consented {
		return fmt.Errorf("%w: no active consent from patient", ErrUnauthorized)
	}
	return nil
}

// AddRecordForPatient appends a record entry after checking the write rule.
func (p *Platform) AddRecordForPatient(ctx context.Context, author, patient uuid.UUID, content, contentRef string, encrypted bool) (*records.Record, error) {
	registered, err := p.patients.IsRegistered(ctx, patient)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrNotRegistered
	}
	if err := p.mayWriteRecord(ctx, author, patient); err != nil {
		return nil, err
	}
	return p.records.Append(ctx, patient, author, content, contentRef, encrypted)
}

// ViewRecords returns a patient's entries. Patients read their own chart;
// the admin reads any; a clinician reads under the same verified plus
// consented rule that gates writing.
func (p *Platform) ViewRecords(ctx context.Context, actor, patient uuid.UUID, limit, offset int) ([]*records.Record, int, error) {
	if actor != patient && actor != p.Admin() {
		if err := p.mayWriteRecord(ctx, actor, patient); err != nil {
			return nil, 0, err
		}
	}
	return p.records.ListByPatient(ctx, patient, limit, offset)
}

// Registry exposes the clinician registry for read-only routes.
func (p *Platform) Registry() *registry.Service { return p.registry }

// Consent exposes the consent ledger service.
func (p *Platform) Consent() *consent.Service { return p.consent }

// Escrow exposes the appointment escrow service.
func (p *Platform) Escrow() *escrow.Service { return p.escrow }

// Records exposes the record store service.
func (p *Platform) Records() *records.Service { return p.records }
