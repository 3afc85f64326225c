package escrow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service drives the appointment lifecycle. A service-level mutex
// serializes transitions end to end so the read-check-write sequence of
// each operation behaves as a single step regardless of backend.
type Service struct {
	mu   sync.Mutex
	repo Repository

	bookings    prometheus.Counter
	transitions *prometheus.CounterVec
	custodied   prometheus.Gauge
}

// NewService wires the escrow engine. promReg may be nil when metrics are
// not collected, for example in tests.
func NewService(repo Repository, promReg prometheus.Registerer) *Service {
	s := &Service{repo: repo}
	if promReg != nil {
		s.bookings = promauto.With(promReg).NewCounter(prometheus.CounterOpts{
			Namespace: "careledger",
			Subsystem: "escrow",
			Name:      "bookings_total",
			Help:      "Appointments booked",
		})
		s.transitions = promauto.With(promReg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "careledger",
			Subsystem: "escrow",
			Name:      "transitions_total",
			Help:      "Appointment status transitions",
		}, []string{"to"})
		s.custodied = promauto.With(promReg).NewGauge(prometheus.GaugeOpts{
			Namespace: "careledger",
			Subsystem: "escrow",
			Name:      "custodied_amount",
			Help:      "Total amount currently held in escrow",
		})
	}
	return s
}

// Book creates a pending appointment for the actor as patient, taking the
// amount into escrow custody. The amount must be positive.
func (s *Service) Book(ctx context.Context, patient, clinician uuid.UUID, amount uint64) (*Appointment, error) {
	if patient == uuid.Nil {
		return nil, fmt.Errorf("%w: patient identity required", ErrUnauthorized)
	}
	if clinician == uuid.Nil {
		return nil, fmt.Errorf("clinician id is required")
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appt := &Appointment{
		PatientID:   patient,
		ClinicianID: clinician,
		Amount:      amount,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	if s.bookings != nil {
		s.bookings.Inc()
		s.custodied.Add(float64(amount))
	}
	return appt, nil
}

// Confirm moves a pending appointment to confirmed. Only the booked
// clinician may confirm. Funds stay in escrow.
func (s *Service) Confirm(ctx context.Context, actor uuid.UUID, id uint64) error {
	return s.transition(ctx, actor, id, StatusPending, StatusConfirmed,
		func(a *Appointment) bool { return actor == a.ClinicianID }, nil)
}

// Complete settles a confirmed appointment, paying the custodied amount
// out to the clinician. Either party may complete.
func (s *Service) Complete(ctx context.Context, actor uuid.UUID, id uint64) error {
	return s.transition(ctx, actor, id, StatusConfirmed, StatusCompleted,
		eitherParty, func(a *Appointment) *Transfer {
			return &Transfer{
				AppointmentID: a.ID,
				Recipient:     a.ClinicianID,
				Amount:        a.Amount,
				Kind:          TransferPayout,
			}
		})
}

// CancelByPatient cancels a pending appointment and refunds the patient.
func (s *Service) CancelByPatient(ctx context.Context, actor uuid.UUID, id uint64) error {
	return s.transition(ctx, actor, id, StatusPending, StatusCancelledByPatient,
		func(a *Appointment) bool { return actor == a.PatientID }, refundPatient)
}

// CancelByClinician cancels a pending appointment on the clinician's side.
// The refund still goes to the patient.
func (s *Service) CancelByClinician(ctx context.Context, actor uuid.UUID, id uint64) error {
	return s.transition(ctx, actor, id, StatusPending, StatusCancelledByClinician,
		func(a *Appointment) bool { return actor == a.ClinicianID }, refundPatient)
}

// Dispute freezes a confirmed appointment. Either party may raise it; the
// funds remain custodied and no further transition is possible.
func (s *Service) Dispute(ctx context.Context, actor uuid.UUID, id uint64) error {
	return s.transition(ctx, actor, id, StatusConfirmed, StatusDisputed, eitherParty, nil)
}

func eitherParty(a *Appointment) bool {
	return true
}

func refundPatient(a *Appointment) *Transfer {
	return &Transfer{
		AppointmentID: a.ID,
		Recipient:     a.PatientID,
		Amount:        a.Amount,
		Kind:          TransferRefund,
	}
}

// transition holds the service lock across the authorization read and the
// compare-and-swap so concurrent callers cannot interleave.
func (s *Service) transition(ctx context.Context, actor uuid.UUID, id uint64,
	from, to Status, allowed func(*Appointment) bool, mkTransfer func(*Appointment) *Transfer) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor != appt.PatientID && actor != appt.ClinicianID {
		return fmt.Errorf("%w: actor is not a party to appointment %d", ErrUnauthorized, id)
	}
	if !allowed(appt) {
		return fmt.Errorf("%w: actor may not %s appointment %d", ErrUnauthorized, to, id)
	}
	if appt.Status != from {
		return fmt.Errorf("%w: appointment %d is %s, expected %s", ErrInvalidState, id, appt.Status, from)
	}

	var transfer *Transfer
	if mkTransfer != nil {
		transfer = mkTransfer(appt)
	}
	if err := s.repo.Transition(ctx, id, from, to, transfer); err != nil {
		return err
	}
	if s.transitions != nil {
		s.transitions.WithLabelValues(string(to)).Inc()
		if transfer != nil {
			s.custodied.Sub(float64(transfer.Amount))
		}
	}
	return nil
}

// Get returns an appointment visible to its two parties only.
func (s *Service) Get(ctx context.Context, actor uuid.UUID, id uint64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor != appt.PatientID && actor != appt.ClinicianID {
		return nil, fmt.Errorf("%w: actor is not a party to appointment %d", ErrUnauthorized, id)
	}
	return appt, nil
}

// NextID reports the id the next booking will be assigned.
func (s *Service) NextID(ctx context.Context) (uint64, error) {
	return s.repo.NextID(ctx)
}

// ListMine returns the appointments the actor participates in, booking order.
func (s *Service) ListMine(ctx context.Context, actor uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByParty(ctx, actor, limit, offset)
}

// EscrowBalance is the amount currently custodied across all appointments.
func (s *Service) EscrowBalance(ctx context.Context) (uint64, error) {
	return s.repo.EscrowBalance(ctx)
}

// BalanceOf is the cumulative amount released to a party.
func (s *Service) BalanceOf(ctx context.Context, party uuid.UUID) (uint64, error) {
	return s.repo.BalanceOf(ctx, party)
}

// Transfers returns the settlement record of an appointment, at most one.
func (s *Service) Transfers(ctx context.Context, appointmentID uint64) ([]*Transfer, error) {
	return s.repo.Transfers(ctx, appointmentID)
}
