package consent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestCreate(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	clinician := uuid.New()

	g, err := svc.Create(context.Background(), patient, clinician, "ref-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ID != 0 {
		t.Errorf("expected first grant id 0, got %d", g.ID)
	}
	if !g.Active {
		t.Error("expected new grant to be active")
	}
}

func TestCreate_MonotonicIDs(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()

	for want := uint64(0); want < 3; want++ {
		g, err := svc.Create(context.Background(), patient, uuid.New(), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.ID != want {
			t.Errorf("expected id %d, got %d", want, g.ID)
		}
	}
}

func TestCreate_ClinicianRequired(t *testing.T) {
	svc := NewService(NewMemRepo())
	if _, err := svc.Create(context.Background(), uuid.New(), uuid.Nil, ""); err == nil {
		t.Error("expected error for missing clinician")
	}
}

func TestRevoke(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	g, _ := svc.Create(context.Background(), patient, uuid.New(), "")

	if err := svc.Revoke(context.Background(), patient, g.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := svc.Get(context.Background(), g.ID)
	if got.Active {
		t.Error("expected grant to be inactive")
	}
	if got.RevokedAt == nil {
		t.Error("expected revoked_at to be set")
	}
}

func TestRevoke_Twice(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	g, _ := svc.Create(context.Background(), patient, uuid.New(), "")

	svc.Revoke(context.Background(), patient, g.ID)
	err := svc.Revoke(context.Background(), patient, g.ID)
	if !errors.Is(err, ErrAlreadyRevoked) {
		t.Errorf("expected ErrAlreadyRevoked, got %v", err)
	}
}

func TestRevoke_ConcurrentOnlyOneSucceeds(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	g, _ := svc.Create(context.Background(), patient, uuid.New(), "")

	const racers = 8
	errs := make(chan error, racers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			errs <- svc.Revoke(context.Background(), patient, g.ID)
		}()
	}
	start.Done()

	succeeded, rejected := 0, 0
	for i := 0; i < racers; i++ {
		err := <-errs
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyRevoked):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != racers-1 {
		t.Fatalf("succeeded = %d, rejected = %d, want exactly 1 and %d", succeeded, rejected, racers-1)
	}
}

func TestRevoke_OnlyOwner(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	clinician := uuid.New()
	g, _ := svc.Create(context.Background(), patient, clinician, "")

	// neither the clinician nor a stranger may revoke
	for _, actor := range []uuid.UUID{clinician, uuid.New()} {
		err := svc.Revoke(context.Background(), actor, g.ID)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized for %s, got %v", actor, err)
		}
	}

	got, _ := svc.Get(context.Background(), g.ID)
	if !got.Active {
		t.Error("grant should remain active after failed revokes")
	}
}

func TestRevoke_NotFound(t *testing.T) {
	svc := NewService(NewMemRepo())
	err := svc.Revoke(context.Background(), uuid.New(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHasActiveGrant(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	clinician := uuid.New()

	has, _ := svc.HasActiveGrant(context.Background(), patient, clinician)
	if has {
		t.Error("expected no grant before create")
	}

	g, _ := svc.Create(context.Background(), patient, clinician, "")
	has, _ = svc.HasActiveGrant(context.Background(), patient, clinician)
	if !has {
		t.Error("expected active grant after create")
	}

	svc.Revoke(context.Background(), patient, g.ID)
	has, _ = svc.HasActiveGrant(context.Background(), patient, clinician)
	if has {
		t.Error("expected no active grant after revoke")
	}
}

func TestHasActiveGrant_NewGrantAfterRevoke(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	clinician := uuid.New()

	g, _ := svc.Create(context.Background(), patient, clinician, "")
	svc.Revoke(context.Background(), patient, g.ID)

	// a revoked grant is permanently inactive; re-authorization is a new grant
	g2, err := svc.Create(context.Background(), patient, clinician, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g2.ID == g.ID {
		t.Error("expected a fresh grant id")
	}

	has, _ := svc.HasActiveGrant(context.Background(), patient, clinician)
	if !has {
		t.Error("expected active grant via the new issue")
	}
}

func TestListByPatient_AppendOrder(t *testing.T) {
	svc := NewService(NewMemRepo())
	patient := uuid.New()
	other := uuid.New()

	svc.Create(context.Background(), patient, uuid.New(), "a")
	svc.Create(context.Background(), other, uuid.New(), "x")
	svc.Create(context.Background(), patient, uuid.New(), "b")

	grants, total, err := svc.ListByPatient(context.Background(), patient, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(grants) != 2 {
		t.Fatalf("expected 2 grants, got total=%d len=%d", total, len(grants))
	}
	if grants[0].PayloadRef != "a" || grants[1].PayloadRef != "b" {
		t.Error("expected grants in creation order")
	}
}
