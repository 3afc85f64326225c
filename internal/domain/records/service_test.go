package records

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/platform/blobstore"
)

func TestAppend_OrderPreserved(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()
	patient, author := uuid.New(), uuid.New()

	for _, note := range []string{"intake", "follow-up", "discharge"} {
		if _, err := svc.Append(ctx, patient, author, note, "", false); err != nil {
			t.Fatalf("Append(%q): %v", note, err)
		}
	}

	recs, total, err := svc.ListByPatient(ctx, patient, 10, 0)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"intake", "follow-up", "discharge"}
	for i, rec := range recs {
		if rec.Content != want[i] {
			t.Errorf("record %d content = %q, want %q", i, rec.Content, want[i])
		}
	}
}

func TestAppend_EmptyRejected(t *testing.T) {
	svc := NewService(NewMemRepo())
	_, err := svc.Append(context.Background(), uuid.New(), uuid.New(), "", "", false)
	if !errors.Is(err, ErrEmptyRecord) {
		t.Fatalf("err = %v, want ErrEmptyRecord", err)
	}
}

func TestAppend_InvalidContentRefRejected(t *testing.T) {
	svc := NewService(NewMemRepo())
	_, err := svc.Append(context.Background(), uuid.New(), uuid.New(), "", "not-a-ref", false)
	if err == nil {
		t.Fatal("expected error for malformed content ref")
	}
}

func TestAppend_EncryptedFlagPersisted(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()
	patient, author := uuid.New(), uuid.New()

	enc, err := svc.Append(ctx, patient, author, "ciphertext", "", true)
	if err != nil {
		t.Fatalf("Append encrypted: %v", err)
	}
	if !enc.Encrypted {
		t.Fatal("encrypted flag not set on returned record")
	}
	plain, err := svc.Append(ctx, patient, author, "plaintext", "", false)
	if err != nil {
		t.Fatalf("Append plain: %v", err)
	}
	if plain.Encrypted {
		t.Fatal("encrypted flag set on plain record")
	}

	got, err := svc.Get(ctx, enc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Encrypted {
		t.Fatal("encrypted flag lost on read back")
	}

	// The flag must survive serialization to API clients.
	body, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out map[string]any
	json.Unmarshal(body, &out)
	if v, ok := out["encrypted"].(bool); !ok || !v {
		t.Fatalf("record JSON missing encrypted=true: %s", body)
	}
}

func TestAppend_BlobRefAccepted(t *testing.T) {
	svc := NewService(NewMemRepo())
	ref := blobstore.Ref([]byte("mri-scan"))

	rec, err := svc.Append(context.Background(), uuid.New(), uuid.New(), "", ref, false)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ContentRef != ref {
		t.Fatalf("content ref = %q, want %q", rec.ContentRef, ref)
	}
}

func TestListByPatient_IsolatedPerPatient(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()
	p1, p2, author := uuid.New(), uuid.New(), uuid.New()

	svc.Append(ctx, p1, author, "a", "", false)
	svc.Append(ctx, p2, author, "b", "", false)
	svc.Append(ctx, p1, author, "c", "", false)

	recs, total, err := svc.ListByPatient(ctx, p1, 10, 0)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if total != 2 || len(recs) != 2 {
		t.Fatalf("total = %d, len = %d, want 2, 2", total, len(recs))
	}
	if recs[0].Content != "a" || recs[1].Content != "c" {
		t.Fatalf("contents = [%q %q], want [a c]", recs[0].Content, recs[1].Content)
	}

	n, _ := svc.CountByPatient(ctx, p2)
	if n != 1 {
		t.Fatalf("p2 count = %d, want 1", n)
	}
}

func TestListByPatient_Pagination(t *testing.T) {
	svc := NewService(NewMemRepo())
	ctx := context.Background()
	patient, author := uuid.New(), uuid.New()

	for i := 0; i < 5; i++ {
		svc.Append(ctx, patient, author, "entry", "", false)
	}

	recs, total, err := svc.ListByPatient(ctx, patient, 2, 4)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if total != 5 || len(recs) != 1 {
		t.Fatalf("total = %d, len = %d, want 5, 1", total, len(recs))
	}

	recs, total, err = svc.ListByPatient(ctx, patient, 2, 10)
	if err != nil {
		t.Fatalf("ListByPatient beyond end: %v", err)
	}
	if total != 5 || len(recs) != 0 {
		t.Fatalf("total = %d, len = %d, want 5, 0", total, len(recs))
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(NewMemRepo())
	if _, err := svc.Get(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
