package blobstore

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()

	ref, err := s.Put(context.Background(), []byte("encrypted payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ValidRef(ref) {
		t.Errorf("expected a valid ref, got %q", ref)
	}

	got, err := s.Get(context.Background(), ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("encrypted payload")) {
		t.Error("content mismatch")
	}
}

func TestMemoryStore_Deterministic(t *testing.T) {
	s := NewMemoryStore()

	ref1, _ := s.Put(context.Background(), []byte("same bytes"))
	ref2, _ := s.Put(context.Background(), []byte("same bytes"))
	if ref1 != ref2 {
		t.Errorf("expected identical refs, got %s and %s", ref1, ref2)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 stored blob, got %d", s.Len())
	}
}

func TestMemoryStore_Empty(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Put(context.Background(), nil); !errors.Is(err, ErrEmptyBlob) {
		t.Errorf("expected ErrEmptyBlob, got %v", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ref := Ref([]byte("never stored"))
	if _, err := s.Get(context.Background(), ref); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_InvalidRef(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "short"); !errors.Is(err, ErrInvalidRef) {
		t.Errorf("expected ErrInvalidRef, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ref, _ := s.Put(context.Background(), []byte("immutable"))

	got, _ := s.Get(context.Background(), ref)
	got[0] = 'X'

	again, _ := s.Get(context.Background(), ref)
	if again[0] != 'i' {
		t.Error("stored content was mutated through a returned slice")
	}
}

func TestHandler_UploadDownload(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blobs", strings.NewReader("payload"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	ref := Ref([]byte("payload"))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("ref")
	c.SetParamValues(ref)
	if err := h.Download(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "payload" {
		t.Errorf("expected payload back, got %q", rec.Body.String())
	}
}

func TestHandler_UploadEmpty(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blobs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
