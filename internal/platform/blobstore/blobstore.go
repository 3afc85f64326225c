// Package blobstore is the content-addressed store that holds encrypted
// record payloads and profile metadata. Callers receive an opaque content
// reference (the sha256 of the bytes) and the core never interprets the
// payload itself; clients encrypt before uploading.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrTooLarge   = errors.New("blob exceeds maximum allowed size")
	ErrEmptyBlob  = errors.New("blob is empty")
	ErrInvalidRef = errors.New("invalid content reference")
)

// MaxBlobSize caps uploads at 25 MB.
const MaxBlobSize = 25 * 1024 * 1024

// refLen is the length of a hex-encoded sha256 digest.
const refLen = 64

// Store is the content-addressed contract consumed by external collaborators:
// Put returns a deterministic reference for the bytes, Get resolves it.
type Store interface {
	Put(ctx context.Context, content []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Has(ctx context.Context, ref string) (bool, error)
}

// Ref computes the content reference for a byte slice.
func Ref(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ValidRef reports whether ref is shaped like a content reference.
func ValidRef(ref string) bool {
	if len(ref) != refLen {
		return false
	}
	_, err := hex.DecodeString(ref)
	return err == nil
}

type storedBlob struct {
	content   []byte
	createdAt time.Time
}

// MemoryStore is the in-process implementation. Storing the same bytes twice
// is a no-op that returns the same reference.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]storedBlob)}
}

func (s *MemoryStore) Put(_ context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyBlob
	}
	if len(content) > MaxBlobSize {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(content))
	}

	ref := Ref(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		buf := make([]byte, len(content))
		copy(buf, content)
		s.blobs[ref] = storedBlob{content: buf, createdAt: time.Now()}
	}
	return ref, nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) ([]byte, error) {
	if !ValidRef(ref) {
		return nil, ErrInvalidRef
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	out := make([]byte, len(b.content))
	copy(out, b.content)
	return out, nil
}

func (s *MemoryStore) Has(_ context.Context, ref string) (bool, error) {
	if !ValidRef(ref) {
		return false, ErrInvalidRef
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[ref]
	return ok, nil
}

// Len returns the number of distinct blobs held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Handler exposes the store over HTTP for the UI/wallet collaborators.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/blobs", h.Upload)
	api.GET("/blobs/:ref", h.Download)
}

func (h *Handler) Upload(c echo.Context) error {
	content, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxBlobSize+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read body")
	}
	ref, err := h.store.Put(c.Request().Context(), content)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, ErrEmptyBlob):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"ref": ref})
}

func (h *Handler) Download(c echo.Context) error {
	ref := c.Param("ref")
	content, err := h.store.Get(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, ErrInvalidRef) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid content reference")
		}
		return echo.NewHTTPError(http.StatusNotFound, "blob not found")
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, content)
}
