package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/auth"
)

func ctxWithActor(req *http.Request, actor uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), auth.ActorIDKey, actor)
	return req.WithContext(ctx)
}

func TestHandler_Create(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewService(NewMemRepo()))
	patient := uuid.New()

	body := fmt.Sprintf(`{"clinician_id":%q,"payload_ref":"ref-1"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consents", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = ctxWithActor(req, patient)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var g Grant
	json.Unmarshal(rec.Body.Bytes(), &g)
	if g.PatientID != patient {
		t.Errorf("expected caller as patient, got %s", g.PatientID)
	}
}

func TestHandler_Revoke_Conflict(t *testing.T) {
	e := echo.New()
	svc := NewService(NewMemRepo())
	h := NewHandler(svc)
	patient := uuid.New()
	g, _ := svc.Create(context.Background(), patient, uuid.New(), "")
	svc.Revoke(context.Background(), patient, g.ID)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = ctxWithActor(req, patient)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(g.ID))

	err := h.Revoke(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_Revoke_Forbidden(t *testing.T) {
	e := echo.New()
	svc := NewService(NewMemRepo())
	h := NewHandler(svc)
	g, _ := svc.Create(context.Background(), uuid.New(), uuid.New(), "")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = ctxWithActor(req, uuid.New())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(g.ID))

	err := h.Revoke(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewService(NewMemRepo()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
