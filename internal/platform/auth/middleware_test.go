package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func signToken(t *testing.T, subject string, key []byte) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"clinician"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runMiddleware(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, uuid.UUID, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var actor uuid.UUID
	h := mw(func(c echo.Context) error {
		actor = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	return rec, actor, err
}

func TestMiddleware_ValidToken(t *testing.T) {
	subject := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, subject.String(), testKey))

	_, actor, err := runMiddleware(Middleware(Config{SigningKey: testKey}), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor != subject {
		t.Errorf("expected actor %s, got %s", subject, actor)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, _, err := runMiddleware(Middleware(Config{SigningKey: testKey}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddleware_WrongKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New().String(), []byte("ffffffffffffffffffffffffffffffff")))

	_, _, err := runMiddleware(Middleware(Config{SigningKey: testKey}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddleware_NonUUIDSubject(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice", testKey))

	_, _, err := runMiddleware(Middleware(Config{SigningKey: testKey}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestDevMiddleware_DefaultActor(t *testing.T) {
	def := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, actor, err := runMiddleware(DevMiddleware(def), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor != def {
		t.Errorf("expected default actor, got %s", actor)
	}
}

func TestDevMiddleware_DebugHeaderOverride(t *testing.T) {
	other := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-Actor", other.String())

	_, actor, err := runMiddleware(DevMiddleware(uuid.New()), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor != other {
		t.Errorf("expected override actor, got %s", actor)
	}
}

func TestActorFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ActorFromContext(req.Context()); got != uuid.Nil {
		t.Errorf("expected uuid.Nil, got %s", got)
	}
}
