package registry

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/pkg/pagination"
)

// Handler exposes the registry's read surface. Mutations (approve, revoke)
// go through the care platform, which holds the steward capability.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/clinicians", h.List)
	api.GET("/clinicians/verified", h.ListVerified)
	api.GET("/clinicians/:id", h.Details)
	api.GET("/clinicians/:id/verified", h.IsVerified)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	clinicians, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(clinicians, total, p.Limit, p.Offset))
}

func (h *Handler) ListVerified(c echo.Context) error {
	ids, err := h.svc.ListVerified(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"verified": ids})
}

func (h *Handler) Details(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	clinician, err := h.svc.Details(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, clinician)
}

func (h *Handler) IsVerified(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	verified, err := h.svc.IsVerified(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"verified": verified})
}
