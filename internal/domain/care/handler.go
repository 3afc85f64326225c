package care

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/domain/registry"
	"github.com/careledger/careledger/internal/platform/auth"
	"github.com/careledger/careledger/pkg/pagination"
)

type Handler struct {
	platform *Platform
}

func NewHandler(platform *Platform) *Handler {
	return &Handler{platform: platform}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/clinicians", h.ApproveClinician)
	api.POST("/clinicians/:id/revoke", h.RevokeClinician)
	api.POST("/patients/register", h.RegisterPatient)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id/registered", h.IsRegistered)
	api.POST("/patients/:id/records", h.AddRecord)
	api.GET("/patients/:id/records", h.ViewRecords)
	api.GET("/records/mine", h.MyRecords)
	api.POST("/admin/transfer", h.TransferAdmin)
}

type approveRequest struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	ProfileRef     string    `json:"profile_ref"`
}

func (h *Handler) ApproveClinician(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	clin := &registry.Clinician{
		ID:             req.ID,
		Name:           req.Name,
		Specialization: req.Specialization,
		ProfileRef:     req.ProfileRef,
	}
	err := h.platform.ApproveClinician(c.Request().Context(), actor, clin)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized), errors.Is(err, registry.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, registry.ErrAlreadyVerified):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, clin)
}

func (h *Handler) RevokeClinician(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinician id")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.platform.RevokeClinician(c.Request().Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized), errors.Is(err, registry.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, registry.ErrNotCurrentlyVerified):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type registerPatientRequest struct {
	Name string `json:"name"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req registerPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	reg, err := h.platform.RegisterPatient(c.Request().Context(), actor, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRegistered):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, reg)
}

func (h *Handler) ListPatients(c echo.Context) error {
	p := pagination.FromContext(c)
	regs, total, err := h.platform.ListPatients(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(regs, total, p.Limit, p.Offset))
}

func (h *Handler) IsRegistered(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	registered, err := h.platform.IsRegistered(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"registered": registered})
}

type addRecordRequest struct {
	Content    string `json:"content"`
	ContentRef string `json:"content_ref"`
	Encrypted  bool   `json:"encrypted"`
}

func (h *Handler) AddRecord(c echo.Context) error {
	patient, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req addRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author := auth.ActorFromContext(c.Request().Context())
	rec, err := h.platform.AddRecordForPatient(c.Request().Context(), author, patient, req.Content, req.ContentRef, req.Encrypted)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotRegistered):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ViewRecords(c echo.Context) error {
	patient, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	recs, total, err := h.platform.ViewRecords(c.Request().Context(), actor, patient, p.Limit, p.Offset)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, p.Limit, p.Offset))
}

func (h *Handler) MyRecords(c echo.Context) error {
	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	recs, total, err := h.platform.ViewRecords(c.Request().Context(), actor, actor, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, p.Limit, p.Offset))
}

type transferAdminRequest struct {
	To uuid.UUID `json:"to"`
}

func (h *Handler) TransferAdmin(c echo.Context) error {
	var req transferAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorFromContext(c.Request().Context())
	if err := h.platform.TransferAdmin(actor, req.To); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
