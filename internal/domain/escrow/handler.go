package escrow

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/auth"
	"github.com/careledger/careledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Book)
	api.GET("/appointments", h.ListMine)
	api.GET("/appointments/next-id", h.NextID)
	api.GET("/appointments/:id", h.Get)
	api.GET("/appointments/:id/transfers", h.Transfers)
	api.POST("/appointments/:id/confirm", h.action((*Service).Confirm))
	api.POST("/appointments/:id/complete", h.action((*Service).Complete))
	api.POST("/appointments/:id/dispute", h.action((*Service).Dispute))
	api.POST("/appointments/:id/cancel-by-patient", h.action((*Service).CancelByPatient))
	api.POST("/appointments/:id/cancel-by-clinician", h.action((*Service).CancelByClinician))
	api.GET("/escrow/balance", h.EscrowBalance)
	api.GET("/balances/:party", h.BalanceOf)
}

type bookRequest struct {
	ClinicianID uuid.UUID `json:"clinician_id"`
	Amount      uint64    `json:"amount"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patient := auth.ActorFromContext(c.Request().Context())
	appt, err := h.svc.Book(c.Request().Context(), patient, req.ClinicianID, req.Amount)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, appt)
}

// action adapts the uniform transition methods into one echo handler shape.
func (h *Handler) action(fn func(*Service, context.Context, uuid.UUID, uint64) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
		}
		actor := auth.ActorFromContext(c.Request().Context())
		if err := fn(h.svc, c.Request().Context(), actor, id); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				return echo.NewHTTPError(http.StatusNotFound, err.Error())
			case errors.Is(err, ErrUnauthorized):
				return echo.NewHTTPError(http.StatusForbidden, err.Error())
			case errors.Is(err, ErrInvalidState):
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	appt, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) NextID(c echo.Context) error {
	next, err := h.svc.NextID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]uint64{"next_id": next})
}

func (h *Handler) ListMine(c echo.Context) error {
	p := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	appts, total, err := h.svc.ListMine(c.Request().Context(), actor, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, p.Limit, p.Offset))
}

func (h *Handler) Transfers(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	transfers, err := h.svc.Transfers(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, transfers)
}

func (h *Handler) EscrowBalance(c echo.Context) error {
	balance, err := h.svc.EscrowBalance(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]uint64{"balance": balance})
}

func (h *Handler) BalanceOf(c echo.Context) error {
	party, err := uuid.Parse(c.Param("party"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid party id")
	}
	balance, err := h.svc.BalanceOf(c.Request().Context(), party)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]uint64{"balance": balance})
}
