package submission

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dcportal/dcportal/internal/platform/auth"
	"github.com/dcportal/dcportal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDepartmentUser, auth.RoleDataEntryUser))
	g.POST("/schedules/:id/forms/:formId/submissions", h.Submit)
	g.GET("/schedules/:id/forms/:formId/submissions", h.List)
	g.GET("/schedules/:id/forms/:formId/used-values", h.UsedPrimaryValues)
}

func (h *Handler) Submit(c echo.Context) error {
	scheduleID, formID, httpErr := pathIDs(c)
	if httpErr != nil {
		return httpErr
	}
	userID, ok := auth.UserUUID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	var data map[string]any
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sub, err := h.svc.Submit(c.Request().Context(), scheduleID, formID, userID, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotCollecting), errors.Is(err, ErrFormCompleted), errors.Is(err, ErrPrimaryValueUsed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNotAttached):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *Handler) List(c echo.Context) error {
	scheduleID, formID, httpErr := pathIDs(c)
	if httpErr != nil {
		return httpErr
	}
	pg := pagination.FromContext(c)

	if c.QueryParam("mine") == "true" {
		userID, ok := auth.UserUUID(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "no session")
		}
		items, total, err := h.svc.ListMine(c.Request().Context(), scheduleID, formID, userID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.List(c.Request().Context(), scheduleID, formID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UsedPrimaryValues(c echo.Context) error {
	scheduleID, formID, httpErr := pathIDs(c)
	if httpErr != nil {
		return httpErr
	}
	values, err := h.svc.UsedPrimaryValues(c.Request().Context(), scheduleID, formID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if values == nil {
		values = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"values": values})
}

func pathIDs(c echo.Context) (uuid.UUID, uuid.UUID, *echo.HTTPError) {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	formID, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form id")
	}
	return scheduleID, formID, nil
}
