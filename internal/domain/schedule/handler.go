package schedule

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dcportal/dcportal/internal/platform/auth"
	"github.com/dcportal/dcportal/pkg/pagination"
)

// SubmissionCounter reports how many rows a user has submitted for a
// schedule+form pair. submission.Service satisfies it.
type SubmissionCounter interface {
	CountForUser(ctx context.Context, scheduleID, formID, userID uuid.UUID) (int, error)
}

type Handler struct {
	svc  *Service
	subs SubmissionCounter
}

func NewHandler(svc *Service, subs SubmissionCounter) *Handler {
	return &Handler{svc: svc, subs: subs}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDepartmentUser, auth.RoleDataEntryUser))
	read.GET("/schedules", h.List)
	read.GET("/schedules/:id", h.Get)
	read.GET("/schedules/:id/forms", h.ListForms)
	read.GET("/schedules/:id/forms/:formId/completions", h.ListCompletions)
	read.POST("/schedules/:id/forms/:formId/complete", h.MarkComplete)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/schedules", h.Create)
	admin.PUT("/schedules/:id", h.Update)
	admin.DELETE("/schedules/:id", h.Delete)
	admin.POST("/schedules/:id/transition", h.Transition)
	admin.POST("/schedules/:id/forms", h.AddForm)
	admin.DELETE("/schedules/:id/forms/:formId", h.RemoveForm)
}

func (h *Handler) Create(c echo.Context) error {
	var sc Schedule
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "schedule not found")
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sc Schedule
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sc.ID = id
	if err := h.svc.Update(c.Request().Context(), &sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	if status := c.QueryParam("status"); status != "" {
		items, total, err := h.svc.ListByStatus(c.Request().Context(), status, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sc, err := h.svc.Transition(c.Request().Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) AddForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sf ScheduleForm
	if err := c.Bind(&sf); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sf.ScheduleID = id
	if err := h.svc.AddForm(c.Request().Context(), &sf); err != nil {
		if errors.Is(err, ErrScheduleLocked) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sf)
}

func (h *Handler) RemoveForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	formID, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form id")
	}
	if err := h.svc.RemoveForm(c.Request().Context(), id, formID); err != nil {
		if errors.Is(err, ErrScheduleLocked) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListForms(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	forms, err := h.svc.ListForms(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if forms == nil {
		forms = []*ScheduleForm{}
	}
	return c.JSON(http.StatusOK, forms)
}

func (h *Handler) MarkComplete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	formID, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form id")
	}
	userID, ok := auth.UserUUID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	comp, err := h.svc.MarkComplete(c.Request().Context(), id, formID, userID)
	if err != nil {
		if errors.Is(err, ErrAlreadyComplete) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// zero is a valid count: completing with no rows means "nothing to report"
	count, err := h.subs.CountForUser(c.Request().Context(), id, formID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, completionResponse{Completion: comp, SubmissionCount: count})
}

type completionResponse struct {
	*Completion
	SubmissionCount int `json:"submission_count"`
}

func (h *Handler) ListCompletions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	formID, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form id")
	}
	list, count, err := h.svc.Completions(c.Request().Context(), id, formID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "form is not attached to this schedule")
	}
	if list == nil {
		list = []*Completion{}
	}
	return c.JSON(http.StatusOK, map[string]any{"count": count, "completions": list})
}
