// Package public serves the unauthenticated read-only surface. Only
// published schedules are visible here; everything else 404s so the
// existence of unpublished data is not leaked.
package public

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dcportal/dcportal/internal/domain/form"
	"github.com/dcportal/dcportal/internal/domain/schedule"
	"github.com/dcportal/dcportal/internal/platform/reporting"
	"github.com/dcportal/dcportal/pkg/pagination"
)

// ScheduleSource exposes the schedule reads the public surface needs.
// schedule.Service satisfies it.
type ScheduleSource interface {
	Get(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*schedule.Schedule, int, error)
	ListForms(ctx context.Context, scheduleID uuid.UUID) ([]*schedule.ScheduleForm, error)
}

// FormSource exposes form metadata. form.Service satisfies it.
type FormSource interface {
	GetForm(ctx context.Context, id uuid.UUID) (*form.Form, error)
}

type Handler struct {
	schedules ScheduleSource
	forms     FormSource
	reports   *reporting.Service
}

func NewHandler(schedules ScheduleSource, forms FormSource, reports *reporting.Service) *Handler {
	return &Handler{schedules: schedules, forms: forms, reports: reports}
}

func (h *Handler) RegisterRoutes(public *echo.Group) {
	public.GET("/schedules", h.ListPublished)
	public.GET("/schedules/:id/forms", h.ListForms)
	public.GET("/reports/:scheduleId/:formId", h.GetReport)
	public.GET("/reports/:scheduleId/:formId/csv", h.GetReportCSV)
	public.GET("/reports/:scheduleId/:formId/pdf", h.GetReportPDF)
}

func (h *Handler) ListPublished(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.schedules.ListByStatus(c.Request().Context(), schedule.StatusPublished, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// publishedSchedule loads a schedule and hides it unless published.
func (h *Handler) publishedSchedule(c echo.Context, id uuid.UUID) (*schedule.Schedule, error) {
	sc, err := h.schedules.Get(c.Request().Context(), id)
	if err != nil || sc.Status != schedule.StatusPublished {
		return nil, echo.NewHTTPError(http.StatusNotFound, "schedule not found")
	}
	return sc, nil
}

type publishedForm struct {
	FormID      uuid.UUID `json:"form_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

func (h *Handler) ListForms(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if _, err := h.publishedSchedule(c, id); err != nil {
		return err
	}
	attached, err := h.schedules.ListForms(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]publishedForm, 0, len(attached))
	for _, sf := range attached {
		f, err := h.forms.GetForm(c.Request().Context(), sf.FormID)
		if err != nil {
			continue
		}
		out = append(out, publishedForm{FormID: f.ID, Name: f.Name, Description: f.Description})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) report(c echo.Context) (*reporting.Report, error) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	formID, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form id")
	}
	if _, err := h.publishedSchedule(c, scheduleID); err != nil {
		return nil, err
	}
	rep, err := h.reports.Build(c.Request().Context(), scheduleID, formID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return rep, nil
}

func (h *Handler) GetReport(c echo.Context) error {
	rep, err := h.report(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) GetReportCSV(c echo.Context) error {
	rep, err := h.report(c)
	if err != nil {
		return err
	}
	return reporting.ServeCSV(c, rep)
}

func (h *Handler) GetReportPDF(c echo.Context) error {
	rep, err := h.report(c)
	if err != nil {
		return err
	}
	return reporting.ServePDF(c, rep)
}
