package reporting

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dcportal/dcportal/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the authenticated report endpoints. Authenticated
// users can preview reports in any schedule status; the public package
// exposes the published-only variants.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDepartmentUser, auth.RoleDataEntryUser))
	g.GET("/reports/:scheduleId/:formId", h.GetReport)
	g.GET("/reports/:scheduleId/:formId/csv", h.GetReportCSV)
	g.GET("/reports/:scheduleId/:formId/pdf", h.GetReportPDF)
}

func (h *Handler) report(c echo.Context) (*Report, error) {
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	formID, err := uuid.Parse(c.Param("formId"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form id")
	}
	rep, err := h.svc.Build(c.Request().Context(), scheduleID, formID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
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
	return ServeCSV(c, rep)
}

func (h *Handler) GetReportPDF(c echo.Context) error {
	rep, err := h.report(c)
	if err != nil {
		return err
	}
	return ServePDF(c, rep)
}

// ServeCSV writes a report as a CSV download. Shared with the public
// endpoints.
func ServeCSV(c echo.Context, rep *Report) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rep); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render csv")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, exportFilename(rep, "csv")))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ServePDF writes a report as a PDF download. Shared with the public
// endpoints.
func ServePDF(c echo.Context, rep *Report) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, rep); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render pdf")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, exportFilename(rep, "pdf")))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func exportFilename(rep *Report, ext string) string {
	return fmt.Sprintf("%s-%s.%s", slugify(rep.Form.Name), slugify(rep.Schedule.Name), ext)
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '-', r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
