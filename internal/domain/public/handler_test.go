package public

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dcportal/dcportal/internal/domain/form"
	"github.com/dcportal/dcportal/internal/domain/schedule"
	"github.com/dcportal/dcportal/internal/domain/submission"
	"github.com/dcportal/dcportal/internal/platform/reporting"
)

type mockSchedules struct {
	byID     map[uuid.UUID]*schedule.Schedule
	attached map[uuid.UUID][]*schedule.ScheduleForm
}

func (m *mockSchedules) Get(_ context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	if sc, ok := m.byID[id]; ok {
		return sc, nil
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockSchedules) ListByStatus(_ context.Context, status string, _, _ int) ([]*schedule.Schedule, int, error) {
	var out []*schedule.Schedule
	for _, sc := range m.byID {
		if sc.Status == status {
			out = append(out, sc)
		}
	}
	return out, len(out), nil
}
func (m *mockSchedules) ListForms(_ context.Context, id uuid.UUID) ([]*schedule.ScheduleForm, error) {
	return m.attached[id], nil
}

type mockForms struct {
	byID map[uuid.UUID]*form.Form
}

func (m *mockForms) GetForm(_ context.Context, id uuid.UUID) (*form.Form, error) {
	if f, ok := m.byID[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockForms) GetFields(_ context.Context, _ uuid.UUID) ([]form.FieldSchema, error) {
	fields := []form.FieldSchema{
		{FieldLabel: "Facility", FieldType: form.FieldText, IsPrimaryColumn: true},
	}
	form.Normalize(fields)
	return fields, nil
}

type fixture struct {
	handler   *Handler
	published *schedule.Schedule
	draft     *schedule.Schedule
	form      *form.Form
}

func newFixture() *fixture {
	published := &schedule.Schedule{ID: uuid.New(), Name: "Q3 2026", Status: schedule.StatusPublished}
	draft := &schedule.Schedule{ID: uuid.New(), Name: "Q4 2026", Status: schedule.StatusOpen}
	f := &form.Form{ID: uuid.New(), Name: "Facility Staffing"}

	schedules := &mockSchedules{
		byID: map[uuid.UUID]*schedule.Schedule{published.ID: published, draft.ID: draft},
		attached: map[uuid.UUID][]*schedule.ScheduleForm{
			published.ID: {{ScheduleID: published.ID, FormID: f.ID}},
		},
	}
	forms := &mockForms{byID: map[uuid.UUID]*form.Form{f.ID: f}}
	reports := reporting.NewService(forms, schedules, emptyRows{})
	return &fixture{
		handler:   NewHandler(schedules, forms, reports),
		published: published,
		draft:     draft,
		form:      f,
	}
}

type emptyRows struct{}

func (emptyRows) Rows(_ context.Context, _, _ uuid.UUID) ([]*submission.Submission, error) {
	return nil, nil
}

func TestListPublished_HidesUnpublished(t *testing.T) {
	fx := newFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/public/schedules", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fx.handler.ListPublished(c); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Data  []schedule.Schedule `json:"data"`
		Total int                 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("got %d schedules, want only the published one", resp.Total)
	}
	if resp.Data[0].ID != fx.published.ID {
		t.Error("wrong schedule listed")
	}
}

func TestListForms_UnpublishedIs404(t *testing.T) {
	fx := newFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fx.draft.ID.String())

	err := fx.handler.ListForms(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("got %v, want 404", err)
	}
}

func TestListForms_Published(t *testing.T) {
	fx := newFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fx.published.ID.String())

	if err := fx.handler.ListForms(c); err != nil {
		t.Fatal(err)
	}
	var out []publishedForm
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Name != "Facility Staffing" {
		t.Fatalf("forms = %+v", out)
	}
}

func TestGetReport_UnpublishedIs404(t *testing.T) {
	fx := newFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("scheduleId", "formId")
	c.SetParamValues(fx.draft.ID.String(), fx.form.ID.String())

	err := fx.handler.GetReport(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("got %v, want 404", err)
	}
}

func TestGetReport_Published(t *testing.T) {
	fx := newFixture()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("scheduleId", "formId")
	c.SetParamValues(fx.published.ID.String(), fx.form.ID.String())

	if err := fx.handler.GetReport(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
