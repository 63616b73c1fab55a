package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dcportal/dcportal/internal/domain/form"
)

type mockRepo struct {
	rows []*Submission
}

func (m *mockRepo) Create(_ context.Context, s *Submission) error {
	s.ID = uuid.New()
	s.SubmittedAt = time.Now()
	m.rows = append(m.rows, s)
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Submission, error) {
	for _, s := range m.rows {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockRepo) ListByScheduleForm(_ context.Context, scheduleID, formID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	var out []*Submission
	for _, s := range m.rows {
		if s.ScheduleID == scheduleID && s.FormID == formID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}
func (m *mockRepo) ListByUser(_ context.Context, scheduleID, formID, userID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	var out []*Submission
	for _, s := range m.rows {
		if s.ScheduleID == scheduleID && s.FormID == formID && s.SubmittedBy == userID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}
func (m *mockRepo) AllRows(_ context.Context, scheduleID, formID uuid.UUID) ([]*Submission, error) {
	out, _, _ := m.ListByScheduleForm(nil, scheduleID, formID, 0, 0)
	return out, nil
}
func (m *mockRepo) DistinctValues(_ context.Context, scheduleID, formID uuid.UUID, key string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range m.rows {
		if s.ScheduleID != scheduleID || s.FormID != formID {
			continue
		}
		v := form.CellString(s.Data[key])
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

type mockForms struct{ fields []form.FieldSchema }

func (m *mockForms) GetFields(_ context.Context, _ uuid.UUID) ([]form.FieldSchema, error) {
	return m.fields, nil
}

type mockSchedules struct {
	status   string
	attached bool
}

func (m *mockSchedules) Status(_ context.Context, _ uuid.UUID) (string, error) {
	return m.status, nil
}
func (m *mockSchedules) FormAttached(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.attached, nil
}

type mockCompletions struct{ done map[uuid.UUID]bool }

func (m *mockCompletions) IsComplete(_ context.Context, _, _, userID uuid.UUID) (bool, error) {
	return m.done[userID], nil
}

func entryFields() []form.FieldSchema {
	fields := []form.FieldSchema{
		{FieldLabel: "Facility", FieldType: form.FieldText, IsPrimaryColumn: true, IsRequired: true},
		{FieldLabel: "Male", FieldType: form.FieldNumber},
		{FieldLabel: "Female", FieldType: form.FieldNumber},
		{FieldLabel: "Total", FieldType: form.FieldAggregate, AggregateFields: []string{"male", "female"}},
	}
	form.Normalize(fields)
	return fields
}

func newTestService() (*Service, *mockRepo, *mockSchedules, *mockCompletions) {
	repo := &mockRepo{}
	sched := &mockSchedules{status: "collection", attached: true}
	comps := &mockCompletions{done: map[uuid.UUID]bool{}}
	svc := NewService(repo, &mockForms{fields: entryFields()}, sched, comps)
	return svc, repo, sched, comps
}

func TestService_Submit_AppendsRows(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	scheduleID, formID, userID := uuid.New(), uuid.New(), uuid.New()

	// submitting N times yields N rows; nothing is overwritten
	for i := 1; i <= 3; i++ {
		_, err := svc.Submit(ctx, scheduleID, formID, userID, map[string]any{
			"facility": fmt.Sprintf("Clinic %d", i), "male": "1", "female": "2",
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if len(repo.rows) != 3 {
		t.Errorf("stored %d rows, want 3", len(repo.rows))
	}
}

func TestService_CountForUser(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	scheduleID, formID, userID := uuid.New(), uuid.New(), uuid.New()

	for i := 1; i <= 2; i++ {
		if _, err := svc.Submit(ctx, scheduleID, formID, userID, map[string]any{
			"facility": fmt.Sprintf("Clinic %d", i),
		}); err != nil {
			t.Fatal(err)
		}
	}
	count, err := svc.CountForUser(ctx, scheduleID, formID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	count, err = svc.CountForUser(ctx, scheduleID, formID, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("other user count = %d, want 0", count)
	}
}

func TestService_Submit_RejectsReusedPrimaryValue(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	scheduleID, formID := uuid.New(), uuid.New()

	if _, err := svc.Submit(ctx, scheduleID, formID, uuid.New(), map[string]any{
		"facility": "Clinic A", "male": "1",
	}); err != nil {
		t.Fatal(err)
	}
	// same primary value, even from another user, is a conflict
	_, err := svc.Submit(ctx, scheduleID, formID, uuid.New(), map[string]any{
		"facility": "Clinic A", "male": "5",
	})
	if !errors.Is(err, ErrPrimaryValueUsed) {
		t.Fatalf("got %v, want ErrPrimaryValueUsed", err)
	}
	if len(repo.rows) != 1 {
		t.Errorf("stored %d rows, want 1", len(repo.rows))
	}

	// a different schedule starts fresh
	if _, err := svc.Submit(ctx, uuid.New(), formID, uuid.New(), map[string]any{
		"facility": "Clinic A",
	}); err != nil {
		t.Errorf("other schedule should accept the value: %v", err)
	}
}

func TestService_Submit_RecomputesAggregates(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), map[string]any{
		"facility": "Clinic A", "male": "3", "female": "4", "total": "999",
	})
	if err != nil {
		t.Fatal(err)
	}
	if repo.rows[0].Data["total"] != "7" {
		t.Errorf("total = %v, want server-computed 7", repo.rows[0].Data["total"])
	}
}

func TestService_Submit_DropsUnknownKeys(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), map[string]any{
		"facility": "Clinic A", "bogus_key": "x",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.rows[0].Data["bogus_key"]; ok {
		t.Error("unknown key should be dropped")
	}
}

func TestService_Submit_RequiredValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), map[string]any{
		"male": "1",
	})
	if err == nil || !strings.Contains(err.Error(), "Facility") {
		t.Errorf("missing required field should name its label, got %v", err)
	}
}

func TestService_Submit_RequiredSkipsGroupingNodes(t *testing.T) {
	fields := []form.FieldSchema{{
		FieldLabel: "Staff", FieldType: form.FieldText,
		IsRequired: true, IsSecondaryColumn: true, HasSubHeaders: true,
		SubHeaders: []form.SubHeader{{
			Label: "Doctors",
			Fields: []form.FieldSchema{
				{FieldLabel: "Male", FieldType: form.FieldNumber, IsRequired: true},
			},
		}},
	}}
	form.Normalize(fields)
	svc := NewService(&mockRepo{}, &mockForms{fields: fields},
		&mockSchedules{status: "collection", attached: true},
		&mockCompletions{done: map[uuid.UUID]bool{}})

	// the grouping node itself holds no value; only its leaf is required
	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), map[string]any{
		"field_staff_doctors_male": "5",
	})
	if err != nil {
		t.Errorf("grouping node must not be required directly: %v", err)
	}
}

func TestService_Submit_Gates(t *testing.T) {
	svc, _, sched, comps := newTestService()
	ctx := context.Background()
	userID := uuid.New()
	data := map[string]any{"facility": "Clinic A"}

	sched.status = "open"
	if _, err := svc.Submit(ctx, uuid.New(), uuid.New(), userID, data); !errors.Is(err, ErrNotCollecting) {
		t.Errorf("open schedule: got %v, want ErrNotCollecting", err)
	}
	sched.status = "published"
	if _, err := svc.Submit(ctx, uuid.New(), uuid.New(), userID, data); !errors.Is(err, ErrNotCollecting) {
		t.Errorf("published schedule: got %v, want ErrNotCollecting", err)
	}

	sched.status = "collection"
	sched.attached = false
	if _, err := svc.Submit(ctx, uuid.New(), uuid.New(), userID, data); !errors.Is(err, ErrNotAttached) {
		t.Errorf("detached form: got %v, want ErrNotAttached", err)
	}

	sched.attached = true
	comps.done[userID] = true
	if _, err := svc.Submit(ctx, uuid.New(), uuid.New(), userID, data); !errors.Is(err, ErrFormCompleted) {
		t.Errorf("completed form: got %v, want ErrFormCompleted", err)
	}
}

func TestService_UsedPrimaryValues(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	scheduleID, formID := uuid.New(), uuid.New()

	for _, name := range []string{"Clinic A", "Clinic B", "Clinic A"} {
		if _, err := svc.Submit(ctx, scheduleID, formID, uuid.New(), map[string]any{"facility": name}); err != nil {
			t.Fatal(err)
		}
	}
	values, err := svc.UsedPrimaryValues(ctx, scheduleID, formID)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 {
		t.Errorf("got %v, want 2 distinct values", values)
	}
}
