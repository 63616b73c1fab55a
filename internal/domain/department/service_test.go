package department

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

type mockRepo struct {
	data map[uuid.UUID]*Department
}

func newMockRepo() *mockRepo { return &mockRepo{data: map[uuid.UUID]*Department{}} }

func (m *mockRepo) Create(_ context.Context, d *Department) error {
	d.ID = uuid.New()
	m.data[d.ID] = d
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Department, error) {
	if d, ok := m.data[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockRepo) GetByName(_ context.Context, name string) (*Department, error) {
	for _, d := range m.data {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("not found")
}
func (m *mockRepo) Update(_ context.Context, d *Department) error {
	m.data[d.ID] = d
	return nil
}
func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.data, id)
	return nil
}
func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Department, int, error) {
	var out []*Department
	for _, d := range m.data {
		out = append(out, d)
	}
	return out, len(out), nil
}

func TestService_Create_TrimsName(t *testing.T) {
	svc := NewService(newMockRepo())
	d := &Department{Name: "  Cardiology  "}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if d.Name != "Cardiology" {
		t.Errorf("name = %q", d.Name)
	}
}

func TestService_Create_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &Department{Name: "   "}); err == nil {
		t.Error("blank name should fail")
	}
}

// referencedRepo simulates the FK restrict on form.department_id.
type referencedRepo struct {
	*mockRepo
}

func (r *referencedRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: "form_department_id_fkey"}
}

func TestService_Delete_ReferencedIsErrInUse(t *testing.T) {
	svc := NewService(&referencedRepo{newMockRepo()})
	err := svc.Delete(context.Background(), uuid.New())
	if !errors.Is(err, ErrInUse) {
		t.Fatalf("got %v, want ErrInUse", err)
	}
}

func TestHandler_Delete_ReferencedIs409(t *testing.T) {
	h := NewHandler(NewService(&referencedRepo{newMockRepo()}))
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Delete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("got %v, want 409", err)
	}
}

func TestService_Update(t *testing.T) {
	svc := NewService(newMockRepo())
	d := &Department{Name: "Cardiology"}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	d.Name = "Cardiology & Surgery"
	if err := svc.Update(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Cardiology & Surgery" {
		t.Errorf("name = %q", got.Name)
	}
}
