package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestIssueAndAuthenticate_Bearer(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewTokenIssuer(secret, time.Hour)
	userID := uuid.New()
	depID := uuid.New()

	token, err := issuer.Issue(userID, RoleDepartmentUser, &depID)
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uuid.UUID
	var gotRole, gotDep string
	h := JWTMiddleware(secret)(func(c echo.Context) error {
		gotID, _ = UserUUID(c)
		gotRole = RoleFromContext(c.Request().Context())
		gotDep = DepartmentFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if gotID != userID {
		t.Errorf("user id = %s, want %s", gotID, userID)
	}
	if gotRole != RoleDepartmentUser {
		t.Errorf("role = %q", gotRole)
	}
	if gotDep != depID.String() {
		t.Errorf("department = %q", gotDep)
	}
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewTokenIssuer(secret, time.Hour)
	token, _ := issuer.Issue(uuid.New(), RoleAdmin, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := JWTMiddleware(secret)(okHandler)(c); err != nil {
		t.Fatalf("cookie auth failed: %v", err)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewTokenIssuer(secret, time.Hour)
	good, _ := issuer.Issue(uuid.New(), RoleAdmin, nil)
	expired, _ := NewTokenIssuer(secret, -time.Minute).Issue(uuid.New(), RoleAdmin, nil)
	wrongKey, _ := NewTokenIssuer([]byte("other-secret"), time.Hour).Issue(uuid.New(), RoleAdmin, nil)

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no token", func(r *http.Request) {}},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }},
		{"wrong key", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+wrongKey) }},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", good) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := JWTMiddleware(secret)(okHandler)(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Errorf("got %v, want 401", err)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		userRole string
		allowed  []string
		wantOK   bool
	}{
		{"exact match", RoleDataEntryUser, []string{RoleDataEntryUser}, true},
		{"admin always passes", RoleAdmin, []string{RoleDataEntryUser}, true},
		{"wrong role", RoleDataEntryUser, []string{RoleDepartmentUser}, false},
		{"no identity", "", []string{RoleDepartmentUser}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.userRole != "" {
				ctx := context.WithValue(req.Context(), UserRoleKey, tc.userRole)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(tc.allowed...)(okHandler)(c)
			if tc.wantOK && err != nil {
				t.Errorf("expected pass, got %v", err)
			}
			if !tc.wantOK {
				he, ok := err.(*echo.HTTPError)
				if !ok || he.Code != http.StatusForbidden {
					t.Errorf("got %v, want 403", err)
				}
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleDepartmentUser, RoleDataEntryUser} {
		if !ValidRole(role) {
			t.Errorf("%s should be valid", role)
		}
	}
	if ValidRole("superuser") {
		t.Error("superuser should not be valid")
	}
}
