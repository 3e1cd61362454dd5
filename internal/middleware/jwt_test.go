package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec
}

func TestJWTAuth(t *testing.T) {
	mw := JWTAuth(testSecret)

	t.Run("missing header", func(t *testing.T) {
		if rec := doRequest(t, mw, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if rec := doRequest(t, mw, "Bearer not.a.jwt"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		at, err := utils.NewAccessToken("other-secret", 7, utils.RoleCustomer, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		if rec := doRequest(t, mw, "Bearer "+at.Token); rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token injects claims", func(t *testing.T) {
		at, err := utils.NewAccessToken(testSecret, 7, utils.RoleCustomer, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+at.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		inner := func(c echo.Context) error {
			if uid, _ := c.Get("user_id").(float64); uint64(uid) != 7 {
				t.Errorf("user_id = %v, want 7", c.Get("user_id"))
			}
			if role, _ := c.Get("role").(string); role != utils.RoleCustomer {
				t.Errorf("role = %v, want %s", c.Get("role"), utils.RoleCustomer)
			}
			return c.NoContent(http.StatusOK)
		}
		if err := mw(inner)(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(utils.RoleStaff)

	run := func(role any) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		return rec
	}

	tests := []struct {
		name string
		role any
		want int
	}{
		{"staff allowed", utils.RoleStaff, http.StatusOK},
		{"customer forbidden", utils.RoleCustomer, http.StatusForbidden},
		{"missing role forbidden", nil, http.StatusForbidden},
		{"non-string role forbidden", 42, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := run(tt.role); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
