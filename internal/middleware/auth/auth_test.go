package authmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/campusflow/internal/domain"
)

type fakeAuth map[string]*domain.Identity

var errStoreDown = errors.New("store down")

func (f fakeAuth) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	if token == "boom" {
		return nil, errStoreDown
	}
	id, ok := f[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return id, nil
}

func newServer(gate domain.Gate) *echo.Echo {
	auth := fakeAuth{
		"admin":     {Username: "root", Role: domain.RoleAdmin},
		"student":   {Username: "stud", Role: domain.RoleStudent},
		"professor": {Username: "prof", Role: domain.RoleProfessor},
		"disabled":  {Username: "gone", Role: domain.RoleAdmin, Disabled: true},
	}

	e := echo.New()
	g := e.Group("", Bearer(auth), Require(gate))
	g.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, IdentityFrom(c).Username)
	})
	return e
}

func do(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerAndRequire(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		gate     domain.Gate
		header   string
		wantCode int
		wantBody string
	}{
		{"admin passes admin gate", domain.RequireAdmin, "Bearer admin", http.StatusOK, "root"},
		{"student hits admin gate", domain.RequireAdmin, "Bearer student", http.StatusForbidden, "Not enough permissions"},
		{"professor passes admin or professor", domain.RequireAdminOrProfessor, "Bearer professor", http.StatusOK, "prof"},
		{"student passes active", domain.RequireActive, "Bearer student", http.StatusOK, "stud"},
		{"disabled admin stops at active", domain.RequireAdmin, "Bearer disabled", http.StatusUnauthorized, "Could not validate credentials"},
		{"missing header", domain.RequireActive, "", http.StatusUnauthorized, "Could not validate credentials"},
		{"wrong scheme", domain.RequireActive, "Basic admin", http.StatusUnauthorized, "Could not validate credentials"},
		{"unknown token", domain.RequireActive, "Bearer nope", http.StatusUnauthorized, "Could not validate credentials"},
		{"store failure", domain.RequireActive, "Bearer boom", http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := do(newServer(tc.gate), tc.header)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
			if tc.wantCode == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
			} else {
				assert.Empty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
			}
		})
	}
}

func TestRequire_WithoutIdentity(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Require(domain.RequireActive)(func(c echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestReject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrInactiveAccount, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		var he *echo.HTTPError
		require.ErrorAs(t, Reject(c, tc.err), &he)
		assert.Equal(t, tc.code, he.Code, tc.err.Error())
	}
}

func TestRequire_IdentitySetOnContext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		id   *domain.Identity
		gate domain.Gate
		want int
	}{
		{"professor through staff gate", &domain.Identity{Username: "p", Role: domain.RoleProfessor}, domain.RequireAdminOrProfessor, http.StatusOK},
		{"student through professor gate", &domain.Identity{Username: "s", Role: domain.RoleStudent}, domain.RequireProfessor, http.StatusForbidden},
		{"student through student gate", &domain.Identity{Username: "s", Role: domain.RoleStudent}, domain.RequireStudent, http.StatusOK},
		{"disabled student", &domain.Identity{Username: "s", Role: domain.RoleStudent, Disabled: true}, domain.RequireStudent, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			WithIdentity(c, tc.id)
			require.Same(t, tc.id, IdentityFrom(c))

			err := Require(tc.gate)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)
			if tc.want == http.StatusOK {
				require.NoError(t, err)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tc.want, he.Code)
		})
	}
}
