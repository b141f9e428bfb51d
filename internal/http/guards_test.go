package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
)

// stubSessionSource maps tokens to snapshots.
type stubSessionSource struct {
	snapshots map[string]domainauth.Snapshot
}

func (s *stubSessionSource) Snapshot(_ context.Context, token string) domainauth.Snapshot {
	return s.snapshots[token]
}

func guardedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipalFromContext(r.Context())
		require.True(t, ok, "guarded handler must see the principal")
		w.Header().Set("X-UID", principal.UID)
		w.WriteHeader(http.StatusOK)
	})
}

func approvedOperator() domainauth.Snapshot {
	return domainauth.Snapshot{Principal: &domainauth.Principal{
		UID:   "op-1",
		Email: "op@example.com",
		Role:  domainauth.RoleOperator,
		Operator: &domainauth.OperatorDetails{
			CompanyName: "Hill Lines",
			Approved:    true,
		},
	}}
}

func pendingOperator() domainauth.Snapshot {
	snap := approvedOperator()
	snap.Principal.Operator.Approved = false
	return snap
}

func rider() domainauth.Snapshot {
	return domainauth.Snapshot{Principal: &domainauth.Principal{
		UID:   "rider-1",
		Email: "rider@example.com",
		Role:  domainauth.RoleUser,
	}}
}

func TestGuard_ApprovedOperatorRequirement(t *testing.T) {
	sessions := &stubSessionSource{snapshots: map[string]domainauth.Snapshot{
		"tok-approved": approvedOperator(),
		"tok-pending":  pendingOperator(),
		"tok-rider":    rider(),
		"tok-loading":  {Loading: true},
	}}
	guard := Guard(GuardConfig{Sessions: sessions, Cookies: CookieWriter{}, Renderer: testRenderer(t)}, RequireApprovedOperator())
	handler := guard(guardedEcho(t))

	serve := func(t *testing.T, token string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/operator/counter/bookings", nil)
		if token != "" {
			r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
		}
		handler.ServeHTTP(rec, r)
		return rec
	}

	t.Run("approved operator is served with the principal in context", func(t *testing.T) {
		rec := serve(t, "tok-approved")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "op-1", rec.Header().Get("X-UID"))
	})

	t.Run("pending operator lands on the approval page", func(t *testing.T) {
		rec := serve(t, "tok-pending")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/operator/pending-approval", rec.Header().Get("Location"))
	})

	t.Run("wrong role lands on unauthorized", func(t *testing.T) {
		rec := serve(t, "tok-rider")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
	})

	t.Run("no session redirects to the operator login with redirect param", func(t *testing.T) {
		rec := serve(t, "")
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/operator/login", loc.Path)
		assert.Equal(t, "/operator/counter/bookings", loc.Query().Get("redirect"))
	})

	t.Run("invalid token behaves exactly like no session", func(t *testing.T) {
		// An unknown token resolves to the zero snapshot: fail closed.
		rec := serve(t, "tok-forged")
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/operator/login", loc.Path)
	})

	t.Run("loading renders the indicator in place, no navigation", func(t *testing.T) {
		rec := serve(t, "tok-loading")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		// The indicator polls the session endpoint and reloads into the URL
		// the visitor asked for.
		assert.Contains(t, rec.Body.String(), `data-redirect="/operator/counter/bookings"`)
	})
}

func TestGuard_LoginTargets(t *testing.T) {
	sessions := &stubSessionSource{snapshots: map[string]domainauth.Snapshot{}}

	tests := []struct {
		name string
		req  Requirement
		want string
	}{
		{"no role requirement", Requirement{}, "/login"},
		{"user role", RequireRole(domainauth.RoleUser), "/login"},
		{"operator role", RequireRole(domainauth.RoleOperator), "/operator/login"},
		{"admin role", RequireRole(domainauth.RoleAdmin), "/admin/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := Guard(GuardConfig{Sessions: sessions, Cookies: CookieWriter{}}, tt.req)
			rec := httptest.NewRecorder()
			guard(guardedEcho(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/somewhere", nil))

			require.Equal(t, http.StatusFound, rec.Code)
			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.Path)
		})
	}
}

func TestGuard_AdminRequirement(t *testing.T) {
	admin := domainauth.Snapshot{Principal: &domainauth.Principal{
		UID:  "admin-1",
		Role: domainauth.RoleAdmin,
	}}
	sessions := &stubSessionSource{snapshots: map[string]domainauth.Snapshot{
		"tok-admin": admin,
		"tok-op":    approvedOperator(),
	}}
	guard := Guard(GuardConfig{Sessions: sessions, Cookies: CookieWriter{}}, RequireRole(domainauth.RoleAdmin))
	handler := guard(guardedEcho(t))

	t.Run("admin passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/admin/operators", nil)
		r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "tok-admin"})
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("operator does not", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/admin/operators", nil)
		r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "tok-op"})
		handler.ServeHTTP(rec, r)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
	})
}
