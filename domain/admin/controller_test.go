package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/akeren/event-registration/config/router"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	"github.com/akeren/event-registration/pkg/memcache"
	"github.com/akeren/event-registration/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	total int64
	err   error
}

func (s stubCounter) Count(context.Context) (int64, error) {
	return s.total, s.err
}

type failingRevocations struct{}

func (failingRevocations) Get(context.Context, string) (string, error) {
	return "", errors.New("cache down")
}

func (failingRevocations) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestEngine(t *testing.T, revocations session.RevocationStore, counter RegistrationCounter) (*router.RouterService, *session.Manager) {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})

	manager, err := session.NewManager(session.Config{Secret: "test-secret", TTL: time.Hour}, revocations)
	require.NoError(t, err)

	authenticator, err := session.NewAuthenticator("admin", "s3cret")
	require.NoError(t, err)

	rs.MountController(NewAdminController(ControllerConfig{
		Logger:        logger,
		Sessions:      manager,
		Authenticator: authenticator,
		Registrations: counter,
	}))

	return rs, manager
}

func postLogin(rs *router.RouterService, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", session.DefaultCookieName)
	return nil
}

func get(rs *router.RouterService, path string, cookie *http.Cookie, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func TestLogin_RejectsWrongCredentials(t *testing.T) {
	rs, _ := newTestEngine(t, memcache.New(), stubCounter{})

	w := postLogin(rs, "admin", "wrong")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_SetsHttpOnlyCookieAndOpensDashboard(t *testing.T) {
	rs, _ := newTestEngine(t, memcache.New(), stubCounter{total: 7})

	login := postLogin(rs, "admin", "s3cret")
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	cookie := sessionCookie(t, login)
	assert.True(t, cookie.HttpOnly)

	w := get(rs, "/admin", cookie, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var dashboard DashboardResponse
	require.NoError(t, json.Unmarshal(resp.Data, &dashboard))
	assert.Equal(t, int64(7), dashboard.TotalRegistrations)
	assert.True(t, dashboard.StoreConnected)
	assert.Equal(t, models.DefaultColleges, dashboard.Colleges)
}

func TestDashboard_ReportsUnreachableStore(t *testing.T) {
	rs, manager := newTestEngine(t, memcache.New(), stubCounter{err: errors.New("store down")})

	token, _, err := manager.Issue("admin")
	require.NoError(t, err)

	w := get(rs, "/admin", &http.Cookie{Name: session.DefaultCookieName, Value: token}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var dashboard DashboardResponse
	require.NoError(t, json.Unmarshal(resp.Data, &dashboard))
	assert.False(t, dashboard.StoreConnected)
	assert.Zero(t, dashboard.TotalRegistrations)
}

func TestGate_WithoutSession(t *testing.T) {
	rs, _ := newTestEngine(t, memcache.New(), stubCounter{})

	t.Run("api clients get 401", func(t *testing.T) {
		w := get(rs, "/admin", nil, "application/json")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("browsers are redirected to login", func(t *testing.T) {
		w := get(rs, "/admin", nil, "text/html,application/xhtml+xml")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))
	})

	t.Run("tampered cookie is rejected", func(t *testing.T) {
		w := get(rs, "/admin", &http.Cookie{Name: session.DefaultCookieName, Value: "not-a-token"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogout_RevokesSession(t *testing.T) {
	rs, _ := newTestEngine(t, memcache.New(), stubCounter{})

	cookie := sessionCookie(t, postLogin(rs, "admin", "s3cret"))

	logout := get(rs, "/admin/logout", cookie, "")
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Equal(t, "", sessionCookie(t, logout).Value)

	w := get(rs, "/admin", cookie, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionStatus(t *testing.T) {
	rs, manager := newTestEngine(t, memcache.New(), stubCounter{})

	var anonymous envelope
	w := get(rs, "/admin/login", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &anonymous))
	assert.JSONEq(t, `{"authenticated":false}`, string(anonymous.Data))

	token, _, err := manager.Issue("admin")
	require.NoError(t, err)

	var active envelope
	w = get(rs, "/admin/login", &http.Cookie{Name: session.DefaultCookieName, Value: token}, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.JSONEq(t, `{"authenticated":true,"username":"admin"}`, string(active.Data))
}

func TestGate_RevocationLookupFailureIsUnavailable(t *testing.T) {
	rs, manager := newTestEngine(t, failingRevocations{}, stubCounter{})

	token, _, err := manager.Issue("admin")
	require.NoError(t, err)

	w := get(rs, "/admin", &http.Cookie{Name: session.DefaultCookieName, Value: token}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
