package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/services"
	"github.com/arixen/socialite/pkg/response"
	"github.com/arixen/socialite/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFollowService returns scripted outcomes so handler tests only exercise
// the HTTP mapping.
type stubFollowService struct {
	followErr   error
	unfollowErr error
	listErr     error
	followers      []models.UserSummary
	following      []models.UserSummary
	isFollowing    bool
	isFollowingErr error
}

func (s *stubFollowService) Follow(context.Context, uint, uint) error   { return s.followErr }
func (s *stubFollowService) Unfollow(context.Context, uint, uint) error { return s.unfollowErr }

func (s *stubFollowService) ListFollowers(context.Context, uint) ([]models.UserSummary, error) {
	return s.followers, s.listErr
}

func (s *stubFollowService) ListFollowing(context.Context, uint) ([]models.UserSummary, error) {
	return s.following, s.listErr
}

func (s *stubFollowService) IsFollowing(context.Context, uint, uint) (bool, error) {
	return s.isFollowing, s.isFollowingErr
}

// newTestServer wires a minimal echo instance with the production error
// handler. callerID 0 leaves requests unauthenticated.
func newTestServer(svc services.FollowService, callerID uint) *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(zap.NewNop())

	priv := e.Group("/api/v1")
	if callerID != 0 {
		priv.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set("user", &models.JwtCustomClaims{
					UserID:           callerID,
					Username:         "alice",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
				})
				return next(c)
			}
		})
	}
	pub := e.Group("/api/v1")

	NewFollowHandler(svc).RegisterFollowRoutes(priv, pub)
	return e
}

func doRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFollowUserSuccess(t *testing.T) {
	e := newTestServer(&stubFollowService{}, 1)

	rec := doRequest(e, http.MethodPost, "/api/v1/users/2/follow")

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestFollowUserStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"already following", services.ErrAlreadyFollowing, http.StatusConflict},
		{"self follow", services.ErrSelfFollow, http.StatusBadRequest},
		{"unknown user", services.ErrUserNotFound, http.StatusNotFound},
		{"store down", services.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(&stubFollowService{followErr: tt.serviceErr}, 1)

			rec := doRequest(e, http.MethodPost, "/api/v1/users/2/follow")

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestFollowUserUnauthenticated(t *testing.T) {
	e := newTestServer(&stubFollowService{}, 0)

	rec := doRequest(e, http.MethodPost, "/api/v1/users/2/follow")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFollowUserBadID(t *testing.T) {
	e := newTestServer(&stubFollowService{}, 1)

	rec := doRequest(e, http.MethodPost, "/api/v1/users/abc/follow")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnfollowNotFollowing(t *testing.T) {
	e := newTestServer(&stubFollowService{unfollowErr: services.ErrNotFollowing}, 1)

	rec := doRequest(e, http.MethodDelete, "/api/v1/users/2/follow")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListFollowersPublic(t *testing.T) {
	svc := &stubFollowService{
		followers: []models.UserSummary{{ID: 1, Username: "alice", Name: "Alice"}},
	}
	// No authentication middleware: listing is public.
	e := newTestServer(svc, 0)

	rec := doRequest(e, http.MethodGet, "/api/v1/users/2/followers")

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestListFollowersUnknownUserMapsTo404(t *testing.T) {
	e := newTestServer(&stubFollowService{listErr: services.ErrUserNotFound}, 0)

	rec := doRequest(e, http.MethodGet, "/api/v1/users/99/followers")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreFailureHidesDetail(t *testing.T) {
	e := newTestServer(&stubFollowService{followErr: services.ErrStoreUnavailable}, 1)

	rec := doRequest(e, http.MethodPost, "/api/v1/users/2/follow")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "temporary store failure, please retry", env.Message)
}
