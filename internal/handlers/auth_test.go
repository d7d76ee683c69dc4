package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arixen/socialite/internal/auth"
	"github.com/arixen/socialite/internal/middleware"
	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/pkg/response"
	"github.com/arixen/socialite/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// memUserRepo is an in-memory UserRepository for the auth round-trip tests.
type memUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[uint]*models.User{}}
}

func (m *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) DeleteUser(_ context.Context, id uint) error {
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) SearchUsers(context.Context, string) ([]models.User, error) {
	return nil, nil
}

func newAuthServer(t *testing.T) (*echo.Echo, *memUserRepo) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(zap.NewNop())

	repo := newMemUserRepo()
	tokens := auth.NewMemoryTokenStore()

	pub := e.Group("/api/v1/auth")
	priv := e.Group("/api/v1")
	priv.Use(middleware.JWTAuthMiddleware(testSecret, tokens))

	handler := NewAuthHandler(repo, tokens, nil, testSecret, zap.NewNop())
	handler.RegisterAuthRoutes(pub, priv)

	// A trivial protected endpoint to probe token validity.
	priv.GET("/whoami", func(c echo.Context) error {
		return response.OK(c, http.StatusOK, "ok", echo.Map{"user_id": getUserIDFromContext(c)})
	})

	return e, repo
}

func postJSON(e *echo.Echo, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := postJSON(e, "/api/v1/auth/register",
		`{"username":"alice","email":"alice@example.com","name":"Alice","password":"hunter2hunter2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

func TestRegisterAndLogin(t *testing.T) {
	e, repo := newAuthServer(t)

	registerUser(t, e)
	require.Len(t, repo.users, 1)
	assert.NotEqual(t, "hunter2hunter2", repo.users[1].PasswordHash, "password must be stored hashed")

	rec := postJSON(e, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"hunter2hunter2"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), repo.users[1].PasswordHash)
}

func TestLoginWrongPassword(t *testing.T) {
	e, _ := newAuthServer(t)
	registerUser(t, e)

	rec := postJSON(e, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e, _ := newAuthServer(t)
	registerUser(t, e)

	rec := postJSON(e, "/api/v1/auth/register",
		`{"username":"alice2","email":"alice@example.com","name":"Alice","password":"hunter2hunter2"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	e, _ := newAuthServer(t)

	rec := postJSON(e, "/api/v1/auth/register",
		`{"username":"al","email":"not-an-email","name":"A","password":"short"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	e, _ := newAuthServer(t)
	token := registerUser(t, e)

	// Token works before logout.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec2 := postJSON(e, "/api/v1/auth/logout", "", token)
	require.Equal(t, http.StatusOK, rec2.Code)

	// Same token is rejected afterwards.
	rec3 := httptest.NewRecorder()
	e.ServeHTTP(rec3, req)
	assert.Equal(t, http.StatusUnauthorized, rec3.Code)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	e, _ := newAuthServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteWithGarbageToken(t *testing.T) {
	e, _ := newAuthServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
