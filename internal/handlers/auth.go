package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/arixen/socialite/internal/auth"
	"github.com/arixen/socialite/internal/events"
	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/repositories"
	"github.com/arixen/socialite/pkg/response"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 72 * time.Hour

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         auth.TokenStore
	publisher      events.Publisher
	jwtSecret      string
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, tokens auth.TokenStore, publisher events.Publisher, jwtSecret string, log *zap.Logger) *AuthHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		publisher:      publisher,
		jwtSecret:      jwtSecret,
		log:            log,
	}
}

// RegisterAuthRoutes registers the public auth routes on pub and the
// authenticated ones on priv.
func (h *AuthHandler) RegisterAuthRoutes(pub, priv *echo.Group) {
	pub.POST("/register", h.Register)
	pub.POST("/login", h.Login)
	priv.POST("/auth/logout", h.Logout)
}

// Register creates a local account and returns a bearer token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	// Soft check for a friendly message; the unique indexes are the real
	// guard against a concurrent duplicate.
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hashed),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "email or username already registered")
		}
		h.log.Error("create user failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}

	if err := h.publisher.Publish(ctx, events.SubjectUserRegistered, events.UserRegisteredEvent{
		UserID: user.ID, Username: user.Username, Email: user.Email,
	}); err != nil {
		h.log.Warn("publish user registered event failed", zap.Error(err))
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}

	return response.OK(c, http.StatusCreated, "registered", echo.Map{
		"token": token,
		"user":  user,
	})
}

// Login authenticates an email/password pair and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}

	return response.OK(c, http.StatusOK, "logged in", echo.Map{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	ttl := time.Duration(0)
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.tokens.Revoke(c.Request().Context(), claims.ID, ttl); err != nil {
		h.log.Error("revoke token failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "logout unavailable, please retry")
	}

	return response.OK(c, http.StatusOK, "logged out", nil)
}

// generateJWT issues a signed token with a unique ID so logout can revoke it.
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
