package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/repositories"
	"github.com/arixen/socialite/internal/services"
	"github.com/arixen/socialite/pkg/response"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
	followService  services.FollowService
	log            *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followService services.FollowService, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepository: userRepo, followService: followService, log: log}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteProfile)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
}

func parseUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, services.ErrInvalidIdentity
	}
	return uint(id), nil
}

// GetUser returns another user's public profile, with the caller's follow
// state attached.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrUserNotFound
		}
		return err
	}

	isFollowing := false
	if callerID := getUserIDFromContext(c); callerID != 0 && callerID != id {
		isFollowing, err = h.followService.IsFollowing(c.Request().Context(), callerID, id)
		if err != nil {
			// The profile is still served; the follow state just degrades.
			h.log.Warn("follow state lookup failed",
				zap.Uint("caller_id", callerID),
				zap.Uint("user_id", id),
				zap.Error(err),
			)
			isFollowing = false
		}
	}

	return response.OK(c, http.StatusOK, "user", echo.Map{
		"user":         user,
		"is_following": isFollowing,
	})
}

// GetProfile retrieves the authenticated user's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrUserNotFound
		}
		return err
	}
	return response.OK(c, http.StatusOK, "profile", user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrUserNotFound
		}
		return err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return err
	}

	return response.OK(c, http.StatusOK, "profile updated", user)
}

// DeleteProfile deletes the authenticated user's account
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}

	if err := h.userRepository.DeleteUser(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchUsers searches for users by username or name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return response.OK(c, http.StatusOK, "users", summaries)
}
