package handlers

import (
	"net/http"

	"github.com/arixen/socialite/internal/services"
	"github.com/arixen/socialite/pkg/response"
	"github.com/labstack/echo/v4"
)

// FollowHandler exposes the follow graph over HTTP. All consistency logic
// lives in services.FollowService; this layer only maps identities and
// outcomes.
type FollowHandler struct {
	followService services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// RegisterFollowRoutes registers the mutating routes on the authenticated
// group and the listing routes on the public group.
func (h *FollowHandler) RegisterFollowRoutes(priv, pub *echo.Group) {
	priv.POST("/users/:id/follow", h.FollowUser)
	priv.DELETE("/users/:id/follow", h.UnfollowUser)
	pub.GET("/users/:id/followers", h.ListFollowers)
	pub.GET("/users/:id/following", h.ListFollowing)
}

// FollowUser creates a follow edge from the caller to the target user.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	callerID := getUserIDFromContext(c)
	if callerID == 0 {
		return services.ErrUnauthenticated
	}

	targetID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.followService.Follow(c.Request().Context(), callerID, targetID); err != nil {
		return err
	}

	return response.OK(c, http.StatusOK, "following", echo.Map{"following": true})
}

// UnfollowUser removes the follow edge from the caller to the target user.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	callerID := getUserIDFromContext(c)
	if callerID == 0 {
		return services.ErrUnauthenticated
	}

	targetID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.followService.Unfollow(c.Request().Context(), callerID, targetID); err != nil {
		return err
	}

	return response.OK(c, http.StatusOK, "unfollowed", echo.Map{"following": false})
}

// ListFollowers returns the public summaries of users following :id.
func (h *FollowHandler) ListFollowers(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	followers, err := h.followService.ListFollowers(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "followers", followers)
}

// ListFollowing returns the public summaries of users that :id follows.
func (h *FollowHandler) ListFollowing(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	following, err := h.followService.ListFollowing(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "following", following)
}
