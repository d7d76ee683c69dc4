package handlers

import (
	"errors"
	"net/http"

	"github.com/arixen/socialite/internal/events"
	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/repositories"
	"github.com/arixen/socialite/internal/services"
	"github.com/arixen/socialite/pkg/response"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LikeHandler handles like/unlike HTTP requests
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	publisher              events.Publisher
	log                    *zap.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	publisher events.Publisher,
	log *zap.Logger,
) *LikeHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		publisher:              publisher,
		log:                    log,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.GET("/posts/:id/likes", h.GetLikes)
}

// LikePost records a like for the authenticated user on a post.
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post ID")
	}

	like := &models.Like{PostID: postID, UserID: userID}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		// The compound unique index turns a concurrent double-like into a
		// clean conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return services.ErrAlreadyLiked
		}
		return err
	}

	if err := h.postRepository.IncrementLikesCount(ctx, postID, 1); err != nil {
		h.log.Warn("increment likes count failed", zap.String("post_id", postID), zap.Error(err))
	}

	h.recordLikeNotification(c, userID, post)
	if err := h.publisher.Publish(ctx, events.SubjectPostLiked, events.LikeEvent{
		PostID: postID, UserID: userID,
	}); err != nil {
		h.log.Warn("publish like event failed", zap.Error(err))
	}

	return response.OK(c, http.StatusOK, "liked", echo.Map{"liked": true})
}

// UnlikePost removes the authenticated user's like from a post.
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	affected, err := h.likeRepository.DeleteLike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.ErrNotLiked
	}

	if err := h.postRepository.IncrementLikesCount(ctx, postID, -1); err != nil {
		h.log.Warn("decrement likes count failed", zap.String("post_id", postID), zap.Error(err))
	}

	return response.OK(c, http.StatusOK, "unliked", echo.Map{"liked": false})
}

// GetLikes returns who liked a post plus the total.
func (h *LikeHandler) GetLikes(c echo.Context) error {
	postID := c.Param("id")
	ctx := c.Request().Context()

	likes, err := h.likeRepository.GetLikesByPostID(ctx, postID)
	if err != nil {
		return err
	}

	users := make([]models.UserSummary, 0, len(likes))
	for _, like := range likes {
		user, err := h.userRepository.GetUserByID(ctx, like.UserID)
		if err != nil {
			continue
		}
		users = append(users, user.Summary())
	}

	return response.OK(c, http.StatusOK, "likes", echo.Map{
		"count": len(likes),
		"users": users,
	})
}

func (h *LikeHandler) recordLikeNotification(c echo.Context, actorID uint, post *models.Post) {
	if h.notificationRepository == nil || post.UserID == actorID {
		return
	}
	ctx := c.Request().Context()
	actor, err := h.userRepository.GetUserByID(ctx, actorID)
	if err != nil {
		return
	}
	notif := &models.Notification{
		Type:        models.NotificationTypeLike,
		ActorID:     actorID,
		RecipientID: post.UserID,
		TargetID:    post.ID.Hex(),
		Message:     actor.Username + " liked your post",
	}
	if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
		h.log.Warn("create like notification failed", zap.Error(err))
	}
}
