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
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{postRepository: postRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:    userID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}

	return response.OK(c, http.StatusCreated, "post created", post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post ID")
	}
	return response.OK(c, http.StatusOK, "post", post)
}

// GetPosts retrieves posts, optionally filtered by author
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var posts []models.Post
	var err error

	if rawUserID := c.QueryParam("user_id"); rawUserID != "" {
		userID, parseErr := strconv.ParseUint(rawUserID, 10, 32)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		posts, err = h.postRepository.GetPostsByUserID(c.Request().Context(), uint(userID), skip, limit)
	} else {
		posts, err = h.postRepository.GetAllPosts(c.Request().Context(), skip, limit)
	}
	if err != nil {
		return err
	}

	return response.OK(c, http.StatusOK, "posts", posts)
}

// UpdatePost updates an existing post owned by the caller
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existing, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post ID")
	}

	if existing.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "you are not the author of this post")
	}

	if req.Content != "" {
		existing.Content = req.Content
	}
	if req.ImageURLs != nil {
		existing.ImageURLs = req.ImageURLs
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, existing); err != nil {
		return err
	}

	return response.OK(c, http.StatusOK, "post updated", existing)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return services.ErrUnauthenticated
	}
	postID := c.Param("id")

	existing, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post ID")
	}

	if existing.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "you are not the author of this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
