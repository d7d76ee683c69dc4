package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/repositories"
	"github.com/arixen/socialite/pkg/response"
	"github.com/arixen/socialite/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memLikeRepo mimics the compound unique index on (post_id, user_id).
type memLikeRepo struct {
	likes map[[2]string]bool
}

func newMemLikeRepo() *memLikeRepo {
	return &memLikeRepo{likes: map[[2]string]bool{}}
}

func likeKey(postID string, userID uint) [2]string {
	return [2]string{postID, fmt.Sprint(userID)}
}

func (m *memLikeRepo) CreateLike(_ context.Context, like *models.Like) error {
	key := likeKey(like.PostID, like.UserID)
	if m.likes[key] {
		return gorm.ErrDuplicatedKey
	}
	m.likes[key] = true
	return nil
}

func (m *memLikeRepo) DeleteLike(_ context.Context, postID string, userID uint) (int64, error) {
	key := likeKey(postID, userID)
	if !m.likes[key] {
		return 0, nil
	}
	delete(m.likes, key)
	return 1, nil
}

func (m *memLikeRepo) GetLikesByPostID(_ context.Context, postID string) ([]models.Like, error) {
	var likes []models.Like
	for key := range m.likes {
		if key[0] == postID {
			likes = append(likes, models.Like{PostID: postID})
		}
	}
	return likes, nil
}

func (m *memLikeRepo) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	likes, _ := m.GetLikesByPostID(ctx, postID)
	return int64(len(likes)), nil
}

func (m *memLikeRepo) HasUserLikedPost(_ context.Context, postID string, userID uint) (bool, error) {
	return m.likes[likeKey(postID, userID)], nil
}

// memPostRepo holds a single post for the like tests.
type memPostRepo struct {
	post *models.Post
}

func (m *memPostRepo) CreatePost(_ context.Context, post *models.Post) error { return nil }

func (m *memPostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if m.post != nil && m.post.ID.Hex() == id {
		return m.post, nil
	}
	return nil, repositories.ErrPostNotFound
}

func (m *memPostRepo) GetPostsByUserID(context.Context, uint, int64, int64) ([]models.Post, error) {
	return nil, nil
}

func (m *memPostRepo) GetAllPosts(context.Context, int64, int64) ([]models.Post, error) {
	return nil, nil
}

func (m *memPostRepo) UpdatePost(context.Context, string, *models.Post) error { return nil }
func (m *memPostRepo) DeletePost(context.Context, string) error               { return nil }

func (m *memPostRepo) IncrementLikesCount(_ context.Context, _ string, delta int) error {
	if m.post != nil {
		m.post.LikesCount += delta
	}
	return nil
}

func newLikeServer(t *testing.T) (*echo.Echo, *memPostRepo) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(zap.NewNop())

	postRepo := &memPostRepo{post: &models.Post{
		ID:      primitive.NewObjectID(),
		UserID:  2,
		Content: "hello",
	}}
	userRepo := newMemUserRepo()
	_ = userRepo.CreateUser(context.Background(), &models.User{Username: "alice", Email: "a@b.c"})

	priv := e.Group("/api/v1")
	priv.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user", &models.JwtCustomClaims{
				UserID:           1,
				Username:         "alice",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			})
			return next(c)
		}
	})

	handler := NewLikeHandler(newMemLikeRepo(), postRepo, userRepo, nil, nil, zap.NewNop())
	handler.RegisterLikeRoutes(priv)
	return e, postRepo
}

func TestLikeThenDuplicateLike(t *testing.T) {
	e, postRepo := newLikeServer(t)
	path := "/api/v1/posts/" + postRepo.post.ID.Hex() + "/like"

	rec := doRequest(e, http.MethodPost, path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, postRepo.post.LikesCount)

	// Second like on the same post conflicts instead of double counting.
	rec = doRequest(e, http.MethodPost, path)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, postRepo.post.LikesCount)
}

func TestUnlikeWithoutLike(t *testing.T) {
	e, postRepo := newLikeServer(t)
	path := "/api/v1/posts/" + postRepo.post.ID.Hex() + "/like"

	rec := doRequest(e, http.MethodDelete, path)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLikeUnknownPost(t *testing.T) {
	e, _ := newLikeServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/posts/"+primitive.NewObjectID().Hex()+"/like")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
