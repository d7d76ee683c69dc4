package events

import "context"

// Subjects for domain events. Subscribers filter on the "social." prefix.
const (
	SubjectUserRegistered = "social.user.registered"
	SubjectFollowCreated  = "social.follow.created"
	SubjectFollowDeleted  = "social.follow.deleted"
	SubjectPostLiked      = "social.post.liked"
)

// Publisher emits domain events after a mutation commits. Publishing is
// best-effort: callers log failures and move on, they never roll back.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// UserRegisteredEvent is published when a new account is created.
type UserRegisteredEvent struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FollowEvent is published when a follow edge is created or deleted.
type FollowEvent struct {
	FollowerID  uint `json:"follower_id"`
	FollowingID uint `json:"following_id"`
}

// LikeEvent is published when a post is liked.
type LikeEvent struct {
	PostID string `json:"post_id"`
	UserID uint   `json:"user_id"`
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close()                                     {}
