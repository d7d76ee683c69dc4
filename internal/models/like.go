package models

import "time"

// Like marks a post as liked by a user. The compound unique index prevents
// double-liking the same post, mirroring the follow edge.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_post_user"` // MongoDB ObjectID hex
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_post_user"`
	CreatedAt time.Time `json:"created_at"`
}
