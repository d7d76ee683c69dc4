package models

import "time"

// Follow is a directed edge in the social graph: FollowerID follows
// FollowingID. The compound unique index makes the pair the identity of the
// edge; there is no update path, only create and delete.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}
