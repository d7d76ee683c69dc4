package models

import "time"

// Notification types recorded by the follow and like services.
const (
	NotificationTypeFollow = "follow"
	NotificationTypeLike   = "like"
)

// Notification represents a user notification (PostgreSQL).
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	TargetID    string    `json:"target_id"` // post ID for likes, empty for follows
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
