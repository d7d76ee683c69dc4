package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arixen/socialite/internal/events"
	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowService owns the social-graph consistency protocol. A follow touches
// three records (the edge plus both users' counters), so every mutation runs
// inside one transaction: either all of it becomes visible or none of it.
type FollowService interface {
	Follow(ctx context.Context, callerID, targetID uint) error
	Unfollow(ctx context.Context, callerID, targetID uint) error
	ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error)
	IsFollowing(ctx context.Context, callerID, targetID uint) (bool, error)
}

type followService struct {
	db            *gorm.DB
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	notifications repositories.NotificationRepository
	publisher     events.Publisher
	log           *zap.Logger
}

// NewFollowService constructs a follow service. The *gorm.DB handle is used
// only to open transactions; reads go through the repositories. notifRepo
// and publisher may be nil, in which case the respective side effect is
// skipped.
func NewFollowService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	notifRepo repositories.NotificationRepository,
	publisher events.Publisher,
	log *zap.Logger,
) FollowService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &followService{
		db:            db,
		users:         userRepo,
		follows:       followRepo,
		notifications: notifRepo,
		publisher:     publisher,
		log:           log,
	}
}

func validatePair(callerID, targetID uint) error {
	if callerID == 0 || targetID == 0 {
		return ErrInvalidIdentity
	}
	if callerID == targetID {
		return ErrSelfFollow
	}
	return nil
}

// lockPair locks both participant rows FOR UPDATE in ascending id order.
// The consistent lock order serializes concurrent attempts on the same pair
// without risking deadlock, and the re-read confirms both users still exist
// inside the transaction's snapshot.
func lockPair(tx *gorm.DB, a, b uint) ([]models.User, error) {
	var users []models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", []uint{a, b}).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) != 2 {
		return nil, ErrUserNotFound
	}
	return users, nil
}

func (s *followService) Follow(ctx context.Context, callerID, targetID uint) error {
	if err := validatePair(callerID, targetID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPair(tx, callerID, targetID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", callerID, targetID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyFollowing
		}

		if err := tx.Create(&models.Follow{FollowerID: callerID, FollowingID: targetID}).Error; err != nil {
			return err
		}

		// Both counters move in the same unit of work as the edge, so they
		// can never drift from the edge table.
		if err := tx.Model(&models.User{}).Where("id = ?", callerID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error
	})
	if err != nil {
		// The unique index is the backstop for a race the count check missed:
		// the loser sees a clean conflict, never a second edge.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyFollowing
		}
		return s.storeErr("follow", err)
	}

	s.recordFollowNotification(ctx, callerID, targetID)
	if err := s.publisher.Publish(ctx, events.SubjectFollowCreated, events.FollowEvent{
		FollowerID: callerID, FollowingID: targetID,
	}); err != nil {
		s.log.Warn("publish follow event failed", zap.Error(err))
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, callerID, targetID uint) error {
	if callerID == 0 || targetID == 0 {
		return ErrInvalidIdentity
	}
	// A self edge can never exist, so removing one is just an absent edge.
	if callerID == targetID {
		return ErrNotFollowing
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPair(tx, callerID, targetID); err != nil {
			return err
		}

		res := tx.Where("follower_id = ? AND following_id = ?", callerID, targetID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		// Removing an absent edge is reported, not ignored, so the counters
		// below only ever move together with a real edge.
		if res.RowsAffected == 0 {
			return ErrNotFollowing
		}

		if err := tx.Model(&models.User{}).Where("id = ?", callerID).
			UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - 1")).Error
	})
	if err != nil {
		return s.storeErr("unfollow", err)
	}

	if err := s.publisher.Publish(ctx, events.SubjectFollowDeleted, events.FollowEvent{
		FollowerID: callerID, FollowingID: targetID,
	}); err != nil {
		s.log.Warn("publish unfollow event failed", zap.Error(err))
	}
	return nil
}

func (s *followService) ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidIdentity
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, s.notFoundOrStoreErr(err)
	}
	users, err := s.follows.GetFollowers(ctx, userID)
	if err != nil {
		return nil, s.storeErr("list followers", err)
	}
	return summarize(users), nil
}

func (s *followService) ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidIdentity
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, s.notFoundOrStoreErr(err)
	}
	users, err := s.follows.GetFollowing(ctx, userID)
	if err != nil {
		return nil, s.storeErr("list following", err)
	}
	return summarize(users), nil
}

func (s *followService) IsFollowing(ctx context.Context, callerID, targetID uint) (bool, error) {
	if callerID == 0 || targetID == 0 {
		return false, ErrInvalidIdentity
	}
	following, err := s.follows.IsFollowing(ctx, callerID, targetID)
	if err != nil {
		return false, s.storeErr("is following", err)
	}
	return following, nil
}

func (s *followService) recordFollowNotification(ctx context.Context, actorID, recipientID uint) {
	if s.notifications == nil {
		return
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		s.log.Warn("load actor for follow notification failed", zap.Error(err))
		return
	}
	notif := &models.Notification{
		Type:        models.NotificationTypeFollow,
		ActorID:     actorID,
		RecipientID: recipientID,
		Message:     actor.Username + " started following you",
	}
	if err := s.notifications.CreateNotification(ctx, notif); err != nil {
		s.log.Warn("create follow notification failed", zap.Error(err))
	}
}

// storeErr passes domain errors through and wraps everything else as a
// retryable store failure. The underlying error goes to the log, not to the
// caller.
func (s *followService) storeErr(op string, err error) error {
	if IsDomainErr(err) {
		return err
	}
	s.log.Error("follow store operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
}

func (s *followService) notFoundOrStoreErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return s.storeErr("load user", err)
}

func summarize(users []models.User) []models.UserSummary {
	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries
}
