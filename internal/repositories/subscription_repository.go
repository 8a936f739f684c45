package repositories

import (
	"errors"
	"fmt"

	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	// Subscribe opts a user into a stack. Subscribing twice resolves to
	// the existing row; created reports which happened.
	Subscribe(stackID, userID uint) (sub *models.Subscription, created bool, err error)
	Unsubscribe(stackID, userID uint) error
	SubscriberIDs(stackID uint) ([]uint, error)
	IsSubscribed(stackID, userID uint) (bool, error)
}

// PostgresSubscriptionRepository implements SubscriptionRepository for PostgreSQL
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// Subscribe opts a user into a stack
func (r *PostgresSubscriptionRepository) Subscribe(stackID, userID uint) (*models.Subscription, bool, error) {
	var existing models.Subscription
	err := r.db.Where("stack_id = ? AND user_id = ?", stackID, userID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	sub := models.Subscription{StackID: stackID, UserID: userID}
	if err := r.db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if ferr := r.db.Where("stack_id = ? AND user_id = ?", stackID, userID).First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &sub, true, nil
}

// Unsubscribe removes a user's subscription to a stack
func (r *PostgresSubscriptionRepository) Unsubscribe(stackID, userID uint) error {
	res := r.db.Where("stack_id = ? AND user_id = ?", stackID, userID).Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription not found")
	}
	return nil
}

// SubscriberIDs returns the ids of all users subscribed to a stack,
// oldest subscription first
func (r *PostgresSubscriptionRepository) SubscriberIDs(stackID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Subscription{}).
		Where("stack_id = ?", stackID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// IsSubscribed checks whether a user is subscribed to a stack
func (r *PostgresSubscriptionRepository) IsSubscribed(stackID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("stack_id = ? AND user_id = ?", stackID, userID).
		Count(&count).Error
	return count > 0, err
}
