package repositories

import (
	"encoding/json"
	"time"

	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	// FindByIdentity looks up the single notification for a (recipient,
	// action, subject) tuple, regardless of read state.
	FindByIdentity(userID uint, action string, subject models.Ref) (*models.Notification, error)
	CreateNotification(n *models.Notification) error
	// MergeSender folds one actor into an existing notification's senders
	// map. The merge is key-wise at the storage level, so concurrent
	// merges for different actors both survive.
	MergeSender(notificationID uint, username string, senderID uint) error
	GetNotificationByID(id uint) (*models.Notification, error)
	GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(userID uint) (int64, error)
	// MarkAllRead stamps read_at on the user's unread notifications
	// created at or before the cutoff; already-read rows are untouched.
	MarkAllRead(userID uint, before time.Time) (int64, error)
	// MarkAllSeen is MarkAllRead for the seen_at column.
	MarkAllSeen(userID uint, before time.Time) (int64, error)
	SetSentAt(notificationID uint, at time.Time) error
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// FindByIdentity looks up a notification by its aggregation identity
func (r *PostgresNotificationRepository) FindByIdentity(userID uint, action string, subject models.Ref) (*models.Notification, error) {
	var n models.Notification
	err := r.db.Where("user_id = ? AND action = ? AND subject_type = ? AND subject_id = ?",
		userID, action, subject.Type, subject.ID).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNotification creates a new notification. The identity unique
// index makes a concurrent duplicate surface as gorm.ErrDuplicatedKey.
func (r *PostgresNotificationRepository) CreateNotification(n *models.Notification) error {
	return r.db.Create(n).Error
}

// MergeSender adds one sender key to the senders map via a jsonb merge
func (r *PostgresNotificationRepository) MergeSender(notificationID uint, username string, senderID uint) error {
	entry, err := json.Marshal(map[string]uint{username: senderID})
	if err != nil {
		return err
	}
	return r.db.Model(&models.Notification{}).Where("id = ?", notificationID).
		UpdateColumn("senders", gorm.Expr("COALESCE(senders, '{}'::jsonb) || ?::jsonb", string(entry))).
		Error
}

// GetNotificationByID retrieves a notification by ID
func (r *PostgresNotificationRepository) GetNotificationByID(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByUserID returns paginated notifications for a user, newest first
func (r *PostgresNotificationRepository) GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	r.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// GetUnreadCount returns the number of unread notifications for a user
func (r *PostgresNotificationRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkAllRead stamps read_at on unread notifications up to the cutoff
func (r *PostgresNotificationRepository) MarkAllRead(userID uint, before time.Time) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL AND created_at <= ?", userID, before).
		Update("read_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

// MarkAllSeen stamps seen_at on unseen notifications up to the cutoff
func (r *PostgresNotificationRepository) MarkAllSeen(userID uint, before time.Time) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND seen_at IS NULL AND created_at <= ?", userID, before).
		Update("seen_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

// SetSentAt records that a push attempt was made for the notification
func (r *PostgresNotificationRepository) SetSentAt(notificationID uint, at time.Time) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", notificationID).
		Update("sent_at", at).Error
}
