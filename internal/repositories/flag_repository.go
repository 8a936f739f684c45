package repositories

import (
	"errors"

	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// FlagRepository defines the interface for flag data operations
type FlagRepository interface {
	// FlagBy stores a flag for the entity. A duplicate flag by the same
	// user resolves to the existing row; created reports which happened.
	FlagBy(flaggableType string, flaggableID, userID uint) (flag *models.Flag, created bool, err error)
	CountFlags(flaggableType string, flaggableID uint) (int64, error)
}

// PostgresFlagRepository implements FlagRepository for PostgreSQL
type PostgresFlagRepository struct {
	db *gorm.DB
}

// NewPostgresFlagRepository creates a new PostgresFlagRepository
func NewPostgresFlagRepository(db *gorm.DB) *PostgresFlagRepository {
	return &PostgresFlagRepository{db: db}
}

// FlagBy stores a flag, tolerating duplicates
func (r *PostgresFlagRepository) FlagBy(flaggableType string, flaggableID, userID uint) (*models.Flag, bool, error) {
	var existing models.Flag
	err := r.db.Where("flaggable_type = ? AND flaggable_id = ? AND user_id = ?",
		flaggableType, flaggableID, userID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	flag := models.Flag{FlaggableType: flaggableType, FlaggableID: flaggableID, UserID: userID}
	if err := r.db.Create(&flag).Error; err != nil {
		// concurrent duplicate, fall back to the winning row
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if ferr := r.db.Where("flaggable_type = ? AND flaggable_id = ? AND user_id = ?",
				flaggableType, flaggableID, userID).First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &flag, true, nil
}

// CountFlags returns the number of flags on an entity
func (r *PostgresFlagRepository) CountFlags(flaggableType string, flaggableID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Flag{}).
		Where("flaggable_type = ? AND flaggable_id = ?", flaggableType, flaggableID).
		Count(&count).Error
	return count, err
}
