package repositories

import (
	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// CardRepository defines the interface for card data operations
type CardRepository interface {
	CreateCard(card *models.Card) error
	GetCardByID(id uint) (*models.Card, error)
	GetCardsByStackID(stackID uint, page, limit int) ([]models.Card, int64, error)
	IncrementFlagsCount(cardID uint) error
}

// PostgresCardRepository implements CardRepository for PostgreSQL
type PostgresCardRepository struct {
	db *gorm.DB
}

// NewPostgresCardRepository creates a new PostgresCardRepository
func NewPostgresCardRepository(db *gorm.DB) *PostgresCardRepository {
	return &PostgresCardRepository{db: db}
}

// CreateCard creates a new card in PostgreSQL
func (r *PostgresCardRepository) CreateCard(card *models.Card) error {
	return r.db.Create(card).Error
}

// GetCardByID retrieves a card by ID
func (r *PostgresCardRepository) GetCardByID(id uint) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// GetCardsByStackID retrieves cards in a stack, newest first
func (r *PostgresCardRepository) GetCardsByStackID(stackID uint, page, limit int) ([]models.Card, int64, error) {
	var cards []models.Card
	var total int64

	r.db.Model(&models.Card{}).Where("stack_id = ?", stackID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("stack_id = ?", stackID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&cards).Error
	return cards, total, err
}

// IncrementFlagsCount bumps a card's flag counter
func (r *PostgresCardRepository) IncrementFlagsCount(cardID uint) error {
	return r.db.Model(&models.Card{}).Where("id = ?", cardID).
		UpdateColumn("flags_count", gorm.Expr("flags_count + 1")).Error
}
