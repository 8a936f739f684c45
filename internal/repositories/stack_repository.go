package repositories

import (
	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// StackRepository defines the interface for stack data operations
type StackRepository interface {
	CreateStack(stack *models.Stack) error
	GetStackByID(id uint) (*models.Stack, error)
	GetStacks(page, limit int) ([]models.Stack, int64, error)
}

// PostgresStackRepository implements StackRepository for PostgreSQL
type PostgresStackRepository struct {
	db *gorm.DB
}

// NewPostgresStackRepository creates a new PostgresStackRepository
func NewPostgresStackRepository(db *gorm.DB) *PostgresStackRepository {
	return &PostgresStackRepository{db: db}
}

// CreateStack creates a new stack in PostgreSQL
func (r *PostgresStackRepository) CreateStack(stack *models.Stack) error {
	return r.db.Create(stack).Error
}

// GetStackByID retrieves a stack by ID
func (r *PostgresStackRepository) GetStackByID(id uint) (*models.Stack, error) {
	var stack models.Stack
	if err := r.db.First(&stack, id).Error; err != nil {
		return nil, err
	}
	return &stack, nil
}

// GetStacks retrieves stacks paginated, newest first
func (r *PostgresStackRepository) GetStacks(page, limit int) ([]models.Stack, int64, error) {
	var stacks []models.Stack
	var total int64

	r.db.Model(&models.Stack{}).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&stacks).Error
	return stacks, total, err
}
