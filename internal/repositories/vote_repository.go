package repositories

import (
	"fmt"

	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	// VoteBy records a vote on a votable entity. A second vote by the same
	// user flips the kind of the existing vote instead of adding a row.
	VoteBy(votableType string, votableID, userID uint, kind string) (*models.Vote, error)
	CountVotes(votableType string, votableID uint) (int64, error)
}

// PostgresVoteRepository implements VoteRepository for PostgreSQL
type PostgresVoteRepository struct {
	db *gorm.DB
}

// NewPostgresVoteRepository creates a new PostgresVoteRepository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// VoteBy records or flips a vote, keeping the votable's score columns and
// the owner's accumulated score in step, all in one transaction.
func (r *PostgresVoteRepository) VoteBy(votableType string, votableID, userID uint, kind string) (*models.Vote, error) {
	if kind != models.VoteUp && kind != models.VoteDown {
		return nil, fmt.Errorf("invalid vote kind %q", kind)
	}

	var vote models.Vote
	err := r.db.Transaction(func(tx *gorm.DB) error {
		deltaUp, deltaDown := 0, 0

		err := tx.Where("votable_type = ? AND votable_id = ? AND user_id = ?",
			votableType, votableID, userID).First(&vote).Error
		switch {
		case err == nil:
			if vote.Kind == kind {
				return nil // same vote twice is a no-op
			}
			if kind == models.VoteUp {
				deltaUp, deltaDown = 1, -1
			} else {
				deltaUp, deltaDown = -1, 1
			}
			vote.Kind = kind
			if err := tx.Save(&vote).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			vote = models.Vote{
				VotableType: votableType,
				VotableID:   votableID,
				UserID:      userID,
				Kind:        kind,
			}
			if kind == models.VoteUp {
				deltaUp = 1
			} else {
				deltaDown = 1
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return applyScoreDelta(tx, votableType, votableID, deltaUp, deltaDown)
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// CountVotes returns the total number of votes on a votable entity
func (r *PostgresVoteRepository) CountVotes(votableType string, votableID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).
		Where("votable_type = ? AND votable_id = ?", votableType, votableID).
		Count(&count).Error
	return count, err
}

// applyScoreDelta adjusts the votable's score columns and the owning
// user's score inside the caller's transaction.
func applyScoreDelta(tx *gorm.DB, votableType string, votableID uint, deltaUp, deltaDown int) error {
	deltaScore := deltaUp - deltaDown
	if deltaUp == 0 && deltaDown == 0 {
		return nil
	}

	updates := map[string]interface{}{
		"up_score":   gorm.Expr("up_score + ?", deltaUp),
		"down_score": gorm.Expr("down_score + ?", deltaDown),
		"score":      gorm.Expr("score + ?", deltaScore),
	}

	var ownerID uint
	switch votableType {
	case models.SubjectCard:
		var card models.Card
		if err := tx.First(&card, votableID).Error; err != nil {
			return err
		}
		ownerID = card.UserID
		if err := tx.Model(&models.Card{}).Where("id = ?", votableID).UpdateColumns(updates).Error; err != nil {
			return err
		}
	case models.SubjectComment:
		var comment models.Comment
		if err := tx.First(&comment, votableID).Error; err != nil {
			return err
		}
		ownerID = comment.UserID
		if err := tx.Model(&models.Comment{}).Where("id = ?", votableID).UpdateColumns(updates).Error; err != nil {
			return err
		}
	default:
		return fmt.Errorf("votable type %q has no score columns", votableType)
	}

	return tx.Model(&models.User{}).Where("id = ?", ownerID).
		UpdateColumn("score", gorm.Expr("score + ?", deltaScore)).Error
}
