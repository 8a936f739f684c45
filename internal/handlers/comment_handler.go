package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/pkg/hashid"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	cardRepository    repositories.CardRepository
	voteRepository    repositories.VoteRepository
	tracker           *notifier.Tracker
	hashids           *hashid.Codec
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, cardRepo repositories.CardRepository, voteRepo repositories.VoteRepository, tracker *notifier.Tracker, hashids *hashid.Codec) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		cardRepository:    cardRepo,
		voteRepository:    voteRepo,
		tracker:           tracker,
		hashids:           hashids,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/cards/:hash_id/comments", h.CreateComment)
	g.GET("/cards/:hash_id/comments", h.GetComments)
	g.POST("/comments/:id/votes", h.VoteComment)
}

// CreateComment posts a comment on a card and records the comment.create
// activity for the card owner.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	card, err := h.cardFromHashID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment := &models.Comment{CardID: card.ID, UserID: userID, Body: req.Body}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	_, err = h.tracker.Track(c.Request().Context(), models.ActionCommentCreate, userID,
		models.Ref{Type: models.SubjectComment, ID: comment.ID},
		models.Ref{Type: models.SubjectCard, ID: card.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns a card's comments, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	card, err := h.cardFromHashID(c)
	if err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByCardID(card.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

// VoteComment casts or flips a vote on a comment. Only up votes are
// tracked as activities; the comment owner is not nagged about downvotes.
func (h *CommentHandler) VoteComment(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}
	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	var req models.CreateVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vote, err := h.voteRepository.VoteBy(models.SubjectComment, comment.ID, userID, req.Kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Kind == models.VoteUp {
		_, err = h.tracker.Track(c.Request().Context(), models.ActionCommentUpVote, userID,
			models.Ref{Type: models.SubjectComment, ID: comment.ID},
			models.Ref{Type: models.SubjectCard, ID: comment.CardID})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, vote)
}

func (h *CommentHandler) cardFromHashID(c echo.Context) (*models.Card, error) {
	id, err := h.hashids.Decode(c.Param("hash_id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Card not found")
	}
	card, err := h.cardRepository.GetCardByID(uint(id))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Card not found")
	}
	return card, nil
}
