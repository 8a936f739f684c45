package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/pkg/hashid"
)

// CardHandler handles card, vote and flag HTTP requests
type CardHandler struct {
	cardRepository  repositories.CardRepository
	stackRepository repositories.StackRepository
	voteRepository  repositories.VoteRepository
	flagRepository  repositories.FlagRepository
	tracker         *notifier.Tracker
	hashids         *hashid.Codec
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardRepo repositories.CardRepository, stackRepo repositories.StackRepository, voteRepo repositories.VoteRepository, flagRepo repositories.FlagRepository, tracker *notifier.Tracker, hashids *hashid.Codec) *CardHandler {
	return &CardHandler{
		cardRepository:  cardRepo,
		stackRepository: stackRepo,
		voteRepository:  voteRepo,
		flagRepository:  flagRepo,
		tracker:         tracker,
		hashids:         hashids,
	}
}

// RegisterCardRoutes registers card-related routes
func (h *CardHandler) RegisterCardRoutes(g *echo.Group) {
	g.POST("/stacks/:stack_id/cards", h.CreateCard)
	g.GET("/stacks/:stack_id/cards", h.GetStackCards)
	g.GET("/cards/:hash_id", h.GetCard)
	g.POST("/cards/:hash_id/votes", h.VoteCard)
	g.POST("/cards/:hash_id/flags", h.FlagCard)
}

// cardResponse wraps a card with its shareable hash id
type cardResponse struct {
	models.Card
	HashID string `json:"hash_id"`
}

func (h *CardHandler) toResponse(card models.Card) cardResponse {
	slug, _ := h.hashids.Encode(int64(card.ID))
	return cardResponse{Card: card, HashID: slug}
}

// CreateCard posts a card into a stack and records the card.create
// activity that fans out to the stack's subscribers.
func (h *CardHandler) CreateCard(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stackID, err := parseUintParam(c, "stack_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid stack ID")
	}
	stack, err := h.stackRepository.GetStackByID(stackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Stack not found")
	}

	var req models.CreateCardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card := &models.Card{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		StackID:     stack.ID,
		UserID:      userID,
	}
	if err := h.cardRepository.CreateCard(card); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	_, err = h.tracker.Track(c.Request().Context(), models.ActionCardCreate, userID,
		models.Ref{Type: models.SubjectCard, ID: card.ID},
		models.Ref{Type: models.SubjectStack, ID: stack.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, h.toResponse(*card))
}

// GetStackCards returns a stack's cards, paginated
func (h *CardHandler) GetStackCards(c echo.Context) error {
	stackID, err := parseUintParam(c, "stack_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid stack ID")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	cards, total, err := h.cardRepository.GetCardsByStackID(stackID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses := make([]cardResponse, len(cards))
	for i, card := range cards {
		responses[i] = h.toResponse(card)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cards": responses,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetCard looks up a card by its hash id
func (h *CardHandler) GetCard(c echo.Context) error {
	card, err := h.cardFromHashID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(*card))
}

// VoteCard casts or flips the current user's vote on a card and records
// the matching card.up_vote or card.down_vote activity.
func (h *CardHandler) VoteCard(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	card, err := h.cardFromHashID(c)
	if err != nil {
		return err
	}

	var req models.CreateVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vote, err := h.voteRepository.VoteBy(models.SubjectCard, card.ID, userID, req.Kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	action := models.ActionCardUpVote
	if req.Kind == models.VoteDown {
		action = models.ActionCardDownVote
	}
	_, err = h.tracker.Track(c.Request().Context(), action, userID,
		models.Ref{Type: models.SubjectCard, ID: card.ID},
		models.Ref{Type: models.SubjectStack, ID: card.StackID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, vote)
}

// FlagCard reports a card. Flags are administrative: the card.flag
// activity is recorded for the audit trail but notifies nobody.
func (h *CardHandler) FlagCard(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	card, err := h.cardFromHashID(c)
	if err != nil {
		return err
	}

	flag, created, err := h.flagRepository.FlagBy(models.SubjectCard, card.ID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if created {
		if err := h.cardRepository.IncrementFlagsCount(card.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		_, err = h.tracker.Track(c.Request().Context(), models.ActionCardFlag, userID,
			models.Ref{Type: models.SubjectCard, ID: card.ID},
			models.Ref{Type: models.SubjectStack, ID: card.StackID})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusCreated, flag)
	}
	return c.JSON(http.StatusOK, flag)
}

func (h *CardHandler) cardFromHashID(c echo.Context) (*models.Card, error) {
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
