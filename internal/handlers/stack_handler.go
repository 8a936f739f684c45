package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
)

// StackHandler handles stack and subscription HTTP requests
type StackHandler struct {
	stackRepository        repositories.StackRepository
	subscriptionRepository repositories.SubscriptionRepository
	tracker                *notifier.Tracker
}

// NewStackHandler creates a new StackHandler
func NewStackHandler(stackRepo repositories.StackRepository, subscriptionRepo repositories.SubscriptionRepository, tracker *notifier.Tracker) *StackHandler {
	return &StackHandler{
		stackRepository:        stackRepo,
		subscriptionRepository: subscriptionRepo,
		tracker:                tracker,
	}
}

// RegisterStackRoutes registers stack-related routes
func (h *StackHandler) RegisterStackRoutes(g *echo.Group) {
	g.POST("/stacks", h.CreateStack)
	g.GET("/stacks", h.GetStacks)
	g.GET("/stacks/:id", h.GetStack)
	g.POST("/stacks/:id/subscription", h.Subscribe)
	g.DELETE("/stacks/:id/subscription", h.Unsubscribe)
}

// CreateStack handles creating a new stack
func (h *StackHandler) CreateStack(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateStackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stack := &models.Stack{Name: req.Name, UserID: userID, ImageURL: req.ImageURL}
	if err := h.stackRepository.CreateStack(stack); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, stack)
}

// GetStacks returns paginated stacks
func (h *StackHandler) GetStacks(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	stacks, total, err := h.stackRepository.GetStacks(page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stacks": stacks,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetStack returns a single stack
func (h *StackHandler) GetStack(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid stack ID")
	}

	stack, err := h.stackRepository.GetStackByID(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Stack not found")
	}
	return c.JSON(http.StatusOK, stack)
}

// Subscribe opts the current user into a stack's card notifications. The
// subscription.create activity is only recorded for a fresh subscription.
func (h *StackHandler) Subscribe(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stackID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid stack ID")
	}
	stack, err := h.stackRepository.GetStackByID(stackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Stack not found")
	}

	sub, created, err := h.subscriptionRepository.Subscribe(stack.ID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if created {
		_, err = h.tracker.Track(c.Request().Context(), models.ActionSubscriptionCreate, userID,
			models.Ref{Type: "subscription", ID: sub.ID},
			models.Ref{Type: models.SubjectStack, ID: stack.ID})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusCreated, sub)
	}
	return c.JSON(http.StatusOK, sub)
}

// Unsubscribe removes the current user's subscription to a stack
func (h *StackHandler) Unsubscribe(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stackID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid stack ID")
	}

	if err := h.subscriptionRepository.Unsubscribe(stackID, userID); err != nil {
		if err.Error() == "subscription not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
