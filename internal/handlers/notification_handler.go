package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	presenter              *notifier.Presenter
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, presenter *notifier.Presenter) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		presenter:              presenter,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/seen-all", h.MarkAllAsSeen)
}

// EnrichedNotification includes the derived display state, which is
// recomputed from senders on every read rather than persisted
type EnrichedNotification struct {
	models.Notification
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url,omitempty"`
}

func (h *NotificationHandler) enrichNotifications(notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{
			Notification: n,
			Caption:      h.presenter.Caption(&n),
			ImageURL:     h.presenter.ImageURL(&n),
		}
	}
	return enriched
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, err := h.notificationRepository.GetByUserID(userID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": h.enrichNotifications(notifications),
		"total":         total,
		"page":          page,
		"total_pages":   int(math.Ceil(float64(total) / float64(limit))),
	})
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.GetUnreadCount(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}

// cutoffRequest optionally bounds a bulk mark operation; the default
// cutoff is now
type cutoffRequest struct {
	Before *time.Time `json:"before"`
}

func (r *cutoffRequest) cutoff() time.Time {
	if r.Before != nil {
		return *r.Before
	}
	return time.Now().UTC()
}

// MarkAllAsRead stamps read_at on the user's unread notifications created
// at or before the cutoff. Calling it again is a no-op for rows already
// read.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req cutoffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	updated, err := h.notificationRepository.MarkAllRead(userID, req.cutoff())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// MarkAllAsSeen stamps seen_at the same way MarkAllAsRead stamps read_at
func (h *NotificationHandler) MarkAllAsSeen(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req cutoffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	updated, err := h.notificationRepository.MarkAllSeen(userID, req.cutoff())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}
