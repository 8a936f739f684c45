package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/pkg/captions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNotificationRepo records the repository calls the handler makes.
type stubNotificationRepo struct {
	notifications []models.Notification
	total         int64
	unread        int64
	updated       int64

	gotUserID uint
	gotBefore time.Time
	gotPage   int
	gotLimit  int
}

func (s *stubNotificationRepo) FindByIdentity(uint, string, models.Ref) (*models.Notification, error) {
	return nil, nil
}
func (s *stubNotificationRepo) CreateNotification(*models.Notification) error { return nil }
func (s *stubNotificationRepo) MergeSender(uint, string, uint) error          { return nil }
func (s *stubNotificationRepo) GetNotificationByID(uint) (*models.Notification, error) {
	return nil, nil
}

func (s *stubNotificationRepo) GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error) {
	s.gotUserID = userID
	s.gotPage = page
	s.gotLimit = limit
	return s.notifications, s.total, nil
}

func (s *stubNotificationRepo) GetUnreadCount(userID uint) (int64, error) {
	s.gotUserID = userID
	return s.unread, nil
}

func (s *stubNotificationRepo) MarkAllRead(userID uint, before time.Time) (int64, error) {
	s.gotUserID = userID
	s.gotBefore = before
	return s.updated, nil
}

func (s *stubNotificationRepo) MarkAllSeen(userID uint, before time.Time) (int64, error) {
	s.gotUserID = userID
	s.gotBefore = before
	return s.updated, nil
}

func (s *stubNotificationRepo) SetSentAt(uint, time.Time) error { return nil }

func notificationRequest(method, target, body string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func newTestNotificationHandler(repo *stubNotificationRepo) *NotificationHandler {
	presenter := notifier.NewPresenter(nil, nil, nil, nil, captions.NewEnglish(), 3)
	return NewNotificationHandler(repo, presenter)
}

func TestGetUnreadCount(t *testing.T) {
	repo := &stubNotificationRepo{unread: 5}
	h := newTestNotificationHandler(repo)

	c, rec := notificationRequest(http.MethodGet, "/notifications/unread-count", "", 7)
	require.NoError(t, h.GetUnreadCount(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, repo.gotUserID)
	assert.JSONEq(t, `{"unread_count":5}`, rec.Body.String())
}

func TestGetNotificationsPagination(t *testing.T) {
	repo := &stubNotificationRepo{total: 45}
	h := newTestNotificationHandler(repo)

	c, rec := notificationRequest(http.MethodGet, "/notifications?page=2&limit=20", "", 7)
	require.NoError(t, h.GetNotifications(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, repo.gotPage)
	assert.Equal(t, 20, repo.gotLimit)
	assert.Contains(t, rec.Body.String(), `"total_pages":3`)
}

func TestGetNotificationsClampsBadPaging(t *testing.T) {
	repo := &stubNotificationRepo{}
	h := newTestNotificationHandler(repo)

	c, _ := notificationRequest(http.MethodGet, "/notifications?page=0&limit=500", "", 7)
	require.NoError(t, h.GetNotifications(c))

	assert.Equal(t, 1, repo.gotPage)
	assert.Equal(t, 20, repo.gotLimit)
}

func TestMarkAllAsReadDefaultsCutoffToNow(t *testing.T) {
	repo := &stubNotificationRepo{updated: 3}
	h := newTestNotificationHandler(repo)

	before := time.Now().UTC()
	c, rec := notificationRequest(http.MethodPut, "/notifications/read-all", "{}", 7)
	require.NoError(t, h.MarkAllAsRead(c))
	after := time.Now().UTC()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, repo.gotUserID)
	assert.False(t, repo.gotBefore.Before(before))
	assert.False(t, repo.gotBefore.After(after))
	assert.JSONEq(t, `{"updated":3}`, rec.Body.String())
}

func TestMarkAllAsReadHonorsExplicitCutoff(t *testing.T) {
	repo := &stubNotificationRepo{}
	h := newTestNotificationHandler(repo)

	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c, _ := notificationRequest(http.MethodPut, "/notifications/read-all", `{"before":"2026-03-01T12:00:00Z"}`, 7)
	require.NoError(t, h.MarkAllAsRead(c))

	assert.True(t, repo.gotBefore.Equal(cutoff))
}

func TestMarkAllAsSeen(t *testing.T) {
	repo := &stubNotificationRepo{updated: 2}
	h := newTestNotificationHandler(repo)

	c, rec := notificationRequest(http.MethodPut, "/notifications/seen-all", "{}", 7)
	require.NoError(t, h.MarkAllAsSeen(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())
}

func TestNotificationEndpointsRequireAuth(t *testing.T) {
	h := newTestNotificationHandler(&stubNotificationRepo{})

	for name, call := range map[string]func(echo.Context) error{
		"notifications": h.GetNotifications,
		"unread-count":  h.GetUnreadCount,
		"read-all":      h.MarkAllAsRead,
		"seen-all":      h.MarkAllAsSeen,
	} {
		c, _ := notificationRequest(http.MethodGet, "/", "", 0)
		err := call(c)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok, name)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code, name)
	}
}
