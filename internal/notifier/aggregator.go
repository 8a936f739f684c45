package notifier

import (
	"context"
	"errors"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidNotification marks an upsert that cannot produce a valid
// notification (missing recipient, action or subject). It aborts that one
// upsert only.
var ErrInvalidNotification = errors.New("notification requires a recipient, an action and a subject")

// Aggregator maintains the one-notification-per-(recipient, action,
// subject) invariant. Concurrent upserts for the same tuple are serialized
// by the storage-level unique index: the loser of a create race retries as
// a merge.
type Aggregator struct {
	notifications repositories.NotificationRepository
}

// NewAggregator creates an Aggregator
func NewAggregator(notifications repositories.NotificationRepository) *Aggregator {
	return &Aggregator{notifications: notifications}
}

// Upsert folds an actor into the notification for (userID, action,
// subject), creating it if this is the first qualifying event. Read state
// is ignored: senders accumulate history, not UI state. created reports
// whether a new row was made.
func (a *Aggregator) Upsert(_ context.Context, userID uint, action string, subject models.Ref, actor *models.User, extra map[string]interface{}) (*models.Notification, bool, error) {
	if userID == 0 || action == "" || subject.Type == "" || subject.ID == 0 || actor == nil {
		return nil, false, ErrInvalidNotification
	}

	existing, err := a.notifications.FindByIdentity(userID, action, subject)
	if err == nil {
		return a.merge(existing, actor)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	n := &models.Notification{
		UserID:      userID,
		Action:      action,
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Senders:     datatypes.JSONMap{actor.Username: actor.ID},
	}
	if len(extra) > 0 {
		n.Extra = datatypes.JSONMap(extra)
	}

	err = a.notifications.CreateNotification(n)
	if err == nil {
		return n, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	// lost a create race; the winning row absorbs this actor instead
	existing, err = a.notifications.FindByIdentity(userID, action, subject)
	if err != nil {
		return nil, false, err
	}
	return a.merge(existing, actor)
}

func (a *Aggregator) merge(n *models.Notification, actor *models.User) (*models.Notification, bool, error) {
	if err := a.notifications.MergeSender(n.ID, actor.Username, actor.ID); err != nil {
		return nil, false, err
	}
	n.AddSender(actor.Username, actor.ID)
	return n, false, nil
}
