package notifier

import (
	"context"
	"fmt"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/internal/tasks"
)

// Task names consumed by the notification pipeline.
const (
	TaskProcessActivity = "notifier.process_activity"
	TaskResolveEndpoint = "device.resolve_endpoint"
)

// Tracker records tracked domain actions to the activity log and enqueues
// their asynchronous processing. Recording happens synchronously with the
// triggering action; a record failure is fatal to that action.
type Tracker struct {
	activities repositories.ActivityRepository
	queue      tasks.Enqueuer
}

// NewTracker creates a Tracker
func NewTracker(activities repositories.ActivityRepository, queue tasks.Enqueuer) *Tracker {
	return &Tracker{activities: activities, queue: queue}
}

// Track appends an activity and schedules notification generation for it.
// Returns the activity id.
func (t *Tracker) Track(ctx context.Context, action string, ownerID uint, trackable, recipient models.Ref) (string, error) {
	if !isTracked(action) {
		return "", fmt.Errorf("unknown tracked action %q", action)
	}

	id, err := t.activities.Record(ctx, &models.Activity{
		Action:    action,
		OwnerID:   ownerID,
		Trackable: trackable,
		Recipient: recipient,
	})
	if err != nil {
		return "", fmt.Errorf("recording %s activity: %w", action, err)
	}

	t.queue.Enqueue(TaskProcessActivity, id)
	return id, nil
}

func isTracked(action string) bool {
	for _, tracked := range models.TrackedActions {
		if tracked == action {
			return true
		}
	}
	return false
}
