// Package notifier turns recorded activities into per-recipient
// notifications and decides which of them become push messages.
//
// Processing runs asynchronously, one task per activity, and is idempotent:
// re-delivering an activity merges into existing notifications instead of
// duplicating them, and the processed flag on the activity gates push
// evaluation so a redelivery after a successful run stays quiet.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"gorm.io/gorm"
)

// Recipient is one resolved notification target: who to notify, about
// which subject, with optional side data stored on first creation.
type Recipient struct {
	UserID  uint
	Subject models.Ref
	Extra   map[string]interface{}
}

// Resolver computes the recipients for one kind of activity. It must
// tolerate the trackable having been deleted between recording and
// processing by returning an empty set, not an error.
type Resolver interface {
	Resolve(ctx context.Context, activity *models.Activity) ([]Recipient, error)
}

// Processor routes an activity to its resolver, upserts a notification
// per recipient, marks the activity processed and evaluates the push gate.
type Processor struct {
	registry   map[string]Resolver
	activities repositories.ActivityRepository
	users      repositories.UserRepository
	aggregator *Aggregator
	gate       *Gate
}

// NewProcessor creates a Processor with an empty resolver registry
func NewProcessor(activities repositories.ActivityRepository, users repositories.UserRepository, aggregator *Aggregator, gate *Gate) *Processor {
	return &Processor{
		registry:   make(map[string]Resolver),
		activities: activities,
		users:      users,
		aggregator: aggregator,
		gate:       gate,
	}
}

// Register binds an action key to its resolver. Duplicate registration is
// a programming error.
func (p *Processor) Register(action string, r Resolver) {
	if _, dup := p.registry[action]; dup {
		log.Fatalf("resolver for action %q registered twice", action)
	}
	p.registry[action] = r
}

// ValidateRegistry checks that every tracked action has a resolver. Called
// at startup; a recorded action without a resolver is a configuration
// error, not something to discover at dispatch time.
func (p *Processor) ValidateRegistry() error {
	for _, action := range models.TrackedActions {
		if _, ok := p.registry[action]; !ok {
			return fmt.Errorf("no resolver registered for tracked action %q", action)
		}
	}
	return nil
}

type upserted struct {
	notification *models.Notification
	created      bool
}

// Process generates notifications for one recorded activity and returns
// the ids of the notifications it created or updated. Safe to call again
// for the same activity: upserts merge, and push evaluation only happens
// on the call that flips the processed flag.
func (p *Processor) Process(ctx context.Context, activityID string) ([]uint, error) {
	activity, err := p.activities.GetActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	resolver, ok := p.registry[activity.Action]
	if !ok {
		// ValidateRegistry runs at startup, so this means the log holds
		// an action recorded by a newer deployment
		return nil, fmt.Errorf("no resolver for action %q", activity.Action)
	}

	actor, err := p.users.GetUserByID(activity.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// acting user deleted before processing: nothing to notify
			_, merr := p.activities.MarkProcessed(ctx, activityID)
			return nil, merr
		}
		return nil, err
	}

	recipients, err := resolver.Resolve(ctx, activity)
	if err != nil {
		return nil, err
	}

	results := make([]upserted, 0, len(recipients))
	for _, recipient := range recipients {
		n, created, err := p.aggregator.Upsert(ctx, recipient.UserID, activity.Action, recipient.Subject, actor, recipient.Extra)
		if errors.Is(err, ErrInvalidNotification) {
			// bad single recipient tuple; siblings still get notified
			log.Printf("skipping invalid notification for activity %s user %d: %v", activityID, recipient.UserID, err)
			continue
		}
		if err != nil {
			// leave the activity unprocessed so the queue retries it wholesale
			return nil, err
		}
		results = append(results, upserted{notification: n, created: created})
	}

	flipped, err := p.activities.MarkProcessed(ctx, activityID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.notification.ID)
	}

	if !flipped {
		// redelivery of an already-processed activity
		return ids, nil
	}

	for _, res := range results {
		if err := p.gate.MaybePush(ctx, res.notification, res.created); err != nil {
			log.Printf("push evaluation failed for notification %d: %v", res.notification.ID, err)
		}
	}

	return ids, nil
}
