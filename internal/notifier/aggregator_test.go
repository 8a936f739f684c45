package notifier

import (
	"context"
	"testing"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestUpsertCreatesThenMerges(t *testing.T) {
	notifications := newFakeNotifications()
	aggregator := NewAggregator(notifications)
	subject := models.Ref{Type: models.SubjectCard, ID: 9}

	alice := &models.User{ID: 2, Username: "alice"}
	bob := &models.User{ID: 3, Username: "bob"}

	n, created, err := aggregator.Upsert(context.Background(), 1, models.ActionCardUpVote, subject, alice, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"alice"}, n.SenderNames())

	n, created, err = aggregator.Upsert(context.Background(), 1, models.ActionCardUpVote, subject, bob, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"alice", "bob"}, n.SenderNames())
	assert.Equal(t, 1, notifications.count())
}

func TestUpsertLosingCreateRaceMergesIntoWinner(t *testing.T) {
	notifications := newFakeNotifications()
	aggregator := NewAggregator(notifications)
	subject := models.Ref{Type: models.SubjectCard, ID: 9}

	// a concurrent upsert wins the create between our find and our insert
	notifications.raceRow = &models.Notification{
		UserID:      1,
		Action:      models.ActionCardUpVote,
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Senders:     datatypes.JSONMap{"alice": uint(2)},
	}

	bob := &models.User{ID: 3, Username: "bob"}
	n, created, err := aggregator.Upsert(context.Background(), 1, models.ActionCardUpVote, subject, bob, nil)
	require.NoError(t, err)
	assert.False(t, created, "the race loser must merge, not create")
	assert.Equal(t, []string{"alice", "bob"}, n.SenderNames())
	assert.Equal(t, 1, notifications.count())
}

func TestUpsertRejectsIncompleteTuples(t *testing.T) {
	aggregator := NewAggregator(newFakeNotifications())
	actor := &models.User{ID: 2, Username: "alice"}
	subject := models.Ref{Type: models.SubjectCard, ID: 9}

	_, _, err := aggregator.Upsert(context.Background(), 0, models.ActionCardUpVote, subject, actor, nil)
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, _, err = aggregator.Upsert(context.Background(), 1, "", subject, actor, nil)
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, _, err = aggregator.Upsert(context.Background(), 1, models.ActionCardUpVote, models.Ref{}, actor, nil)
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, _, err = aggregator.Upsert(context.Background(), 1, models.ActionCardUpVote, subject, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestUpsertStoresExtraOnCreationOnly(t *testing.T) {
	notifications := newFakeNotifications()
	aggregator := NewAggregator(notifications)
	subject := models.Ref{Type: models.SubjectCard, ID: 9}

	alice := &models.User{ID: 2, Username: "alice"}
	bob := &models.User{ID: 3, Username: "bob"}

	n, _, err := aggregator.Upsert(context.Background(), 1, models.ActionCardCreate, subject, alice, map[string]interface{}{"stack_id": uint(4)})
	require.NoError(t, err)
	assert.EqualValues(t, uint(4), n.Extra["stack_id"])

	// later merges leave the creation-time side data alone
	_, _, err = aggregator.Upsert(context.Background(), 1, models.ActionCardCreate, subject, bob, map[string]interface{}{"stack_id": uint(99)})
	require.NoError(t, err)

	stored, err := notifications.FindByIdentity(1, models.ActionCardCreate, subject)
	require.NoError(t, err)
	assert.EqualValues(t, uint(4), stored.Extra["stack_id"])
}
