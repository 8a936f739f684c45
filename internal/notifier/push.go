package notifier

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/pkg/push"
)

// GateConfig tunes push escalation.
type GateConfig struct {
	// VotesInterval throttles vote notifications: push on the first vote
	// and then on every exact multiple of this count.
	VotesInterval int
	// MaxDevices caps the per-recipient device fan-out.
	MaxDevices int
}

// Gate decides whether a notification warrants a push message and fans the
// payload out to the recipient's devices. Delivery is at-most-once effort:
// per-device transport errors are logged and swallowed, and sent_at records
// the attempt, not an acknowledgement.
type Gate struct {
	cfg           GateConfig
	devices       repositories.DeviceRepository
	notifications repositories.NotificationRepository
	votes         repositories.VoteRepository
	transport     push.Transport
	presenter     *Presenter
}

// NewGate creates a Gate
func NewGate(cfg GateConfig, devices repositories.DeviceRepository, notifications repositories.NotificationRepository, votes repositories.VoteRepository, transport push.Transport, presenter *Presenter) *Gate {
	if cfg.VotesInterval < 1 {
		cfg.VotesInterval = 50
	}
	if cfg.MaxDevices < 1 {
		cfg.MaxDevices = 3
	}
	return &Gate{
		cfg:           cfg,
		devices:       devices,
		notifications: notifications,
		votes:         votes,
		transport:     transport,
		presenter:     presenter,
	}
}

// MaybePush evaluates the gate for one notification and stamps sent_at
// after the attempt regardless of delivery outcome. created reports
// whether the upsert that produced the notification made a new row.
func (g *Gate) MaybePush(ctx context.Context, n *models.Notification, created bool) error {
	if g.requirePush(n, created) {
		g.dispatch(ctx, n)
	}
	return g.notifications.SetSentAt(n.ID, time.Now().UTC())
}

// requirePush throttles vote actions to milestones: the first vote on a
// subject, then every VotesInterval-th. Everything else always pushes.
func (g *Gate) requirePush(n *models.Notification, created bool) bool {
	if !isVoteAction(n.Action) || !hasVoteCount(n.SubjectType) {
		return true
	}
	if created {
		return true
	}
	count, err := g.votes.CountVotes(n.SubjectType, n.SubjectID)
	if err != nil {
		log.Printf("vote count lookup failed for %s %d: %v", n.SubjectType, n.SubjectID, err)
		return false
	}
	return count > 0 && count%int64(g.cfg.VotesInterval) == 0
}

func (g *Gate) dispatch(ctx context.Context, n *models.Notification) {
	devices, err := g.devices.RecentWithEndpoint(n.UserID, g.cfg.MaxDevices)
	if err != nil {
		log.Printf("device lookup failed for user %d: %v", n.UserID, err)
		return
	}
	if len(devices) == 0 {
		return
	}

	payload := push.Payload{
		Text:        g.presenter.Caption(n),
		SubjectID:   strconv.FormatUint(uint64(n.SubjectID), 10),
		SubjectType: n.SubjectType,
	}

	seen := make(map[string]bool, len(devices))
	for _, device := range devices {
		if seen[device.EndpointARN] {
			continue
		}
		seen[device.EndpointARN] = true
		if err := g.transport.Publish(ctx, device.EndpointARN, payload); err != nil {
			// best effort per device
			log.Printf("push to device %d failed: %v", device.ID, err)
		}
	}
}

func isVoteAction(action string) bool {
	return strings.Contains(action, "up_vote") || strings.Contains(action, "down_vote")
}

func hasVoteCount(subjectType string) bool {
	return subjectType == models.SubjectCard || subjectType == models.SubjectComment
}
