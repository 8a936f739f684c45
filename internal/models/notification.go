package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

// Notification is an aggregated, per-recipient record of one or more
// actors performing the same action on the same subject. The unique index
// over (user_id, action, subject_type, subject_id) is the serialization
// point for concurrent upserts.
type Notification struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	UserID      uint              `json:"user_id" gorm:"not null;uniqueIndex:idx_notifications_identity"`
	Action      string            `json:"action" gorm:"size:50;not null;uniqueIndex:idx_notifications_identity"`
	SubjectType string            `json:"subject_type" gorm:"size:20;not null;uniqueIndex:idx_notifications_identity"`
	SubjectID   uint              `json:"subject_id" gorm:"not null;uniqueIndex:idx_notifications_identity"`
	Senders     datatypes.JSONMap `json:"senders"`         // username -> user id, one key per distinct actor
	Extra       datatypes.JSONMap `json:"extra,omitempty"` // free-form side data set at creation
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	SeenAt      *time.Time        `json:"seen_at,omitempty"`
	SentAt      *time.Time        `json:"sent_at,omitempty"` // push attempted
	CreatedAt   time.Time         `json:"created_at" gorm:"index"`
}

// Subject returns the notification's polymorphic subject reference.
func (n *Notification) Subject() Ref {
	return Ref{Type: n.SubjectType, ID: n.SubjectID}
}

// AddSender merges an actor into the senders map. Re-adding the same actor
// overwrites the same key and is a no-op in effect.
func (n *Notification) AddSender(username string, userID uint) {
	if username == "" {
		return
	}
	if n.Senders == nil {
		n.Senders = datatypes.JSONMap{}
	}
	n.Senders[username] = userID
}

// SendersCount is the number of distinct actors recorded.
func (n *Notification) SendersCount() int {
	return len(n.Senders)
}

// SenderNames returns the recorded actor names in stable order.
func (n *Notification) SenderNames() []string {
	names := make([]string, 0, len(n.Senders))
	for name := range n.Senders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

func (n *Notification) Seen() bool {
	return n.SeenAt != nil
}

func (n *Notification) Sent() bool {
	return n.SentAt != nil
}
