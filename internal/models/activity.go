package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tracked action keys. Every key recorded to the activity log must have a
// resolver registered for it at startup.
const (
	ActionCardCreate         = "card.create"
	ActionCardUpVote         = "card.up_vote"
	ActionCardDownVote       = "card.down_vote"
	ActionCommentCreate      = "comment.create"
	ActionCommentUpVote      = "comment.up_vote"
	ActionCardFlag           = "card.flag"
	ActionSubscriptionCreate = "subscription.create"
)

// TrackedActions lists every action key the activity log may record.
var TrackedActions = []string{
	ActionCardCreate,
	ActionCardUpVote,
	ActionCardDownVote,
	ActionCommentCreate,
	ActionCommentUpVote,
	ActionCardFlag,
	ActionSubscriptionCreate,
}

// Entity type tags used by polymorphic references.
const (
	SubjectCard    = "card"
	SubjectComment = "comment"
	SubjectStack   = "stack"
)

// Ref is a polymorphic reference to a domain entity.
type Ref struct {
	Type string `bson:"type" json:"type"`
	ID   uint   `bson:"id" json:"id"`
}

// Activity is an immutable record of a tracked action, stored in MongoDB.
// It is appended when the action completes, flipped to processed exactly
// once after notifications have been generated, and never deleted.
type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    string             `bson:"action" json:"action"`
	OwnerID   uint               `bson:"owner_id" json:"owner_id"` // the acting user
	Trackable Ref                `bson:"trackable" json:"trackable"`
	Recipient Ref                `bson:"recipient" json:"recipient"` // context entity, e.g. the stack a card went into
	Processed bool               `bson:"processed" json:"processed"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
