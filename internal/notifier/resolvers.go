package notifier

import (
	"context"
	"errors"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"gorm.io/gorm"
)

// gone reports whether a lookup failed because the record was deleted
// between activity creation and processing. That case resolves to an
// empty recipient set, never an error.
func gone(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// CardVote notifies the card owner about an up or down vote on their
// card, unless the owner is the voter. Subject is the card.
type CardVote struct {
	cards repositories.CardRepository
}

func NewCardVote(cards repositories.CardRepository) *CardVote {
	return &CardVote{cards: cards}
}

func (r *CardVote) Resolve(_ context.Context, activity *models.Activity) ([]Recipient, error) {
	card, err := r.cards.GetCardByID(activity.Trackable.ID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if card.UserID == activity.OwnerID {
		return nil, nil // no self-notification
	}
	return []Recipient{{
		UserID:  card.UserID,
		Subject: models.Ref{Type: models.SubjectCard, ID: card.ID},
	}}, nil
}

// CommentVote notifies the comment owner about a vote on their comment,
// unless the owner is the voter. Subject is the comment.
type CommentVote struct {
	comments repositories.CommentRepository
}

func NewCommentVote(comments repositories.CommentRepository) *CommentVote {
	return &CommentVote{comments: comments}
}

func (r *CommentVote) Resolve(_ context.Context, activity *models.Activity) ([]Recipient, error) {
	comment, err := r.comments.GetCommentByID(activity.Trackable.ID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if comment.UserID == activity.OwnerID {
		return nil, nil
	}
	return []Recipient{{
		UserID:  comment.UserID,
		Subject: models.Ref{Type: models.SubjectComment, ID: comment.ID},
	}}, nil
}

// CardCreate notifies every subscriber of the stack the card was posted
// into, plus the stack owner, excluding the card's author. Subject is the
// new card.
type CardCreate struct {
	cards         repositories.CardRepository
	stacks        repositories.StackRepository
	subscriptions repositories.SubscriptionRepository
}

func NewCardCreate(cards repositories.CardRepository, stacks repositories.StackRepository, subscriptions repositories.SubscriptionRepository) *CardCreate {
	return &CardCreate{cards: cards, stacks: stacks, subscriptions: subscriptions}
}

func (r *CardCreate) Resolve(_ context.Context, activity *models.Activity) ([]Recipient, error) {
	card, err := r.cards.GetCardByID(activity.Trackable.ID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stack, err := r.stacks.GetStackByID(activity.Recipient.ID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	subscriberIDs, err := r.subscriptions.SubscriberIDs(stack.ID)
	if err != nil {
		return nil, err
	}

	subject := models.Ref{Type: models.SubjectCard, ID: card.ID}
	extra := map[string]interface{}{"stack_id": stack.ID}

	recipients := make([]Recipient, 0, len(subscriberIDs)+1)
	added := make(map[uint]bool, len(subscriberIDs)+1)
	for _, userID := range append(subscriberIDs, stack.UserID) {
		if userID == card.UserID || added[userID] {
			continue
		}
		added[userID] = true
		recipients = append(recipients, Recipient{UserID: userID, Subject: subject, Extra: extra})
	}
	return recipients, nil
}

// CommentCreate notifies the card owner about a new comment on their
// card, unless the owner is the commenter. Subject is the comment.
type CommentCreate struct {
	comments repositories.CommentRepository
	cards    repositories.CardRepository
}

func NewCommentCreate(comments repositories.CommentRepository, cards repositories.CardRepository) *CommentCreate {
	return &CommentCreate{comments: comments, cards: cards}
}

func (r *CommentCreate) Resolve(_ context.Context, activity *models.Activity) ([]Recipient, error) {
	comment, err := r.comments.GetCommentByID(activity.Trackable.ID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	card, err := r.cards.GetCardByID(comment.CardID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if card.UserID == activity.OwnerID {
		return nil, nil
	}
	return []Recipient{{
		UserID:  card.UserID,
		Subject: models.Ref{Type: models.SubjectComment, ID: comment.ID},
	}}, nil
}

// SubscriptionCreate notifies the stack owner about a new subscriber,
// unless the owner subscribed to their own stack. Subject is the stack.
type SubscriptionCreate struct {
	stacks repositories.StackRepository
}

func NewSubscriptionCreate(stacks repositories.StackRepository) *SubscriptionCreate {
	return &SubscriptionCreate{stacks: stacks}
}

func (r *SubscriptionCreate) Resolve(_ context.Context, activity *models.Activity) ([]Recipient, error) {
	stack, err := r.stacks.GetStackByID(activity.Recipient.ID)
	if gone(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if stack.UserID == activity.OwnerID {
		return nil, nil
	}
	return []Recipient{{
		UserID:  stack.UserID,
		Subject: models.Ref{Type: models.SubjectStack, ID: stack.ID},
	}}, nil
}

// CardFlag is administrative only: flags are counted on the card but no
// end-user notification is generated.
type CardFlag struct{}

func NewCardFlag() *CardFlag {
	return &CardFlag{}
}

func (r *CardFlag) Resolve(context.Context, *models.Activity) ([]Recipient, error) {
	return nil, nil
}
