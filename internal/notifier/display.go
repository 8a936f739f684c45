package notifier

import (
	"strings"

	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/pkg/captions"
)

// genericImageActions lists actions whose single-actor notifications show
// the subject image instead of the actor's avatar.
var genericImageActions = map[string]bool{
	models.ActionSubscriptionCreate: true,
	models.ActionCardCreate:         true,
}

// Presenter computes a notification's derived display state. Caption and
// image are never persisted; they are recomputed from the current senders
// map on every read.
type Presenter struct {
	users        repositories.UserRepository
	cards        repositories.CardRepository
	comments     repositories.CommentRepository
	stacks       repositories.StackRepository
	renderer     captions.Renderer
	sendersLimit int
}

// NewPresenter creates a Presenter. sendersLimit is the most sender names
// spelled out before the caption switches to a count phrasing.
func NewPresenter(users repositories.UserRepository, cards repositories.CardRepository, comments repositories.CommentRepository, stacks repositories.StackRepository, renderer captions.Renderer, sendersLimit int) *Presenter {
	if sendersLimit < 1 {
		sendersLimit = 3
	}
	return &Presenter{
		users:        users,
		cards:        cards,
		comments:     comments,
		stacks:       stacks,
		renderer:     renderer,
		sendersLimit: sendersLimit,
	}
}

// Caption renders the display text for a notification from its senders
func (p *Presenter) Caption(n *models.Notification) string {
	count := n.SendersCount()
	if count == 0 {
		return ""
	}

	params := captions.Params{
		Count:       count,
		SubjectName: p.subjectName(n.Subject()),
	}
	if count <= p.sendersLimit {
		params.UserNames = joinNames(n.SenderNames())
		return p.renderer.Render(n.Action, captions.WithUserNames, params)
	}
	return p.renderer.Render(n.Action, captions.WithNumbers, params)
}

// ImageURL picks the image shown beside a notification: the lone actor's
// avatar, or a generic subject image when there are several actors or the
// action is in the generic list.
func (p *Presenter) ImageURL(n *models.Notification) string {
	switch n.SendersCount() {
	case 0:
		return ""
	case 1:
		if genericImageActions[n.Action] {
			return p.subjectImage(n.Subject())
		}
		for _, v := range n.Senders {
			if user, err := p.users.GetUserByID(asUint(v)); err == nil {
				return user.AvatarURL
			}
		}
		return ""
	default:
		return p.subjectImage(n.Subject())
	}
}

func (p *Presenter) subjectName(subject models.Ref) string {
	switch subject.Type {
	case models.SubjectCard:
		if card, err := p.cards.GetCardByID(subject.ID); err == nil {
			return card.Name
		}
	case models.SubjectStack:
		if stack, err := p.stacks.GetStackByID(subject.ID); err == nil {
			return stack.Name
		}
	}
	// comments have no display name
	return ""
}

func (p *Presenter) subjectImage(subject models.Ref) string {
	switch subject.Type {
	case models.SubjectCard:
		if card, err := p.cards.GetCardByID(subject.ID); err == nil {
			return card.ImageURL
		}
	case models.SubjectStack:
		if stack, err := p.stacks.GetStackByID(subject.ID); err == nil {
			return stack.ImageURL
		}
	case models.SubjectComment:
		if comment, err := p.comments.GetCommentByID(subject.ID); err == nil {
			if card, err := p.cards.GetCardByID(comment.CardID); err == nil {
				return card.ImageURL
			}
		}
	}
	return ""
}

// joinNames renders names as a sentence: "a", "a and b", "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

// asUint normalizes a senders map value, which is uint in memory but
// float64 after a JSON round-trip through the database.
func asUint(v interface{}) uint {
	switch id := v.(type) {
	case uint:
		return id
	case int:
		return uint(id)
	case int64:
		return uint(id)
	case float64:
		return uint(id)
	default:
		return 0
	}
}
