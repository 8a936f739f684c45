// Package captions renders localized notification text for a tracked
// action. The notification pipeline treats it as an opaque collaborator:
// it asks for an action key plus a phrasing variant and gets a string back.
package captions

import (
	"strconv"
	"strings"
)

// Variant selects the phrasing used for a caption: sender names spelled
// out, or a count when too many distinct senders accumulated.
type Variant string

const (
	WithUserNames Variant = "with_user_names"
	WithNumbers   Variant = "with_numbers"
)

// Params carries the values substituted into a caption template.
type Params struct {
	Count       int
	UserNames   string
	SubjectName string
}

// Renderer builds the display text for an action.
type Renderer interface {
	Render(action string, variant Variant, params Params) string
}

// Locale is a template-map Renderer for a single language.
type Locale struct {
	templates map[string]map[Variant]string
}

// NewEnglish returns the built-in English locale covering every tracked
// action.
func NewEnglish() *Locale {
	return &Locale{templates: map[string]map[Variant]string{
		"card.create": {
			WithUserNames: "{user_names} added a new card to {subject_name}",
			WithNumbers:   "{count} people added new cards to {subject_name}",
		},
		"card.up_vote": {
			WithUserNames: "{user_names} upvoted your card {subject_name}",
			WithNumbers:   "{count} people upvoted your card {subject_name}",
		},
		"card.down_vote": {
			WithUserNames: "{user_names} downvoted your card {subject_name}",
			WithNumbers:   "{count} people downvoted your card {subject_name}",
		},
		"comment.create": {
			WithUserNames: "{user_names} commented on your card",
			WithNumbers:   "{count} people commented on your card",
		},
		"comment.up_vote": {
			WithUserNames: "{user_names} liked your comment",
			WithNumbers:   "{count} people have liked your comment",
		},
		"subscription.create": {
			WithUserNames: "{user_names} subscribed to {subject_name}",
			WithNumbers:   "{count} people subscribed to {subject_name}",
		},
	}}
}

func (l *Locale) Render(action string, variant Variant, params Params) string {
	variants, ok := l.templates[action]
	if !ok {
		return ""
	}
	tmpl, ok := variants[variant]
	if !ok {
		return ""
	}
	r := strings.NewReplacer(
		"{count}", strconv.Itoa(params.Count),
		"{user_names}", params.UserNames,
		"{subject_name}", params.SubjectName,
	)
	return strings.TrimSpace(r.Replace(tmpl))
}

// Covers reports whether the locale has templates for the action. Used at
// startup to catch tracked actions without caption text.
func (l *Locale) Covers(action string) bool {
	_, ok := l.templates[action]
	return ok
}
