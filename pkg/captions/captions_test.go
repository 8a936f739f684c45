package captions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderWithUserNames(t *testing.T) {
	locale := NewEnglish()

	got := locale.Render("card.up_vote", WithUserNames, Params{
		Count:       2,
		UserNames:   "alice and bob",
		SubjectName: "generics",
	})
	assert.Equal(t, "alice and bob upvoted your card generics", got)
}

func TestRenderWithNumbers(t *testing.T) {
	locale := NewEnglish()

	got := locale.Render("subscription.create", WithNumbers, Params{
		Count:       12,
		SubjectName: "golang",
	})
	assert.Equal(t, "12 people subscribed to golang", got)
}

func TestRenderUnknownActionIsEmpty(t *testing.T) {
	locale := NewEnglish()
	assert.Equal(t, "", locale.Render("card.flag", WithUserNames, Params{}))
	assert.Equal(t, "", locale.Render("nope", WithNumbers, Params{}))
}

func TestCovers(t *testing.T) {
	locale := NewEnglish()
	assert.True(t, locale.Covers("card.create"))
	assert.True(t, locale.Covers("comment.up_vote"))
	assert.False(t, locale.Covers("card.flag"))
}
