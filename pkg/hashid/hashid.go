// Package hashid encodes card short ids as opaque URL-safe slugs.
package hashid

import (
	"fmt"

	hashids "github.com/speps/go-hashids/v2"
)

// Codec translates numeric short ids to hash slugs and back. It is built
// once at startup from the configured salt and passed to whoever needs it;
// there is no package-level state.
type Codec struct {
	h *hashids.HashID
}

func New(salt string) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("hashid: %w", err)
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	return c.h.EncodeInt64([]int64{id})
}

func (c *Codec) Decode(slug string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(slug)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("hashid: %q does not decode to a single id", slug)
	}
	return ids[0], nil
}
