package testutils

import (
	"errors"
	"sync"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// ErrInjected is returned by FailingCodec.
var ErrInjected = errors.New("injected codec failure")

// FailingCodec wraps the JSON codec and fails the Nth Encode call (zero
// based) when FailEncodeAt is non-negative, and every Decode when FailDecode
// is set.
type FailingCodec struct {
	FailEncodeAt int
	FailDecode   bool

	mu      sync.Mutex
	encodes int
	inner   llm.JSONCodec
}

// NewFailingCodec returns a codec that fails the encode at index n.
func NewFailingCodec(n int) *FailingCodec {
	return &FailingCodec{FailEncodeAt: n}
}

func (c *FailingCodec) Encode(msg *llm.Message) (string, error) {
	c.mu.Lock()
	i := c.encodes
	c.encodes++
	c.mu.Unlock()

	if c.FailEncodeAt >= 0 && i == c.FailEncodeAt {
		return "", ErrInjected
	}
	return c.inner.Encode(msg)
}

func (c *FailingCodec) Decode(data string) (llm.Message, error) {
	if c.FailDecode {
		return llm.Message{}, ErrInjected
	}
	return c.inner.Decode(data)
}

var _ llm.Codec = (*FailingCodec)(nil)
