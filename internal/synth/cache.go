package synth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached remembers recent segment payloads so that retrying a generation does
// not repeat identical service calls. Errors are never cached.
type Cached struct {
	next  Synthesizer
	cache *lru.Cache[string, []byte]
}

// NewCached wraps next with an LRU holding up to size payloads.
func NewCached(next Synthesizer, size int) (*Cached, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create segment cache: %w", err)
	}

	return &Cached{next: next, cache: cache}, nil
}

// cacheKey distinguishes a nil instruction from an empty one.
func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Voice))
	h.Write([]byte{0})

	if req.Instruction == nil {
		h.Write([]byte{0})
	} else {
		h.Write([]byte{1})
		h.Write([]byte(*req.Instruction))
	}

	h.Write([]byte{0})
	h.Write([]byte(req.Text))

	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	key := cacheKey(req)
	if pcm, ok := c.cache.Get(key); ok {
		return pcm, nil
	}

	pcm, err := c.next.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, pcm)

	return pcm, nil
}

// Len reports how many payloads are cached.
func (c *Cached) Len() int { return c.cache.Len() }
