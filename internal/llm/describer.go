package llm

import (
	"context"
	"fmt"

	"github.com/nfreytag/storyweaver/internal/cache"
	"github.com/nfreytag/storyweaver/internal/worker"
)

// Describer generates entity descriptions through a provider, memoizing
// results in a cache and throttling calls through a shared limiter. A nil
// cache or limiter disables that aspect.
type Describer struct {
	provider Provider
	cache    cache.Cache
	limiter  *worker.Limiter
}

// NewDescriber wires a provider with optional caching and rate limiting.
func NewDescriber(provider Provider, c cache.Cache, limiter *worker.Limiter) *Describer {
	return &Describer{provider: provider, cache: c, limiter: limiter}
}

// DescribeElement returns a description for the entity, from cache when the
// same entity with the same mentions was described before.
func (d *Describer) DescribeElement(ctx context.Context, kind, name string, mentions []string) (string, error) {
	if d.provider == nil {
		return "", fmt.Errorf("no provider configured")
	}

	key := cache.Key(append([]string{d.provider.Name(), kind, name}, mentions...)...)
	if d.cache != nil {
		if cached, found := d.cache.Get(key); found {
			return string(cached), nil
		}
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, d.provider.Name()); err != nil {
			return "", err
		}
	}

	resp, err := d.provider.Describe(ctx, DescribeRequest{
		Kind:     kind,
		Name:     name,
		Mentions: mentions,
	})
	if err != nil {
		return "", err
	}

	if d.cache != nil {
		_ = d.cache.Set(key, []byte(resp.Description), 0)
	}
	return resp.Description, nil
}
