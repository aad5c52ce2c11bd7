// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/accent-vote/models"
)

// fetchTimeout bounds a shared backend query once it no longer follows the
// context of the caller that started it.
const fetchTimeout = 5 * time.Second

// CachedStore memoizes catalog lookups for ttl. Concurrent misses for the
// same key share one backend query. Misses are not cached, so newly added
// rows become visible immediately.
//
// The shared query is detached from the cancellation of whichever caller
// started it; each caller only stops waiting when its own context is done.
type CachedStore struct {
	next  Store
	cache *gocache.Cache
	group singleflight.Group
}

func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedStore) GetSubject(ctx context.Context, id int64) (models.Subject, error) {
	key := "s:" + strconv.FormatInt(id, 10)
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		return c.next.GetSubject(ctx, id)
	})
	if err != nil {
		return models.Subject{}, err
	}
	return v.(models.Subject), nil
}

func (c *CachedStore) GetOption(ctx context.Context, id int64) (models.Option, error) {
	key := "o:" + strconv.FormatInt(id, 10)
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		return c.next.GetOption(ctx, id)
	})
	if err != nil {
		return models.Option{}, err
	}
	return v.(models.Option), nil
}

func (c *CachedStore) GetOptionBySubjectAndKey(ctx context.Context, subjectID int64, semanticKey string) (models.Option, error) {
	key := "k:" + strconv.FormatInt(subjectID, 10) + ":" + semanticKey
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		return c.next.GetOptionBySubjectAndKey(ctx, subjectID, semanticKey)
	})
	if err != nil {
		return models.Option{}, err
	}
	return v.(models.Option), nil
}

func (c *CachedStore) load(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if v, found := c.cache.Get(key); found {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
