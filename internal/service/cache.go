package service

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xtding233/loot-backend/internal/loot"
	"github.com/xtding233/loot-backend/internal/table"
)

// resultCache memoizes seeded table rolls. A seeded roll is a pure function
// of (table definition, overrides, seed), so entries only go stale on reload.
type resultCache struct {
	lru *expirable.LRU[string, []loot.Item]
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	return &resultCache{
		lru: expirable.NewLRU[string, []loot.Item](size, nil, ttl),
	}
}

func cacheKey(name string, o table.Overrides, seed uint64) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d",
		name, optFloat(o.Luck), optInt(o.Depth), optInt(o.Min), optInt(o.Max), optBool(o.Modify), seed)
}

// Get returns a copy of the cached rewards.
func (c *resultCache) Get(key string) ([]loot.Item, bool) {
	items, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return cloneItems(items), true
}

func (c *resultCache) Set(key string, items []loot.Item) {
	c.lru.Add(key, cloneItems(items))
}

func (c *resultCache) Len() int { return c.lru.Len() }

// Clear removes all entries from the cache.
func (c *resultCache) Clear() { c.lru.Purge() }

func cloneItems(items []loot.Item) []loot.Item {
	out := slices.Clone(items)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

func optFloat(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func optBool(p *bool) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatBool(*p)
}
