// Package cache memoizes parsed transactions so repeated analyses of the same
// dataset skip the split and dedupe pass.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
)

// Key identifies one parse of one column. Only the settings that change the
// parsed transactions take part; support and triplet limits do not.
type Key struct {
	Dataset   string
	Column    string
	Separator string
	MinItems  int
	MaxItems  int
}

// KeyFor builds the cache key for cfg applied to dataset.
func KeyFor(dataset string, cfg basket.Config) Key {
	return Key{
		Dataset:   dataset,
		Column:    cfg.TransactionColumn,
		Separator: cfg.Separator,
		MinItems:  cfg.MinItems,
		MaxItems:  cfg.MaxItems,
	}
}

// Entry is a cached parse.
type Entry struct {
	Transactions []basket.Transaction
	Stats        basket.ParseStats
}

// ParseCache is a fixed-size LRU of parse results. Safe for concurrent use.
type ParseCache struct {
	lru *lru.Cache[Key, Entry]
}

// New returns a cache holding up to size entries.
func New(size int) (*ParseCache, error) {
	c, err := lru.New[Key, Entry](size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{lru: c}, nil
}

// Get returns the cached parse for k.
func (c *ParseCache) Get(k Key) (Entry, bool) {
	return c.lru.Get(k)
}

// Put stores a parse. Callers must not mutate txs afterwards.
func (c *ParseCache) Put(k Key, txs []basket.Transaction, st basket.ParseStats) {
	c.lru.Add(k, Entry{Transactions: txs, Stats: st})
}

// InvalidateDataset drops every entry for dataset and reports how many went.
func (c *ParseCache) InvalidateDataset(dataset string) int {
	n := 0
	for _, k := range c.lru.Keys() {
		if k.Dataset == dataset && c.lru.Remove(k) {
			n++
		}
	}
	return n
}

// Len reports the number of cached parses.
func (c *ParseCache) Len() int { return c.lru.Len() }
