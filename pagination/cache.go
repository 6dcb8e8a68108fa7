/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/records"
)

// Cache stores serialized pages by id.
type Cache interface {
	// Read reports false when id is unknown or expired.
	Read(ctx context.Context, id string) (string, bool, error)
	Write(ctx context.Context, id, value string, ttl time.Duration) error
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache builds an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Read(_ context.Context, id string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return "", false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, id)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Write(_ context.Context, id, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = memoryEntry{value: value, expires: c.now().Add(ttl)}
	return nil
}

// cacheRecord is a cached page stored in the table.
type cacheRecord struct {
	ID         string `dynamodbav:"documentId"`
	Value      string `dynamodbav:"value"`
	TimeToLive int64  `dynamodbav:"TimeToLive"`
}

func (r *cacheRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("pagination cache id is required")
	}
	return nil
}

func (r *cacheRecord) PrimaryKey(tenant string) (records.KeyPair, error) {
	return records.KeyPair{PK: keys.Encode(tenant, keys.PrefixPagination+r.ID), SK: keys.SortPagination}, nil
}

func (r *cacheRecord) Secondary1(string) (records.KeyPair, bool, error) {
	return records.KeyPair{}, false, nil
}

func (r *cacheRecord) Secondary2(string) (records.KeyPair, bool, error) {
	return records.KeyPair{}, false, nil
}

// DynamoCache keeps pages in the table so any process can resume them.
// TimeToLive lets the table expire items; reads also check it because
// expiry is not immediate.
type DynamoCache struct {
	store datastore.DataStore
	now   func() time.Time
}

// NewDynamoCache builds a DynamoCache over store.
func NewDynamoCache(store datastore.DataStore) *DynamoCache {
	return &DynamoCache{store: store, now: time.Now}
}

func (c *DynamoCache) Read(ctx context.Context, id string) (string, bool, error) {
	rec := &cacheRecord{ID: id}
	found, err := datastore.GetRecord(ctx, c.store, "", rec)
	if err != nil || !found {
		return "", false, err
	}
	if rec.TimeToLive > 0 && c.now().Unix() >= rec.TimeToLive {
		return "", false, nil
	}
	return rec.Value, true, nil
}

func (c *DynamoCache) Write(ctx context.Context, id, value string, ttl time.Duration) error {
	rec := &cacheRecord{ID: id, Value: value, TimeToLive: c.now().Add(ttl).Unix()}
	return datastore.PutRecord(ctx, c.store, "", rec)
}
