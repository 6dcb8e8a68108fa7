/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

// QueryResult is one page of a query.
type QueryResult struct {
	Items []records.Item
	// LastEvaluatedKey resumes the query; nil when the partition is exhausted.
	LastEvaluatedKey map[string]types.AttributeValue
}

// DataStore is the item-level view of the single table.
type DataStore interface {
	// Get returns nil, nil when no item has key.
	Get(ctx context.Context, key records.Item) (records.Item, error)

	Put(ctx context.Context, item records.Item) error

	// PutIfAbsent fails with an already-exists error when the key is taken.
	PutIfAbsent(ctx context.Context, item records.Item) error

	// PutAll writes items in batches. Duplicate keys keep the last item.
	PutAll(ctx context.Context, items []records.Item) error

	// Update applies SET and REMOVE to an existing item. A missing item is
	// reported as not found.
	Update(ctx context.Context, key records.Item, set records.Item, remove []string) error

	Delete(ctx context.Context, key records.Item) error

	DeleteKeys(ctx context.Context, keys []records.Item) error

	// DeleteAll removes every item the query matches, returning the count.
	DeleteAll(ctx context.Context, cfg *storagemodels.QueryConfig) (int, error)

	// DeleteBeginsWith removes the items of pk whose sort key starts with prefix.
	DeleteBeginsWith(ctx context.Context, pk, prefix string) (int, error)

	// BatchGet returns the found items in key order. Missing keys are skipped.
	BatchGet(ctx context.Context, cfg *storagemodels.BatchGetConfig) ([]records.Item, error)

	Query(ctx context.Context, cfg *storagemodels.QueryConfig) (*QueryResult, error)

	// Exists reports whether the query matches at least one item.
	Exists(ctx context.Context, cfg *storagemodels.QueryConfig) (bool, error)

	// Stream delivers every matching item across all pages. The channel is
	// closed when the query is exhausted, fails or ctx ends.
	Stream(ctx context.Context, cfg *storagemodels.QueryConfig, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult
}
