/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

const (
	// MaxBatchGetKeys is the BatchGetItem key limit.
	MaxBatchGetKeys = 100
	// MaxBatchWriteItems is the BatchWriteItem request limit.
	MaxBatchWriteItems = 25
)

// BatchGet fetches the configured keys in chunks and returns the found
// items in key order. Unprocessed keys are resubmitted up to maxRetries
// times per chunk.
func (d *DynamodbDataStore) BatchGet(ctx context.Context, cfg *storagemodels.BatchGetConfig) ([]records.Item, error) {
	list := cfg.Keys()
	if len(list) == 0 {
		return nil, nil
	}

	found := make(map[string]records.Item, len(list))
	for start := 0; start < len(list); start += MaxBatchGetKeys {
		end := min(start+MaxBatchGetKeys, len(list))

		ka := types.KeysAndAttributes{Keys: list[start:end]}
		if cfg.ConsistentRead() {
			ka.ConsistentRead = aws.Bool(true)
		}
		if proj := cfg.Projection(); len(proj) > 0 {
			names := make(map[string]string, len(proj))
			parts := make([]string, 0, len(proj))
			for i, p := range proj {
				ph := fmt.Sprintf("#p%d", i)
				names[ph] = p
				parts = append(parts, ph)
			}
			ka.ProjectionExpression = aws.String(strings.Join(parts, ", "))
			ka.ExpressionAttributeNames = names
		}

		request := map[string]types.KeysAndAttributes{d.tableName: ka}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt > d.maxRetries {
				return nil, fmt.Errorf("BatchGetItem left %d keys unprocessed after %d retries",
					len(request[d.tableName].Keys), d.maxRetries)
			}
			if attempt > 0 {
				d.log.Warn().Str("table", d.tableName).Int("count", len(request[d.tableName].Keys)).
					Int("attempt", attempt).Msg("retrying unprocessed keys")
			}

			out, err := d.client.BatchGetItem(ctx, &sdk.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("BatchGetItem error: %w", err)
			}
			for _, item := range out.Responses[d.tableName] {
				found[keyString(item)] = item
			}
			request = nonEmptyKeys(out.UnprocessedKeys)
		}
	}

	out := make([]records.Item, 0, len(found))
	for _, key := range list {
		if item, ok := found[keyString(key)]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func nonEmptyKeys(m map[string]types.KeysAndAttributes) map[string]types.KeysAndAttributes {
	for table, ka := range m {
		if len(ka.Keys) == 0 {
			delete(m, table)
		}
	}
	return m
}

// PutAll writes items in chunks of 25. Items sharing a key are collapsed to
// the last one, since a batch may not name a key twice.
func (d *DynamodbDataStore) PutAll(ctx context.Context, items []records.Item) error {
	var requests []types.WriteRequest
	index := make(map[string]int, len(items))
	for _, item := range items {
		req := types.WriteRequest{PutRequest: &types.PutRequest{Item: item}}
		k := keyString(item)
		if i, ok := index[k]; ok {
			requests[i] = req
			continue
		}
		index[k] = len(requests)
		requests = append(requests, req)
	}
	return d.batchWrite(ctx, requests)
}

// DeleteKeys deletes items in chunks of 25.
func (d *DynamodbDataStore) DeleteKeys(ctx context.Context, list []records.Item) error {
	var requests []types.WriteRequest
	seen := make(map[string]struct{}, len(list))
	for _, key := range list {
		k := keyString(key)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}
	return d.batchWrite(ctx, requests)
}

func (d *DynamodbDataStore) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += MaxBatchWriteItems {
		end := min(start+MaxBatchWriteItems, len(requests))

		pending := map[string][]types.WriteRequest{d.tableName: requests[start:end]}
		for attempt := 0; len(pending[d.tableName]) > 0; attempt++ {
			if attempt > d.maxRetries {
				return fmt.Errorf("BatchWriteItem left %d requests unprocessed after %d retries",
					len(pending[d.tableName]), d.maxRetries)
			}
			if attempt > 0 {
				d.log.Warn().Str("table", d.tableName).Int("count", len(pending[d.tableName])).
					Int("attempt", attempt).Msg("retrying unprocessed writes")
			}

			out, err := d.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("BatchWriteItem error: %w", err)
			}
			pending = map[string][]types.WriteRequest{d.tableName: out.UnprocessedItems[d.tableName]}
		}
		d.log.Debug().Str("table", d.tableName).Int("count", end-start).Msg("batch write")
	}
	return nil
}
