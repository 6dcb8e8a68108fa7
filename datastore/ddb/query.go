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

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

// buildQueryInput translates cfg into a QueryInput on the configured index.
func (d *DynamodbDataStore) buildQueryInput(cfg *storagemodels.QueryConfig) (*sdk.QueryInput, error) {
	idx, err := GetIndexConfig(cfg.Index())
	if err != nil {
		return nil, err
	}

	names := map[string]string{"#pk": idx.PartitionKeyName}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: cfg.PartitionKey()},
	}
	cond := "#pk = :pk"

	switch op := cfg.SortOperator(); op {
	case storagemodels.SortNone:
	case storagemodels.SortBeginsWith:
		names["#sk"] = idx.SortKeyName
		values[":sk"] = &types.AttributeValueMemberS{Value: cfg.SortKey()}
		cond += " AND begins_with(#sk, :sk)"
	case storagemodels.SortBetween:
		names["#sk"] = idx.SortKeyName
		values[":sk"] = &types.AttributeValueMemberS{Value: cfg.SortKey()}
		values[":sk2"] = &types.AttributeValueMemberS{Value: cfg.SortKeyEnd()}
		cond += " AND #sk BETWEEN :sk AND :sk2"
	default:
		names["#sk"] = idx.SortKeyName
		values[":sk"] = &types.AttributeValueMemberS{Value: cfg.SortKey()}
		cond += fmt.Sprintf(" AND #sk %s :sk", op)
	}

	input := &sdk.QueryInput{
		TableName:                 &d.tableName,
		KeyConditionExpression:    aws.String(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(cfg.ScanForward()),
		ExclusiveStartKey:         cfg.StartKey(),
	}
	if idx.IndexName != "" {
		input.IndexName = aws.String(idx.IndexName)
	}
	if cfg.Limit() > 0 {
		input.Limit = aws.Int32(cfg.Limit())
	}
	if cfg.ConsistentRead() {
		input.ConsistentRead = aws.Bool(true)
	}
	if proj := cfg.Projection(); len(proj) > 0 {
		parts := make([]string, 0, len(proj))
		for i, p := range proj {
			ph := fmt.Sprintf("#p%d", i)
			names[ph] = p
			parts = append(parts, ph)
		}
		input.ProjectionExpression = aws.String(strings.Join(parts, ", "))
	}
	return input, nil
}

// Query returns one page of results.
func (d *DynamodbDataStore) Query(ctx context.Context, cfg *storagemodels.QueryConfig) (*datastore.QueryResult, error) {
	input, err := d.buildQueryInput(cfg)
	if err != nil {
		return nil, err
	}
	out, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	d.log.Debug().
		Str("table", d.tableName).
		Str("index", string(cfg.Index())).
		Str("pk", cfg.PartitionKey()).
		Int("count", len(out.Items)).
		Msg("query")

	res := &datastore.QueryResult{Items: out.Items}
	if len(out.LastEvaluatedKey) > 0 {
		res.LastEvaluatedKey = out.LastEvaluatedKey
	}
	return res, nil
}

// Exists reports whether cfg matches any item. A single item is read.
func (d *DynamodbDataStore) Exists(ctx context.Context, cfg *storagemodels.QueryConfig) (bool, error) {
	input, err := d.buildQueryInput(cfg.WithLimit(1))
	if err != nil {
		return false, err
	}
	out, err := d.client.Query(ctx, input)
	if err != nil {
		return false, fmt.Errorf("query error: %w", err)
	}
	return len(out.Items) > 0, nil
}

// DeleteAll deletes every item cfg matches, across all pages. On an index
// query the table keys of the matched items are deleted.
func (d *DynamodbDataStore) DeleteAll(ctx context.Context, cfg *storagemodels.QueryConfig) (int, error) {
	cfg = cfg.WithStartKey(nil)
	total := 0
	for {
		res, err := d.Query(ctx, cfg)
		if err != nil {
			return total, err
		}

		list := make([]records.Item, 0, len(res.Items))
		for _, item := range res.Items {
			list = append(list, tableKey(item))
		}
		if err := d.DeleteKeys(ctx, list); err != nil {
			return total, err
		}
		total += len(list)

		if len(res.LastEvaluatedKey) == 0 {
			return total, nil
		}
		cfg = cfg.WithStartKey(res.LastEvaluatedKey)
	}
}

// DeleteBeginsWith deletes the items of pk whose sort key starts with prefix.
func (d *DynamodbDataStore) DeleteBeginsWith(ctx context.Context, pk, prefix string) (int, error) {
	b := storagemodels.Query(pk).WithProjection(keys.PK, keys.SK)
	if prefix != "" {
		b.WithSortKeyPrefix(prefix)
	}
	cfg, err := b.Build()
	if err != nil {
		return 0, err
	}
	return d.DeleteAll(ctx, cfg)
}

func tableKey(item records.Item) records.Item {
	return records.Item{keys.PK: item[keys.PK], keys.SK: item[keys.SK]}
}
