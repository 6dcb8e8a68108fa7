/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// QueryBuilder provides a fluent interface for building a QueryConfig.
type QueryBuilder struct {
	opts QueryOptions
}

// Query starts a query on the primary index of partition pk.
func Query(pk string) *QueryBuilder {
	return &QueryBuilder{opts: QueryOptions{PartitionKey: pk}}
}

// OnIndex selects the key pair to query.
func (q *QueryBuilder) OnIndex(index Index) *QueryBuilder {
	q.opts.Index = index
	return q
}

// WithSortKey matches the sort key exactly.
func (q *QueryBuilder) WithSortKey(value string) *QueryBuilder {
	return q.sort(SortEquals, value, "")
}

// WithSortKeyPrefix matches sort keys starting with prefix.
func (q *QueryBuilder) WithSortKeyPrefix(prefix string) *QueryBuilder {
	return q.sort(SortBeginsWith, prefix, "")
}

// WithSortKeyBetween matches start <= sort key <= end.
func (q *QueryBuilder) WithSortKeyBetween(start, end string) *QueryBuilder {
	return q.sort(SortBetween, start, end)
}

func (q *QueryBuilder) WithSortKeyGreaterThan(value string) *QueryBuilder {
	return q.sort(SortGreater, value, "")
}

func (q *QueryBuilder) WithSortKeyGreaterOrEqual(value string) *QueryBuilder {
	return q.sort(SortGreaterEqual, value, "")
}

func (q *QueryBuilder) WithSortKeyLessThan(value string) *QueryBuilder {
	return q.sort(SortLess, value, "")
}

func (q *QueryBuilder) WithSortKeyLessOrEqual(value string) *QueryBuilder {
	return q.sort(SortLessEqual, value, "")
}

// WithSortCondition sets an arbitrary operator, for callers that received
// one from their own input.
func (q *QueryBuilder) WithSortCondition(op SortOperator, value, end string) *QueryBuilder {
	return q.sort(op, value, end)
}

func (q *QueryBuilder) sort(op SortOperator, value, end string) *QueryBuilder {
	q.opts.SortOperator = op
	q.opts.SortKey = value
	q.opts.SortKeyEnd = end
	return q
}

// WithLimit sets the page size.
func (q *QueryBuilder) WithLimit(limit int32) *QueryBuilder {
	q.opts.Limit = limit
	return q
}

// Descending returns the highest sort keys first.
func (q *QueryBuilder) Descending() *QueryBuilder {
	q.opts.Descending = true
	return q
}

// WithOrder sets the scan direction.
func (q *QueryBuilder) WithOrder(ascending bool) *QueryBuilder {
	q.opts.Descending = !ascending
	return q
}

// WithStartKey resumes after a previous page.
func (q *QueryBuilder) WithStartKey(key map[string]types.AttributeValue) *QueryBuilder {
	q.opts.StartKey = key
	return q
}

// WithProjection limits the returned attributes.
func (q *QueryBuilder) WithProjection(names ...string) *QueryBuilder {
	q.opts.Projection = append(q.opts.Projection, names...)
	return q
}

// WithConsistentRead asks for a strongly consistent read.
func (q *QueryBuilder) WithConsistentRead() *QueryBuilder {
	q.opts.ConsistentRead = true
	return q
}

// Build validates the query.
func (q *QueryBuilder) Build() (*QueryConfig, error) {
	return NewQueryConfig(q.opts)
}
