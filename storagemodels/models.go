/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storeerrors "github.com/suparena/docstore/errors"
)

// Index selects the key pair a query runs against.
type Index string

const (
	IndexPrimary Index = ""
	IndexGSI1    Index = "GSI1"
	IndexGSI2    Index = "GSI2"
)

// Valid reports whether i is a known index.
func (i Index) Valid() bool {
	return i == IndexPrimary || i == IndexGSI1 || i == IndexGSI2
}

// SortOperator is the condition applied to the sort key.
type SortOperator string

const (
	SortNone         SortOperator = ""
	SortEquals       SortOperator = "="
	SortBeginsWith   SortOperator = "begins_with"
	SortBetween      SortOperator = "BETWEEN"
	SortLess         SortOperator = "<"
	SortLessEqual    SortOperator = "<="
	SortGreater      SortOperator = ">"
	SortGreaterEqual SortOperator = ">="
)

// Valid reports whether o is a known operator.
func (o SortOperator) Valid() bool {
	switch o {
	case SortNone, SortEquals, SortBeginsWith, SortBetween, SortLess, SortLessEqual, SortGreater, SortGreaterEqual:
		return true
	}
	return false
}

// QueryOptions is the caller-facing description of a query. It is turned
// into an immutable QueryConfig by NewQueryConfig.
type QueryOptions struct {
	// Index is the key pair to query. The zero value is the table's primary key.
	Index Index
	// PartitionKey is the exact partition value.
	PartitionKey string
	// SortOperator and SortKey restrict the sort key. SortKeyEnd is the
	// inclusive upper bound of SortBetween.
	SortOperator SortOperator
	SortKey      string
	SortKeyEnd   string
	// Descending reverses the sort key order.
	Descending bool
	// Limit caps the items evaluated per page. Zero means the store default.
	Limit int32
	// StartKey resumes after a previous page's LastEvaluatedKey.
	StartKey map[string]types.AttributeValue
	// Projection lists the attributes to return. Empty returns every attribute.
	Projection []string
	// ConsistentRead is only honoured on the primary index.
	ConsistentRead bool
}

// QueryConfig is a validated, immutable query description.
type QueryConfig struct {
	opts QueryOptions
}

// NewQueryConfig validates opts and copies it into a QueryConfig.
func NewQueryConfig(opts QueryOptions) (*QueryConfig, error) {
	var errs storeerrors.ValidationErrors

	if opts.PartitionKey == "" {
		errs.Add("partitionKey", "partition key is required")
	}
	if !opts.Index.Valid() {
		errs.Add("index", fmt.Sprintf("unknown index '%s'", opts.Index))
	}
	if !opts.SortOperator.Valid() {
		errs.Add("sortOperator", fmt.Sprintf("unknown sort operator '%s'", opts.SortOperator))
	}
	if opts.SortOperator != SortNone && opts.SortKey == "" {
		errs.Add("sortKey", "sort key is required with a sort operator")
	}
	if opts.SortOperator == SortBetween {
		if opts.SortKeyEnd == "" {
			errs.Add("sortKeyEnd", "BETWEEN requires an upper bound")
		} else if opts.SortKey > opts.SortKeyEnd {
			errs.Add("sortKeyEnd", "BETWEEN lower bound is greater than upper bound")
		}
	}
	if opts.Limit < 0 {
		errs.Add("limit", "limit must not be negative")
	}
	if opts.ConsistentRead && opts.Index != IndexPrimary {
		errs.Add("consistentRead", "consistent reads are not supported on secondary indexes")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	opts.StartKey = copyKey(opts.StartKey)
	opts.Projection = append([]string(nil), opts.Projection...)
	return &QueryConfig{opts: opts}, nil
}

func (c *QueryConfig) Index() Index               { return c.opts.Index }
func (c *QueryConfig) PartitionKey() string       { return c.opts.PartitionKey }
func (c *QueryConfig) SortOperator() SortOperator { return c.opts.SortOperator }
func (c *QueryConfig) SortKey() string            { return c.opts.SortKey }
func (c *QueryConfig) SortKeyEnd() string         { return c.opts.SortKeyEnd }
func (c *QueryConfig) ScanForward() bool          { return !c.opts.Descending }
func (c *QueryConfig) Limit() int32               { return c.opts.Limit }
func (c *QueryConfig) ConsistentRead() bool       { return c.opts.ConsistentRead }

// StartKey returns a copy of the resume key, or nil.
func (c *QueryConfig) StartKey() map[string]types.AttributeValue {
	return copyKey(c.opts.StartKey)
}

// Projection returns a copy of the projected attribute names.
func (c *QueryConfig) Projection() []string {
	return append([]string(nil), c.opts.Projection...)
}

// Scope identifies the listing c reads: index, partition and sort condition.
// Limit and start key are excluded.
func (c *QueryConfig) Scope() string {
	return strings.Join([]string{
		string(c.opts.Index),
		c.opts.PartitionKey,
		string(c.opts.SortOperator),
		c.opts.SortKey,
		c.opts.SortKeyEnd,
		strconv.FormatBool(c.opts.Descending),
	}, "|")
}

// WithStartKey returns a copy of c resuming at key.
func (c *QueryConfig) WithStartKey(key map[string]types.AttributeValue) *QueryConfig {
	next := *c
	next.opts.StartKey = copyKey(key)
	return &next
}

// WithLimit returns a copy of c with a new page limit.
func (c *QueryConfig) WithLimit(limit int32) *QueryConfig {
	next := *c
	if limit >= 0 {
		next.opts.Limit = limit
	}
	return &next
}

func copyKey(key map[string]types.AttributeValue) map[string]types.AttributeValue {
	if len(key) == 0 {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(key))
	for k, v := range key {
		out[k] = v
	}
	return out
}
