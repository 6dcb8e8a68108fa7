/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeerrors "github.com/suparena/docstore/errors"
)

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func TestNewQueryConfig(t *testing.T) {
	tests := []struct {
		name    string
		opts    QueryOptions
		wantErr string
	}{
		{name: "partition only", opts: QueryOptions{PartitionKey: "docs#1"}},
		{name: "begins with", opts: QueryOptions{PartitionKey: "docs#1", SortOperator: SortBeginsWith, SortKey: "attr#"}},
		{name: "between", opts: QueryOptions{Index: IndexGSI1, PartitionKey: "p", SortOperator: SortBetween, SortKey: "a", SortKeyEnd: "b"}},
		{name: "missing partition", opts: QueryOptions{}, wantErr: "partition key is required"},
		{name: "unknown index", opts: QueryOptions{PartitionKey: "p", Index: "GSI9"}, wantErr: "unknown index 'GSI9'"},
		{name: "unknown operator", opts: QueryOptions{PartitionKey: "p", SortOperator: "LIKE", SortKey: "a"}, wantErr: "unknown sort operator 'LIKE'"},
		{name: "operator without key", opts: QueryOptions{PartitionKey: "p", SortOperator: SortEquals}, wantErr: "sort key is required"},
		{name: "between without end", opts: QueryOptions{PartitionKey: "p", SortOperator: SortBetween, SortKey: "a"}, wantErr: "upper bound"},
		{name: "between reversed", opts: QueryOptions{PartitionKey: "p", SortOperator: SortBetween, SortKey: "b", SortKeyEnd: "a"}, wantErr: "greater than"},
		{name: "negative limit", opts: QueryOptions{PartitionKey: "p", Limit: -1}, wantErr: "limit"},
		{name: "consistent gsi", opts: QueryOptions{PartitionKey: "p", Index: IndexGSI2, ConsistentRead: true}, wantErr: "secondary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewQueryConfig(tt.opts)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.opts.PartitionKey, cfg.PartitionKey())
				return
			}
			require.Error(t, err)
			assert.True(t, storeerrors.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQueryConfigIsImmutable(t *testing.T) {
	start := key("docs#1", "attr#a")
	projection := []string{"key"}

	cfg, err := NewQueryConfig(QueryOptions{PartitionKey: "docs#1", StartKey: start, Projection: projection, Limit: 10})
	require.NoError(t, err)

	start["PK"] = &types.AttributeValueMemberS{Value: "changed"}
	projection[0] = "changed"
	assert.Equal(t, &types.AttributeValueMemberS{Value: "docs#1"}, cfg.StartKey()["PK"])
	assert.Equal(t, []string{"key"}, cfg.Projection())

	got := cfg.Projection()
	got[0] = "mutated"
	assert.Equal(t, []string{"key"}, cfg.Projection())

	next := cfg.WithStartKey(key("docs#1", "attr#z")).WithLimit(5)
	assert.Equal(t, int32(10), cfg.Limit())
	assert.Equal(t, int32(5), next.Limit())
	assert.Equal(t, &types.AttributeValueMemberS{Value: "attr#a"}, cfg.StartKey()["SK"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "attr#z"}, next.StartKey()["SK"])
	assert.True(t, next.ScanForward())
	assert.Equal(t, cfg.Scope(), next.Scope())
}

func TestQueryConfigScope(t *testing.T) {
	base := QueryOptions{PartitionKey: "acme#attr", Index: IndexGSI1, SortOperator: SortBeginsWith, SortKey: "attr#"}
	cfg, err := NewQueryConfig(base)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*QueryOptions)
	}{
		{"partition", func(o *QueryOptions) { o.PartitionKey = "globex#attr" }},
		{"index", func(o *QueryOptions) { o.Index = IndexGSI2 }},
		{"sort key", func(o *QueryOptions) { o.SortKey = "attr#b" }},
		{"direction", func(o *QueryOptions) { o.Descending = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			other, err := NewQueryConfig(opts)
			require.NoError(t, err)
			assert.NotEqual(t, cfg.Scope(), other.Scope())
		})
	}
}

func TestNewBatchGetConfig(t *testing.T) {
	cfg, err := NewBatchGetConfig(BatchGetOptions{
		Keys: []map[string]types.AttributeValue{key("a", "1"), key("b", "1"), key("a", "1")},
	})
	require.NoError(t, err)

	got := cfg.Keys()
	require.Len(t, got, 2)
	pk, sk, ok := KeyStrings(got[1])
	require.True(t, ok)
	assert.Equal(t, "b", pk)
	assert.Equal(t, "1", sk)

	_, err = NewBatchGetConfig(BatchGetOptions{
		Keys: []map[string]types.AttributeValue{{"PK": &types.AttributeValueMemberS{Value: "a"}}},
	})
	require.Error(t, err)
	assert.True(t, storeerrors.IsValidationError(err))
}

func TestStreamOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []StreamOption
		want StreamOptions
	}{
		{
			name: "defaults",
			want: StreamOptions{BufferSize: 100, PageSize: 100, MaxRetries: 3, RetryBackoff: time.Second},
		},
		{
			name: "overrides",
			opts: []StreamOption{WithBufferSize(0), WithPageSize(25), WithMaxRetries(1), WithRetryBackoff(time.Millisecond)},
			want: StreamOptions{BufferSize: 0, PageSize: 25, MaxRetries: 1, RetryBackoff: time.Millisecond},
		},
		{
			name: "invalid values ignored",
			opts: []StreamOption{WithBufferSize(-1), WithPageSize(0), WithMaxRetries(-2)},
			want: StreamOptions{BufferSize: 100, PageSize: 100, MaxRetries: 3, RetryBackoff: time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewStreamOptions(tt.opts...))
		})
	}
}

func TestStreamProgressRate(t *testing.T) {
	assert.Zero(t, StreamProgress{ItemsProcessed: 10}.Rate())
	assert.Equal(t, 5.0, StreamProgress{ItemsProcessed: 10, Elapsed: 2 * time.Second}.Rate())
}
