/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
)

// BatchGetOptions lists primary keys to fetch in one logical call.
type BatchGetOptions struct {
	Keys           []map[string]types.AttributeValue
	Projection     []string
	ConsistentRead bool
}

// BatchGetConfig is a validated BatchGetOptions with duplicate keys removed.
// Key order is preserved.
type BatchGetConfig struct {
	keys           []map[string]types.AttributeValue
	projection     []string
	consistentRead bool
}

// NewBatchGetConfig validates that every key carries string PK and SK
// values. Duplicate keys are dropped after their first occurrence.
func NewBatchGetConfig(opts BatchGetOptions) (*BatchGetConfig, error) {
	var errs storeerrors.ValidationErrors
	seen := make(map[string]struct{}, len(opts.Keys))
	list := make([]map[string]types.AttributeValue, 0, len(opts.Keys))

	for _, key := range opts.Keys {
		pk, sk, ok := KeyStrings(key)
		if !ok {
			errs.Add("keys", "every key requires string 'PK' and 'SK' values")
			continue
		}
		id := pk + "\x00" + sk
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		list = append(list, copyKey(key))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &BatchGetConfig{
		keys:           list,
		projection:     append([]string(nil), opts.Projection...),
		consistentRead: opts.ConsistentRead,
	}, nil
}

// Keys returns the de-duplicated keys in request order.
func (c *BatchGetConfig) Keys() []map[string]types.AttributeValue {
	out := make([]map[string]types.AttributeValue, len(c.keys))
	for i, k := range c.keys {
		out[i] = copyKey(k)
	}
	return out
}

func (c *BatchGetConfig) Projection() []string { return append([]string(nil), c.projection...) }
func (c *BatchGetConfig) ConsistentRead() bool { return c.consistentRead }

// KeyStrings extracts the PK and SK string values of a primary key.
func KeyStrings(key map[string]types.AttributeValue) (pk, sk string, ok bool) {
	p, okP := key[keys.PK].(*types.AttributeValueMemberS)
	s, okS := key[keys.SK].(*types.AttributeValueMemberS)
	if !okP || !okS || p.Value == "" || s.Value == "" {
		return "", "", false
	}
	return p.Value, s.Value, true
}
