/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

// PutRecord marshals r for tenant and stores it.
func PutRecord(ctx context.Context, ds DataStore, tenant string, r records.Record) error {
	item, err := records.Marshal(tenant, r)
	if err != nil {
		return err
	}
	return ds.Put(ctx, item)
}

// PutRecordIfAbsent is PutRecord failing when the key is already taken.
func PutRecordIfAbsent(ctx context.Context, ds DataStore, tenant string, r records.Record) error {
	item, err := records.Marshal(tenant, r)
	if err != nil {
		return err
	}
	return ds.PutIfAbsent(ctx, item)
}

// PutRecords marshals and batch-writes rs.
func PutRecords[T records.Record](ctx context.Context, ds DataStore, tenant string, rs []T) error {
	if len(rs) == 0 {
		return nil
	}
	items := make([]records.Item, 0, len(rs))
	for _, r := range rs {
		item, err := records.Marshal(tenant, r)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return ds.PutAll(ctx, items)
}

// GetRecord loads the record whose key r computes into r. It reports false
// when the item does not exist.
func GetRecord(ctx context.Context, ds DataStore, tenant string, r records.Record) (bool, error) {
	key, err := records.Key(tenant, r)
	if err != nil {
		return false, err
	}
	item, err := ds.Get(ctx, key)
	if err != nil || item == nil {
		return false, err
	}
	return true, records.Unmarshal(tenant, item, r)
}

// DeleteRecord removes the item r's key points at.
func DeleteRecord(ctx context.Context, ds DataStore, tenant string, r records.Record) error {
	key, err := records.Key(tenant, r)
	if err != nil {
		return err
	}
	return ds.Delete(ctx, key)
}

// QueryRecords runs one page of cfg and decodes the items.
func QueryRecords[T records.Record](ctx context.Context, ds DataStore, tenant string, cfg *storagemodels.QueryConfig, newRecord func() T) ([]T, *QueryResult, error) {
	res, err := ds.Query(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	out, err := records.UnmarshalAll(tenant, res.Items, newRecord)
	if err != nil {
		return nil, nil, err
	}
	return out, res, nil
}

// QueryAllRecords follows cfg across every page.
func QueryAllRecords[T records.Record](ctx context.Context, ds DataStore, tenant string, cfg *storagemodels.QueryConfig, newRecord func() T) ([]T, error) {
	var out []T
	for {
		page, res, err := QueryRecords(ctx, ds, tenant, cfg, newRecord)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(res.LastEvaluatedKey) == 0 {
			return out, nil
		}
		cfg = cfg.WithStartKey(res.LastEvaluatedKey)
	}
}
