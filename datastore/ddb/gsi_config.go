/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/storagemodels"
)

// IndexConfig holds the attribute names of one key pair.
type IndexConfig struct {
	// IndexName is the GSI name in DynamoDB, empty for the table key.
	IndexName string
	// PartitionKeyName is the partition key attribute (e.g. "GSI1PK").
	PartitionKeyName string
	// SortKeyName is the sort key attribute (e.g. "GSI1SK").
	SortKeyName string
}

// IndexConfigs maps each queryable index to its attribute names.
var IndexConfigs = map[storagemodels.Index]IndexConfig{
	storagemodels.IndexPrimary: {
		PartitionKeyName: keys.PK,
		SortKeyName:      keys.SK,
	},
	storagemodels.IndexGSI1: {
		IndexName:        keys.GSI1,
		PartitionKeyName: keys.GSI1PK,
		SortKeyName:      keys.GSI1SK,
	},
	storagemodels.IndexGSI2: {
		IndexName:        keys.GSI2,
		PartitionKeyName: keys.GSI2PK,
		SortKeyName:      keys.GSI2SK,
	},
}

// GetIndexConfig returns the configuration for index.
func GetIndexConfig(index storagemodels.Index) (IndexConfig, error) {
	cfg, ok := IndexConfigs[index]
	if !ok {
		return IndexConfig{}, fmt.Errorf("no index configuration for %q", index)
	}
	return cfg, nil
}
