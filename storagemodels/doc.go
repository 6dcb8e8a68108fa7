/*
Package storagemodels defines the store-independent query and batch
descriptions used throughout docstore.

Key Types:

QueryConfig:
An immutable description of one key-condition query:

	cfg, err := storagemodels.NewQueryConfig(storagemodels.QueryOptions{
	    Index:        storagemodels.IndexGSI1,
	    PartitionKey: "acme#docs#attr#category",
	    SortOperator: storagemodels.SortBeginsWith,
	    SortKey:      "inv",
	    Limit:        25,
	})

	next := cfg.WithStartKey(page.LastEvaluatedKey)

BatchGetConfig:
A validated, de-duplicated list of primary keys:

	cfg, err := storagemodels.NewBatchGetConfig(storagemodels.BatchGetOptions{
	    Keys: []map[string]types.AttributeValue{key1, key2},
	})

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}

None of these types depend on a store client.
*/
package storagemodels
