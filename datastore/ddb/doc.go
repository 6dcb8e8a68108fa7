/*
Package ddb provides the DynamoDB implementation of datastore.DataStore.

The DynamodbDataStore supports:
  - Single-table design with two sparse GSIs (GSI1PK/GSI1SK, GSI2PK/GSI2SK)
  - Conditional puts (PutIfAbsent) and existence-checked updates
  - Batch reads chunked to 100 keys and batch writes chunked to 25 items,
    with unprocessed keys resubmitted
  - Streaming with retry on throttling

Index attribute names come from IndexConfigs:

	cfg, _ := storagemodels.Query(records.DocumentAttributeIndexPK(tenant, "status")).
	    OnIndex(storagemodels.IndexGSI1).
	    WithSortKeyPrefix("app").
	    Build()
	res, err := store.Query(ctx, cfg)

Streaming:

	results := store.Stream(ctx, cfg,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)

The store only needs the Client interface, so tests can pass the in-memory
client from datastore/mock.
*/
package ddb
