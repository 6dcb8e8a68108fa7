/*
Package datastore defines the storage contract of docstore.

DataStore works on raw items, map[string]types.AttributeValue, so one
implementation serves every record kind in the table. The record helpers
(PutRecord, GetRecord, QueryRecords, ...) pair it with the records codec:

	doc := &records.Document{DocumentID: id, Path: "a.pdf"}
	if err := datastore.PutRecord(ctx, store, tenant, doc); err != nil {
	    return err
	}

Implementations:
  - ddb: DynamoDB, single-table with two sparse GSIs
  - mock: in-memory DynamoDB client for tests
*/
package datastore
