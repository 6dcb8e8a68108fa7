/*
Package docstore is a multi-tenant document attribute store on a single
DynamoDB table.

Documents carry typed attribute values. Attribute definitions, a sites
schema and classification schemas govern which values a document may hold,
and composite keys derived from those values are kept in step on every
write. All records of all tenants share one table with two global secondary
indexes; tenants are separated by a key prefix.

The library is layered:
  - keys, records: key encoding and the stored record kinds
  - datastore, datastore/ddb: the item store and its DynamoDB implementation
  - attributes, schema, validation, composite: the attribute rules
  - pagination: opaque resumable tokens
  - service: the operations callers use

Basic Usage:

	cfg, err := config.Load("docstore.yaml")
	if err != nil {
		return err
	}
	store, err := docstore.Open(ctx, cfg)
	if err != nil {
		return err
	}

	_, err = store.Attributes.Add(ctx, "acme", service.AddAttributeRequest{Key: "status"}, attributes.Access{})
	err = store.DocumentAttributes.Set(ctx, "acme", service.WriteRequest{
		DocumentID: "doc-1",
		Values:     []*records.DocumentAttribute{records.NewStringValue("doc-1", "status", "draft")},
		Mode:       validation.ModeFull,
	})

For tests, build a Store over the in-memory client:

	ds := ddb.NewDynamodbDataStore(mock.New(), "docs")
	store := docstore.New(ds, 24*time.Hour)
*/
package docstore
