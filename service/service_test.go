/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/datastore/ddb"
	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/pagination"
)

const tenant = "acme"

var testNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx       context.Context
	client    *mock.Client
	store     *ddb.DynamodbDataStore
	attrs     *AttributeService
	schemas   *SchemaService
	values    *DocumentAttributeService
	documents *DocumentService
	syncs     *SyncService
	mappings  *MappingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := mock.New()
	store := ddb.NewDynamodbDataStore(client, "docstore-test")

	seq := 0
	opts := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
		WithPaginator(pagination.NewPaginator(pagination.NewMemoryCache(), pagination.WithLimits(2, 10))),
	}

	f := &fixture{ctx: context.Background(), client: client, store: store}
	f.attrs = NewAttributeService(store, opts...)
	f.schemas = NewSchemaService(store, f.attrs, opts...)
	f.values = NewDocumentAttributeService(store, f.attrs, f.schemas, opts...)
	f.documents = NewDocumentService(store, opts...)
	f.syncs = NewSyncService(store, 24*time.Hour, opts...)
	f.mappings = NewMappingService(store, f.attrs, opts...)
	return f
}

// define adds STANDARD definitions, failing the test on error.
func (f *fixture) define(t *testing.T, dataType attributes.DataType, list ...string) {
	t.Helper()
	for _, k := range list {
		_, err := f.attrs.Add(f.ctx, tenant, AddAttributeRequest{Key: k, DataType: dataType}, attributes.Access{})
		require.NoError(t, err)
	}
}

var elevated = attributes.Access{Elevated: true}
