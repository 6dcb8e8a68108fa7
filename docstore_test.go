/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/datastore/ddb"
	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/datastore/testmodels"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/service"
	"github.com/suparena/docstore/validation"
)

func newTestStore(t *testing.T, cache string) (*Store, *mock.Client) {
	t.Helper()
	client := mock.New()
	ds := ddb.NewDynamodbDataStore(client, "docstore-test")

	cfg := config.DefaultConfig()
	cfg.TableName = "docstore-test"
	cfg.DefaultPageSize = 2
	cfg.PaginationCache = cache
	require.NoError(t, cfg.Validate())

	return New(ds, cfg.SyncTTL, service.WithPaginator(NewPaginator(ds, cfg))), client
}

func seed(t *testing.T, s *Store) *testmodels.Invoice {
	t.Helper()
	ctx := context.Background()

	for _, a := range testmodels.Definitions() {
		_, err := s.Attributes.Add(ctx, "acme", service.AddAttributeRequest{Key: a.Key, DataType: a.DataType, Type: a.Type},
			attributes.Access{Elevated: true})
		require.NoError(t, err)
	}
	require.NoError(t, s.Schemas.SetSitesSchema(ctx, "acme", "sites", testmodels.SiteSchema(), "admin"))

	inv := testmodels.NewInvoice("inv-1", "invoices/1.pdf", strfmt.DateTime(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)))
	inv.Region = "eu"
	_, err := s.Documents.PutDocument(ctx, "acme", inv.Document())
	require.NoError(t, err)
	require.NoError(t, s.DocumentAttributes.Set(ctx, "acme", service.WriteRequest{
		DocumentID: *inv.ID,
		Values:     inv.Values(),
		Mode:       validation.ModeFull,
	}))
	return inv
}

func TestStoreWiring(t *testing.T) {
	s, _ := newTestStore(t, config.CacheMemory)
	inv := seed(t, s)
	ctx := context.Background()

	values, err := s.DocumentAttributes.List(ctx, "acme", *inv.ID)
	require.NoError(t, err)

	got := map[string]string{}
	for _, v := range values {
		got[v.Key] = v.StringValue
	}
	// status comes from the required default
	assert.Equal(t, map[string]string{"region": "eu", "status": "draft"}, got)
}

func TestStoreSharedPaginator(t *testing.T) {
	s, client := newTestStore(t, config.CacheDynamoDB)
	seed(t, s)
	ctx := context.Background()

	page, err := s.Attributes.Find(ctx, "acme", pagination.Request{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.Next)

	// the page lives in the table, not in process memory
	var cached int
	for _, item := range client.Items("docstore-test") {
		if records.StringField(item, "SK") == "pagination" {
			cached++
		}
	}
	assert.Equal(t, 1, cached)

	next, err := s.Attributes.Find(ctx, "acme", pagination.Request{Next: page.Next})
	require.NoError(t, err)
	assert.Len(t, next.Items, 2)
}

func TestStorePartition(t *testing.T) {
	s, _ := newTestStore(t, config.CacheMemory)
	inv := seed(t, s)
	ctx := context.Background()

	kinds := map[string]int{}
	err := s.Partition(ctx, "acme", "docs#"+*inv.ID, func(e Entry) error {
		require.NoError(t, e.Err)
		kinds[e.Kind]++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"document": 1, "document-attribute": 2}, kinds)

	stop := errors.New("stop")
	err = s.Partition(ctx, "acme", "schemas", func(Entry) error { return stop })
	assert.ErrorIs(t, err, stop)

	assert.Error(t, s.Partition(ctx, "docs", "schemas", func(Entry) error { return nil }))
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
