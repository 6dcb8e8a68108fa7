/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/datastore/ddb"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/logging"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/service"
	"github.com/suparena/docstore/storagemodels"
)

// Store bundles the services over one table. All paged listings share one
// paginator, so a token from any service resolves in the same cache.
type Store struct {
	DataStore          datastore.DataStore
	Attributes         *service.AttributeService
	Schemas            *service.SchemaService
	DocumentAttributes *service.DocumentAttributeService
	Documents          *service.DocumentService
	Syncs              *service.SyncService
	Mappings           *service.MappingService

	log zerolog.Logger
}

// New builds a Store over ds. syncTTL is how long sync records live.
func New(ds datastore.DataStore, syncTTL time.Duration, opts ...service.Option) *Store {
	s := &Store{DataStore: ds, log: zerolog.Nop()}

	s.Attributes = service.NewAttributeService(ds, opts...)
	s.Schemas = service.NewSchemaService(ds, s.Attributes, opts...)
	s.DocumentAttributes = service.NewDocumentAttributeService(ds, s.Attributes, s.Schemas, opts...)
	s.Documents = service.NewDocumentService(ds, opts...)
	s.Syncs = service.NewSyncService(ds, syncTTL, opts...)
	s.Mappings = service.NewMappingService(ds, s.Attributes, opts...)
	return s
}

// Open connects to the table cfg names and builds a Store with the
// configured logger and pagination cache.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Endpoint:  cfg.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	ds := ddb.NewDynamodbDataStore(client, cfg.TableName, ddb.WithLogger(log))

	paginator := NewPaginator(ds, cfg)
	s := New(ds, cfg.SyncTTL, service.WithLogger(log), service.WithPaginator(paginator))
	s.log = log

	log.Debug().Str("table", cfg.TableName).Str("region", cfg.Region).Str("cache", cfg.PaginationCache).Msg("store opened")
	return s, nil
}

// NewPaginator builds the paginator cfg describes over ds.
func NewPaginator(ds datastore.DataStore, cfg config.Config) *pagination.Paginator {
	var cache pagination.Cache = pagination.NewMemoryCache()
	if cfg.PaginationCache == config.CacheDynamoDB {
		cache = pagination.NewDynamoCache(ds)
	}
	return pagination.NewPaginator(cache,
		pagination.WithLimits(cfg.DefaultPageSize, cfg.MaxPageSize),
		pagination.WithTTL(cfg.TokenTTL),
	)
}

// Logger returns the logger Open built, or a no-op logger.
func (s *Store) Logger() zerolog.Logger {
	return s.log
}

// Entry is one decoded item of a partition.
type Entry struct {
	Kind   string
	PK     string
	SK     string
	Record records.Record
	// Err is set when the item matched no registered kind or failed to
	// decode.
	Err error
}

// Partition streams every item of the tenant partition id (for example
// "docs#<documentId>" or "schemas") and decodes each through the registry.
// fn is called per item; returning an error stops the walk.
func (s *Store) Partition(ctx context.Context, tenant, id string, fn func(Entry) error) error {
	if err := keys.ValidateTenant(tenant); err != nil {
		return err
	}
	cfg, err := storagemodels.Query(keys.Encode(tenant, id)).Build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	count := 0
	for res := range s.DataStore.Stream(ctx, cfg) {
		if res.Error != nil {
			return fmt.Errorf("failed to read partition %s: %w", id, res.Error)
		}
		e := Entry{
			PK: records.StringField(res.Item, keys.PK),
			SK: records.StringField(res.Item, keys.SK),
		}
		e.Kind, e.Record, e.Err = registry.Resolve(tenant, res.Item)
		if err := fn(e); err != nil {
			return err
		}
		count++
	}

	s.log.Debug().Str("tenant", tenant).Str("partition", id).Int("count", count).Msg("partition read")
	return ctx.Err()
}
