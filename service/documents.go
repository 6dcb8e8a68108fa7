/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"time"

	"github.com/suparena/docstore/datastore"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

// DocumentService stores document metadata and tags.
type DocumentService struct {
	store datastore.DataStore
	opts  options
}

// NewDocumentService builds a DocumentService over store.
func NewDocumentService(store datastore.DataStore, opts ...Option) *DocumentService {
	return &DocumentService{store: store, opts: newOptions(opts)}
}

// PutDocument stores doc, assigning an id and inserted date when missing.
// The last modified date is always refreshed.
func (s *DocumentService) PutDocument(ctx context.Context, tenant string, doc *records.Document) (*records.Document, error) {
	d := *doc
	if d.DocumentID == "" {
		d.DocumentID = s.opts.newID()
	}
	now := s.opts.timestamp()
	if d.InsertedDate == "" {
		d.InsertedDate = now
	}
	d.LastModifiedDate = now

	if err := datastore.PutRecord(ctx, s.store, tenant, &d); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("tenant", tenant).Str("document", d.DocumentID).Msg("document stored")
	return &d, nil
}

// GetDocument returns the document, or nil when it does not exist.
func (s *DocumentService) GetDocument(ctx context.Context, tenant, documentID string) (*records.Document, error) {
	d := &records.Document{DocumentID: documentID}
	found, err := datastore.GetRecord(ctx, s.store, tenant, d)
	if err != nil || !found {
		return nil, err
	}
	return d, nil
}

// DeleteDocument removes the document with its tags, values and syncs.
func (s *DocumentService) DeleteDocument(ctx context.Context, tenant, documentID string) error {
	if documentID == "" {
		return storeerrors.NewValidationError("documentId", "'documentId' is required")
	}
	n, err := s.store.DeleteBeginsWith(ctx, records.DocumentPK(tenant, documentID), "")
	if err != nil {
		return err
	}
	if n == 0 {
		return storeerrors.NewNotFoundError("document", documentID)
	}
	s.opts.log.Info().Str("tenant", tenant).Str("document", documentID).Int("count", n).Msg("document deleted")
	return nil
}

// AddTags writes tags onto the document. A tag key already present is
// overwritten.
func (s *DocumentService) AddTags(ctx context.Context, tenant, documentID string, tags []*records.DocumentTag, userID string) error {
	now := s.opts.timestamp()
	list := make([]*records.DocumentTag, 0, len(tags))
	for _, t := range tags {
		c := *t
		c.DocumentID = documentID
		if c.UserID == "" {
			c.UserID = userID
		}
		if c.InsertedDate == "" {
			c.InsertedDate = now
		}
		list = append(list, &c)
	}
	return datastore.PutRecords(ctx, s.store, tenant, list)
}

// FindTags lists the tags of a document ordered by key.
func (s *DocumentService) FindTags(ctx context.Context, tenant, documentID string, req pagination.Request) (*Page[*records.DocumentTag], error) {
	b := storagemodels.Query(records.DocumentPK(tenant, documentID)).WithSortKeyPrefix(keys.PrefixTags)
	return findPage(ctx, &s.opts, s.store, tenant, req, b, newDocumentTag)
}

// FindDocumentsByTag lists the tags with key and value, oldest first.
func (s *DocumentService) FindDocumentsByTag(ctx context.Context, tenant, key, value string, req pagination.Request) (*Page[*records.DocumentTag], error) {
	b := storagemodels.Query(keys.Encode(tenant, keys.PrefixTag+key+keys.Separator+value)).
		OnIndex(storagemodels.IndexGSI1)
	return findPage(ctx, &s.opts, s.store, tenant, req, b, newDocumentTag)
}

// FindDocumentsByDate lists the documents inserted on the UTC day of day.
func (s *DocumentService) FindDocumentsByDate(ctx context.Context, tenant string, day time.Time, req pagination.Request) (*Page[*records.Document], error) {
	q := storagemodels.QueryByTimeRange(keys.Encode(tenant, keys.PrefixDocumentDate+records.FormatDay(day))).
		OnIndex(storagemodels.IndexGSI1).
		Day(day)
	return findPage(ctx, &s.opts, s.store, tenant, req, q.QueryBuilder, func() *records.Document { return &records.Document{} })
}

func newDocumentTag() *records.DocumentTag { return &records.DocumentTag{} }

// SyncService records document synchronisations.
type SyncService struct {
	store datastore.DataStore
	ttl   time.Duration
	opts  options
}

// NewSyncService builds a SyncService. A positive ttl makes sync records
// expire through the table's TimeToLive attribute.
func NewSyncService(store datastore.DataStore, ttl time.Duration, opts ...Option) *SyncService {
	return &SyncService{store: store, ttl: ttl, opts: newOptions(opts)}
}

// AddSync stores sync, dated now when SyncDate is empty.
func (s *SyncService) AddSync(ctx context.Context, tenant string, sync *records.DocumentSync) (*records.DocumentSync, error) {
	c := *sync
	now := s.opts.now()
	if c.SyncDate == "" {
		c.SyncDate = records.FormatDate(now)
	}
	if s.ttl > 0 && c.TimeToLive == 0 {
		c.TimeToLive = now.Add(s.ttl).Unix()
	}
	if err := datastore.PutRecord(ctx, s.store, tenant, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindSyncs lists the syncs of a document between from and to, newest
// first. A zero from leaves the range open; a zero to ends it now.
func (s *SyncService) FindSyncs(ctx context.Context, tenant, documentID string, from, to time.Time, req pagination.Request) (*Page[*records.DocumentSync], error) {
	q := storagemodels.QueryByTimeRange(records.DocumentPK(tenant, documentID)).
		WithPrefix(keys.PrefixSyncs).
		Latest()
	switch {
	case !from.IsZero() && !to.IsZero():
		q.Between(from, to)
	case !from.IsZero():
		q.Since(from, s.opts.now())
	case !to.IsZero():
		q.Before(to)
	default:
		q.WithSortKeyPrefix(keys.PrefixSyncs)
	}
	return findPage(ctx, &s.opts, s.store, tenant, req, q.QueryBuilder, func() *records.DocumentSync { return &records.DocumentSync{} })
}
