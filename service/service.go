/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

type options struct {
	log       zerolog.Logger
	paginator *pagination.Paginator
	now       func() time.Time
	newID     func() string
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithPaginator sets the paginator used by paged listings.
func WithPaginator(p *pagination.Paginator) Option {
	return func(o *options) {
		if p != nil {
			o.paginator = p
		}
	}
}

// WithClock replaces time.Now for inserted dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the uuid generator for new record ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.paginator == nil {
		o.paginator = pagination.NewPaginator(pagination.NewMemoryCache())
	}
	return o
}

func (o *options) timestamp() string {
	return records.FormatDate(o.now())
}

// Page is one page of a listing. Next resumes after it and Previous goes
// back; either is empty when there is nowhere to go.
type Page[T any] struct {
	Items    []T
	Next     string
	Previous string
}

// findPage runs one page of the query b describes, honouring the paging
// request.
func findPage[T records.Record](
	ctx context.Context,
	o *options,
	store datastore.DataStore,
	tenant string,
	req pagination.Request,
	b *storagemodels.QueryBuilder,
	newRecord func() T,
) (*Page[T], error) {
	base, err := b.Build()
	if err != nil {
		return nil, err
	}
	req.Scope = base.Scope()

	cur, err := o.paginator.Begin(ctx, req)
	if err != nil {
		return nil, err
	}
	cfg := base.WithLimit(cur.Limit).WithStartKey(cur.StartKey)

	items, res, err := datastore.QueryRecords(ctx, store, tenant, cfg, newRecord)
	if err != nil {
		return nil, err
	}

	page, err := o.paginator.Finish(ctx, cur, res.LastEvaluatedKey)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Next: page.Next(), Previous: page.Previous}, nil
}
