/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	storeerrors "github.com/suparena/docstore/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultTTL   = 24 * time.Hour
)

// Page is one cached page of a listing. ID is the token that resumes the
// listing after this page; Previous is the ID of the page before it.
type Page struct {
	ID       string `json:"next"`
	Previous string `json:"previous,omitempty"`
	Limit    int32  `json:"limit"`
	StartKey string `json:"startKey,omitempty"`
	HasNext  bool   `json:"hasNext"`
	// Scope names the listing the page belongs to.
	Scope string `json:"scope,omitempty"`
}

// Next returns the token for the following page, or "" at the end.
func (p *Page) Next() string {
	if p == nil || !p.HasNext {
		return ""
	}
	return p.ID
}

// Request carries the paging parameters a caller sent. At most one of Next
// and Previous is honored; Next wins.
type Request struct {
	Next     string
	Previous string
	Limit    int
	// Scope identifies the listing. A token only resumes the listing that
	// issued it.
	Scope string
}

// Cursor tells a listing where to start and how much to read.
type Cursor struct {
	Limit    int32
	StartKey map[string]types.AttributeValue

	scope  string
	last   *Page
	replay *Page
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithLimits sets the limit used when none is given and the cap on any limit.
func WithLimits(def, max int) Option {
	return func(p *Paginator) {
		if def > 0 {
			p.defaultLimit = def
		}
		if max > 0 {
			p.maxLimit = max
		}
	}
}

// WithTTL sets how long pages stay resumable.
func WithTTL(ttl time.Duration) Option {
	return func(p *Paginator) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithIDGenerator replaces the uuid page ids.
func WithIDGenerator(fn func() string) Option {
	return func(p *Paginator) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// Paginator chains pages of a listing through a Cache.
type Paginator struct {
	cache        Cache
	defaultLimit int
	maxLimit     int
	ttl          time.Duration
	newID        func() string
}

// NewPaginator builds a Paginator over cache.
func NewPaginator(cache Cache, opts ...Option) *Paginator {
	p := &Paginator{
		cache:        cache,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		ttl:          DefaultTTL,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.defaultLimit > p.maxLimit {
		p.defaultLimit = p.maxLimit
	}
	return p
}

// Begin resolves req into a Cursor. Unknown or expired tokens fail with an
// invalid token error.
func (p *Paginator) Begin(ctx context.Context, req Request) (*Cursor, error) {
	switch {
	case req.Next != "":
		page, err := p.loadScoped(ctx, req.Next, req.Scope)
		if err != nil {
			return nil, err
		}
		start, err := Decode(page.StartKey)
		if err != nil {
			return nil, err
		}
		return &Cursor{Limit: page.Limit, StartKey: start, scope: req.Scope, last: page}, nil

	case req.Previous != "":
		current, err := p.loadScoped(ctx, req.Previous, req.Scope)
		if err != nil {
			return nil, err
		}
		if current.Previous == "" {
			// start of the listing
			return &Cursor{Limit: current.Limit, replay: current}, nil
		}
		before, err := p.load(ctx, current.Previous)
		if err != nil {
			return nil, err
		}
		start, err := Decode(before.StartKey)
		if err != nil {
			return nil, err
		}
		return &Cursor{Limit: before.Limit, StartKey: start, replay: current}, nil
	}

	return &Cursor{Limit: p.limit(req.Limit), scope: req.Scope}, nil
}

// Finish records the page that was just read. lastKey is the store's resume
// key, nil at the end of the listing. Going back replays the cached page
// instead of caching a new one.
func (p *Paginator) Finish(ctx context.Context, cur *Cursor, lastKey map[string]types.AttributeValue) (*Page, error) {
	if cur.replay != nil {
		return cur.replay, nil
	}

	start, err := Encode(lastKey)
	if err != nil {
		return nil, err
	}

	page := &Page{
		ID:       p.newID(),
		Limit:    cur.Limit,
		StartKey: start,
		HasNext:  start != "",
		Scope:    cur.scope,
	}
	if cur.last != nil {
		page.Previous = cur.last.ID
	}

	b, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	if err := p.cache.Write(ctx, page.ID, string(b), p.ttl); err != nil {
		return nil, fmt.Errorf("failed to cache page: %w", err)
	}
	return page, nil
}

// loadScoped loads id and rejects pages issued for another listing.
func (p *Paginator) loadScoped(ctx context.Context, id, scope string) (*Page, error) {
	page, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Scope != scope {
		return nil, storeerrors.NewInvalidTokenError(id, "issued for another listing")
	}
	return page, nil
}

func (p *Paginator) load(ctx context.Context, id string) (*Page, error) {
	raw, ok, err := p.cache.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	if !ok {
		return nil, storeerrors.NewInvalidTokenError(id, "unknown or expired")
	}

	var page Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, storeerrors.NewInvalidTokenError(id, "corrupt page")
	}
	if page.Limit < 1 {
		page.Limit = int32(p.defaultLimit)
	}
	return &page, nil
}

func (p *Paginator) limit(n int) int32 {
	if n < 1 {
		return int32(p.defaultLimit)
	}
	if n > p.maxLimit {
		return int32(p.maxLimit)
	}
	return int32(n)
}
