/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Stream defaults.
const (
	DefaultStreamBuffer   = 100
	DefaultStreamPageSize = 100
	DefaultStreamRetries  = 3
	DefaultStreamBackoff  = time.Second
)

// StreamResult carries one raw item, or the error that ended the stream.
type StreamResult struct {
	Item  map[string]types.AttributeValue
	Error error
	Meta  StreamMeta
}

// StreamMeta places a result within the stream. Index counts from zero,
// PageNumber from one.
type StreamMeta struct {
	Index      int64
	PageNumber int
	Timestamp  time.Time
}

// StreamOptions tunes a stream. Build it with NewStreamOptions.
type StreamOptions struct {
	// BufferSize is the capacity of the result channel.
	BufferSize int
	// PageSize caps the items read per query page unless the query config
	// carries its own limit.
	PageSize int32
	// MaxRetries and RetryBackoff govern retries of throttled pages. The
	// wait grows linearly with the attempt.
	MaxRetries   int
	RetryBackoff time.Duration
	// ProgressHandler, when set, is called after every page and once at the end.
	ProgressHandler func(StreamProgress)
	// ErrorHandler decides whether a failed page ends the stream with an
	// error result (false) or quietly (true).
	ErrorHandler func(error) bool
}

// StreamProgress is the running total handed to a ProgressHandler. LastKey
// is nil once the listing is exhausted.
type StreamProgress struct {
	ItemsProcessed int64
	PagesProcessed int
	LastKey        map[string]types.AttributeValue
	Errors         []error
	StartTime      time.Time
	Elapsed        time.Duration
}

// Rate returns the items processed per second so far.
func (p StreamProgress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.ItemsProcessed) / p.Elapsed.Seconds()
}

// StreamOption adjusts StreamOptions.
type StreamOption func(*StreamOptions)

// NewStreamOptions applies opts over the defaults.
func NewStreamOptions(opts ...StreamOption) StreamOptions {
	o := StreamOptions{
		BufferSize:   DefaultStreamBuffer,
		PageSize:     DefaultStreamPageSize,
		MaxRetries:   DefaultStreamRetries,
		RetryBackoff: DefaultStreamBackoff,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithBufferSize sets the channel capacity. Zero makes the channel unbuffered;
// negative sizes are ignored.
func WithBufferSize(size int) StreamOption {
	return func(o *StreamOptions) {
		if size >= 0 {
			o.BufferSize = size
		}
	}
}

func WithMaxRetries(retries int) StreamOption {
	return func(o *StreamOptions) {
		if retries >= 0 {
			o.MaxRetries = retries
		}
	}
}

func WithRetryBackoff(backoff time.Duration) StreamOption {
	return func(o *StreamOptions) { o.RetryBackoff = backoff }
}

// WithPageSize ignores non-positive sizes.
func WithPageSize(size int32) StreamOption {
	return func(o *StreamOptions) {
		if size > 0 {
			o.PageSize = size
		}
	}
}

func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(o *StreamOptions) { o.ProgressHandler = handler }
}

func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(o *StreamOptions) { o.ErrorHandler = handler }
}
