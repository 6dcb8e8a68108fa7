/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// TimeRangeBuilder builds queries over sort keys of the form
// <prefix><timestamp>[...], where timestamps sort lexically.
type TimeRangeBuilder struct {
	*QueryBuilder
	prefix string
	format func(time.Time) string
}

// QueryByTimeRange starts a time range query on partition pk.
func QueryByTimeRange(pk string) *TimeRangeBuilder {
	return &TimeRangeBuilder{
		QueryBuilder: Query(pk),
		format:       FormatTimestamp,
	}
}

// FormatTimestamp renders t the way record timestamps are stored.
func FormatTimestamp(t time.Time) string {
	return strfmt.DateTime(t.UTC()).String()
}

// WithPrefix sets the fixed part of the sort key before the timestamp.
func (q *TimeRangeBuilder) WithPrefix(prefix string) *TimeRangeBuilder {
	q.prefix = prefix
	return q
}

// OnIndex selects the key pair to query.
func (q *TimeRangeBuilder) OnIndex(index Index) *TimeRangeBuilder {
	q.QueryBuilder.OnIndex(index)
	return q
}

// Between matches timestamps from start up to end. Sort keys with a suffix
// after the timestamp sort after the bare bound, so end is exclusive for them.
func (q *TimeRangeBuilder) Between(start, end time.Time) *TimeRangeBuilder {
	q.WithSortKeyBetween(q.prefix+q.format(start), q.prefix+q.format(end))
	return q
}

// After matches timestamps after t.
func (q *TimeRangeBuilder) After(t time.Time) *TimeRangeBuilder {
	q.WithSortKeyGreaterThan(q.prefix + q.format(t))
	return q
}

// Before matches timestamps before t. The prefix bounds the range from below.
func (q *TimeRangeBuilder) Before(t time.Time) *TimeRangeBuilder {
	q.WithSortKeyBetween(q.prefix, q.prefix+q.format(t))
	return q
}

// Since matches everything from t until now.
func (q *TimeRangeBuilder) Since(t time.Time, now time.Time) *TimeRangeBuilder {
	return q.Between(t, now)
}

// Day matches the UTC calendar day containing t.
func (q *TimeRangeBuilder) Day(t time.Time) *TimeRangeBuilder {
	start := StartOfDay(t)
	return q.Between(start, start.Add(24*time.Hour))
}

// Latest returns the newest entries first.
func (q *TimeRangeBuilder) Latest() *TimeRangeBuilder {
	q.WithOrder(false)
	return q
}

// Oldest returns entries in chronological order.
func (q *TimeRangeBuilder) Oldest() *TimeRangeBuilder {
	q.WithOrder(true)
	return q
}

func (q *TimeRangeBuilder) WithLimit(limit int32) *TimeRangeBuilder {
	q.QueryBuilder.WithLimit(limit)
	return q
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days lists the UTC days touched by [start, end], oldest first. Records that
// shard their index partition by day are queried one day at a time.
func Days(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	last := StartOfDay(end)
	for d := StartOfDay(start); !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
