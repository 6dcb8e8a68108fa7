/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
)

// Item is the attribute map the store reads and writes.
type Item = map[string]types.AttributeValue

// KeyPair is one partition/sort key pair.
type KeyPair struct {
	PK string
	SK string
}

// Record is implemented by every persisted entity. Key methods take the
// tenant so the partition side can be namespaced; sort keys never carry it.
type Record interface {
	// Validate fails with an IllegalState error when a field needed to
	// build a key is missing.
	Validate() error
	PrimaryKey(tenant string) (KeyPair, error)
	// Secondary1 and Secondary2 report false when the record does not
	// project into that index.
	Secondary1(tenant string) (KeyPair, bool, error)
	Secondary2(tenant string) (KeyPair, bool, error)
}

// afterUnmarshaler lets a record fill derived fields after decoding.
type afterUnmarshaler interface {
	afterUnmarshal(tenant string) error
}

// Marshal converts r into its stored form: the payload plus every key pair
// the record declares.
func Marshal(tenant string, r Record) (Item, error) {
	if err := keys.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	primary, err := r.PrimaryKey(tenant)
	if err != nil {
		return nil, err
	}
	putPair(item, keys.PK, keys.SK, primary)

	if pair, ok, err := r.Secondary1(tenant); err != nil {
		return nil, err
	} else if ok {
		putPair(item, keys.GSI1PK, keys.GSI1SK, pair)
	}

	if pair, ok, err := r.Secondary2(tenant); err != nil {
		return nil, err
	} else if ok {
		putPair(item, keys.GSI2PK, keys.GSI2SK, pair)
	}

	return item, nil
}

// Unmarshal decodes item into r. Key fields are ignored.
func Unmarshal(tenant string, item Item, r Record) error {
	if item == nil {
		return storeerrors.NewIllegalStateError("cannot unmarshal empty item")
	}
	if err := attributevalue.UnmarshalMap(item, r); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if h, ok := r.(afterUnmarshaler); ok {
		return h.afterUnmarshal(tenant)
	}
	return nil
}

// UnmarshalAll decodes items with newRecord supplying each target.
func UnmarshalAll[T Record](tenant string, items []Item, newRecord func() T) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		r := newRecord()
		if err := Unmarshal(tenant, item, r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Key returns the PK/SK map identifying r.
func Key(tenant string, r Record) (Item, error) {
	if err := keys.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	primary, err := r.PrimaryKey(tenant)
	if err != nil {
		return nil, err
	}
	return primary.Key(), nil
}

// Key returns the pair as a primary key map.
func (k KeyPair) Key() Item {
	return Item{
		keys.PK: &types.AttributeValueMemberS{Value: k.PK},
		keys.SK: &types.AttributeValueMemberS{Value: k.SK},
	}
}

func putPair(item Item, pkName, skName string, pair KeyPair) {
	item[pkName] = &types.AttributeValueMemberS{Value: pair.PK}
	item[skName] = &types.AttributeValueMemberS{Value: pair.SK}
}

// StringField reads a string attribute, returning "" when absent.
func StringField(item Item, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// FormatDate renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatDate(t time.Time) string {
	return strfmt.DateTime(t.UTC()).String()
}

// ParseDate parses a timestamp written by FormatDate.
func ParseDate(s string) (time.Time, error) {
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Time(dt), nil
}

// FormatDay renders the yyyy-MM-dd partition used by date indexes.
func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

type field struct {
	name  string
	value string
}

func required(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return storeerrors.NewIllegalStateError("'%s' is required", f.name)
		}
	}
	return nil
}

func noSecondary() (KeyPair, bool, error) {
	return KeyPair{}, false, nil
}
