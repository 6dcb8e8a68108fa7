/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/datastore"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
	"github.com/suparena/docstore/validation"
)

// AddAttributeRequest creates one attribute definition.
type AddAttributeRequest struct {
	Key       string
	DataType  attributes.DataType
	Type      attributes.Type
	Watermark *attributes.Watermark
	// AllowReservedKey permits keys from the reserved table.
	AllowReservedKey bool
}

// AttributeService manages attribute definitions.
type AttributeService struct {
	store datastore.DataStore
	opts  options
}

var _ validation.DefinitionSource = (*AttributeService)(nil)

// NewAttributeService builds an AttributeService over store.
func NewAttributeService(store datastore.DataStore, opts ...Option) *AttributeService {
	return &AttributeService{store: store, opts: newOptions(opts)}
}

// Add creates a definition. Data type and type default to STRING and
// STANDARD.
func (s *AttributeService) Add(ctx context.Context, tenant string, req AddAttributeRequest, access attributes.Access) (*records.Attribute, error) {
	a := records.NewAttribute(req.Key, req.DataType, req.Type)
	a.SetWatermark(req.Watermark)

	access.Op = attributes.OpCreate
	if errs := validation.Definition(a, req.AllowReservedKey, access); len(errs) > 0 {
		return nil, errs
	}

	if err := datastore.PutRecordIfAbsent(ctx, s.store, tenant, a); err != nil {
		if storeerrors.IsAlreadyExists(err) {
			return nil, storeerrors.NewValidationError("key", fmt.Sprintf("attribute '%s' already exists", a.Key))
		}
		return nil, err
	}

	s.opts.log.Info().Str("tenant", tenant).Str("key", a.Key).Str("dataType", string(a.DataType)).Msg("attribute added")
	return a, nil
}

// Get returns the definition of key, or nil when it does not exist.
func (s *AttributeService) Get(ctx context.Context, tenant, key string) (*records.Attribute, error) {
	a := &records.Attribute{Key: key}
	found, err := datastore.GetRecord(ctx, s.store, tenant, a)
	if err != nil || !found {
		return nil, err
	}
	return a, nil
}

// GetMany returns the definitions of keys that exist, by key.
func (s *AttributeService) GetMany(ctx context.Context, tenant string, list []string) (map[string]*records.Attribute, error) {
	out := make(map[string]*records.Attribute, len(list))
	if len(list) == 0 {
		return out, nil
	}

	pks := make([]map[string]types.AttributeValue, 0, len(list))
	for _, k := range list {
		if k == "" {
			continue
		}
		pks = append(pks, records.KeyPair{PK: records.AttributePK(tenant, k), SK: keys.SortAttribute}.Key())
	}
	cfg, err := storagemodels.NewBatchGetConfig(storagemodels.BatchGetOptions{Keys: pks})
	if err != nil {
		return nil, err
	}

	items, err := s.store.BatchGet(ctx, cfg)
	if err != nil {
		return nil, err
	}
	found, err := records.UnmarshalAll(tenant, items, newAttribute)
	if err != nil {
		return nil, err
	}
	for _, a := range found {
		out[a.Key] = a
	}
	return out, nil
}

// Find lists definitions ordered by key.
func (s *AttributeService) Find(ctx context.Context, tenant string, req pagination.Request) (*Page[*records.Attribute], error) {
	b := storagemodels.Query(keys.Encode(tenant, keys.PrefixAttr)).
		OnIndex(storagemodels.IndexGSI1).
		WithSortKeyPrefix(keys.PrefixAttr)

	return findPage(ctx, &s.opts, s.store, tenant, req, b, newAttribute)
}

// FindWatermarks lists WATERMARK definitions that carry watermark text.
func (s *AttributeService) FindWatermarks(ctx context.Context, tenant string, req pagination.Request) (*Page[*records.Attribute], error) {
	b := storagemodels.Query(keys.Encode(tenant, keys.PrefixAttr)).
		OnIndex(storagemodels.IndexGSI2).
		WithSortKey(keys.PrefixAttr + string(attributes.DataTypeWatermark))

	return findPage(ctx, &s.opts, s.store, tenant, req, b, newAttribute)
}

// SetType changes the type of an existing definition.
func (s *AttributeService) SetType(ctx context.Context, tenant, key string, typ attributes.Type, access attributes.Access) error {
	if !typ.Valid() {
		return storeerrors.NewValidationError("type", fmt.Sprintf("invalid type '%s'", typ))
	}
	a, err := s.mustGet(ctx, tenant, key)
	if err != nil {
		return err
	}

	access.Op = attributes.OpUpdate
	if err := access.Check(key, a.Type); err != nil {
		return err
	}
	if err := access.Check(key, typ); err != nil {
		return err
	}

	return s.store.Update(ctx, records.KeyPair{PK: records.AttributePK(tenant, key), SK: keys.SortAttribute}.Key(),
		records.Item{"type": &types.AttributeValueMemberS{Value: string(typ)}}, nil)
}

// UpdateWatermark replaces the watermark of a WATERMARK definition.
func (s *AttributeService) UpdateWatermark(ctx context.Context, tenant, key string, w *attributes.Watermark, access attributes.Access) error {
	a, err := s.mustGet(ctx, tenant, key)
	if err != nil {
		return err
	}

	access.Op = attributes.OpUpdate
	if err := access.Check(key, a.Type); err != nil {
		return err
	}

	a.SetWatermark(w)
	if errs := attributes.ValidateWatermark(a.DataType, a.Watermark()); len(errs) > 0 {
		return errs
	}
	return datastore.PutRecord(ctx, s.store, tenant, a)
}

// Delete removes a definition no document value and no schema uses. The
// usage probes and the delete are separate calls, so a value written in
// between is not detected.
func (s *AttributeService) Delete(ctx context.Context, tenant, key string, access attributes.Access) error {
	a, err := s.Get(ctx, tenant, key)
	if err != nil {
		return err
	}
	if a == nil {
		return storeerrors.NewNotFoundError("attribute", key)
	}

	access.Op = attributes.OpDelete
	if err := access.Check(key, a.Type); err != nil {
		return err
	}

	inUse, err := storagemodels.Query(records.DocumentAttributeIndexPK(tenant, key)).OnIndex(storagemodels.IndexGSI1).Build()
	if err != nil {
		return err
	}
	if used, err := s.store.Exists(ctx, inUse); err != nil {
		return err
	} else if used {
		return storeerrors.NewInUseError(key, fmt.Sprintf("attribute '%s' is in use, cannot be deleted", key))
	}

	inSchema, err := storagemodels.Query(records.SchemaReferencePK(tenant, key)).OnIndex(storagemodels.IndexGSI1).Build()
	if err != nil {
		return err
	}
	if used, err := s.store.Exists(ctx, inSchema); err != nil {
		return err
	} else if used {
		return storeerrors.NewInUseError(key, fmt.Sprintf("attribute '%s' is used in a Schema / Classification, cannot be deleted", key))
	}

	if err := datastore.DeleteRecord(ctx, s.store, tenant, a); err != nil {
		return err
	}
	s.opts.log.Info().Str("tenant", tenant).Str("key", key).Msg("attribute deleted")
	return nil
}

func (s *AttributeService) mustGet(ctx context.Context, tenant, key string) (*records.Attribute, error) {
	a, err := s.Get(ctx, tenant, key)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, storeerrors.NewNotFoundError("attribute", key)
	}
	return a, nil
}

func newAttribute() *records.Attribute { return &records.Attribute{} }
