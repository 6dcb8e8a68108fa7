/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/datastore"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
	"github.com/suparena/docstore/storagemodels"
	"github.com/suparena/docstore/validation"
)

// SchemaService stores the sites schema and classifications.
type SchemaService struct {
	store       datastore.DataStore
	definitions validation.DefinitionSource
	opts        options
}

var _ validation.SchemaSource = (*SchemaService)(nil)

// NewSchemaService builds a SchemaService. definitions resolves the
// attribute keys a schema names.
func NewSchemaService(store datastore.DataStore, definitions validation.DefinitionSource, opts ...Option) *SchemaService {
	return &SchemaService{store: store, definitions: definitions, opts: newOptions(opts)}
}

// GetSitesSchema returns the tenant's sites schema, or nil when none is set.
func (s *SchemaService) GetSitesSchema(ctx context.Context, tenant string) (*schema.Schema, error) {
	rec := &records.SitesSchema{}
	found, err := s.getSites(ctx, tenant, rec)
	if err != nil || !found {
		return nil, err
	}
	return schema.Unmarshal(rec.Schema)
}

// getSites bypasses GetRecord because the placeholder fields would fail
// SitesSchema validation before the read.
func (s *SchemaService) getSites(ctx context.Context, tenant string, rec *records.SitesSchema) (bool, error) {
	if err := keys.ValidateTenant(tenant); err != nil {
		return false, err
	}
	pair, err := rec.PrimaryKey(tenant)
	if err != nil {
		return false, err
	}
	item, err := s.store.Get(ctx, pair.Key())
	if err != nil || item == nil {
		return false, err
	}
	return true, records.Unmarshal(tenant, item, rec)
}

// SetSitesSchema validates sch and replaces the sites schema together with
// its composite key, allowed value and attribute key records.
func (s *SchemaService) SetSitesSchema(ctx context.Context, tenant, name string, sch *schema.Schema, userID string) error {
	if err := s.validate(ctx, tenant, name, sch, nil); err != nil {
		return err
	}

	body, err := schema.Marshal(sch)
	if err != nil {
		return err
	}
	rec := &records.SitesSchema{Name: name, Schema: body, UserID: userID, InsertedDate: s.opts.timestamp()}

	if err := s.replaceChildren(ctx, tenant, "", sch); err != nil {
		return err
	}
	if err := datastore.PutRecord(ctx, s.store, tenant, rec); err != nil {
		return err
	}

	s.opts.log.Info().Str("tenant", tenant).Str("name", name).Msg("sites schema set")
	return nil
}

// SetClassification creates a classification, or replaces it when id is
// set. Names are unique per tenant.
func (s *SchemaService) SetClassification(ctx context.Context, tenant, id, name string, sch *schema.Schema, userID string) (*records.Classification, error) {
	site, err := s.GetSitesSchema(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, tenant, name, sch, site); err != nil {
		return nil, err
	}

	if used, err := s.nameUsed(ctx, tenant, id, name); err != nil {
		return nil, err
	} else if used {
		return nil, storeerrors.ValidationErrors{{Key: "name", Message: "'name' is already used"}}
	}

	if id == "" {
		id = s.opts.newID()
	}
	body, err := schema.Marshal(sch)
	if err != nil {
		return nil, err
	}
	rec := &records.Classification{
		DocumentID:   id,
		Name:         name,
		Schema:       body,
		UserID:       userID,
		InsertedDate: s.opts.timestamp(),
	}

	if err := s.replaceChildren(ctx, tenant, id, sch); err != nil {
		return nil, err
	}
	if err := datastore.PutRecord(ctx, s.store, tenant, rec); err != nil {
		return nil, err
	}

	s.opts.log.Info().Str("tenant", tenant).Str("classification", id).Str("name", name).Msg("classification set")
	return rec, nil
}

func (s *SchemaService) validate(ctx context.Context, tenant, name string, sch, site *schema.Schema) error {
	if sch == nil {
		return storeerrors.ValidationErrors{{Key: "schema", Message: "'schema' is required"}}
	}
	defs, err := s.definitions.GetMany(ctx, tenant, sch.AttributeKeys())
	if err != nil {
		return err
	}
	return schema.ValidateDefinition(name, sch, site, defs).Err()
}

func (s *SchemaService) nameUsed(ctx context.Context, tenant, id, name string) (bool, error) {
	cfg, err := storagemodels.Query(records.ClassificationIndexPK(tenant)).
		OnIndex(storagemodels.IndexGSI1).
		WithSortKey(keys.PrefixAttr + name).
		Build()
	if err != nil {
		return false, err
	}
	found, err := datastore.QueryAllRecords(ctx, s.store, tenant, cfg, func() *records.Classification { return &records.Classification{} })
	if err != nil {
		return false, err
	}
	for _, c := range found {
		if c.DocumentID != id {
			return true, nil
		}
	}
	return false, nil
}

// replaceChildren drops the derived records of a schema partition and writes
// the ones sch implies.
func (s *SchemaService) replaceChildren(ctx context.Context, tenant, classificationID string, sch *schema.Schema) error {
	pk := records.SchemaPK(tenant, classificationID)
	for _, prefix := range []string{keys.PrefixCompositeKey, keys.PrefixAttr, keys.PrefixAttrKey} {
		if _, err := s.store.DeleteBeginsWith(ctx, pk, prefix); err != nil {
			return err
		}
	}

	var children []records.Record
	for _, list := range sch.CompositeKeyLists() {
		children = append(children, &records.SchemaCompositeKey{ClassificationID: classificationID, Keys: list})
	}
	if sch.Attributes != nil {
		for _, r := range sch.Attributes.Required {
			children = appendAllowed(children, classificationID, r.AttributeKey, r.AllowedValues)
		}
		for _, o := range sch.Attributes.Optional {
			children = appendAllowed(children, classificationID, o.AttributeKey, o.AllowedValues)
		}
	}
	for _, k := range sch.AttributeKeys() {
		children = append(children, &records.SchemaAttributeKey{ClassificationID: classificationID, Key: k})
	}

	return datastore.PutRecords(ctx, s.store, tenant, children)
}

func appendAllowed(list []records.Record, classificationID, key string, values []string) []records.Record {
	for _, v := range values {
		list = append(list, &records.SchemaAttributeAllowedValue{ClassificationID: classificationID, Key: key, Value: v})
	}
	return list
}

// GetClassification returns the classification id, or nil when it does not
// exist.
func (s *SchemaService) GetClassification(ctx context.Context, tenant, id string) (*records.Classification, error) {
	if id == "" {
		return nil, storeerrors.NewValidationError("classificationId", "'classificationId' is required")
	}
	if err := keys.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	rec := &records.Classification{DocumentID: id}
	pair, err := rec.PrimaryKey(tenant)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Get(ctx, pair.Key())
	if err != nil || item == nil {
		return nil, err
	}
	if err := records.Unmarshal(tenant, item, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ClassificationSchema decodes the schema of classification id. It fails
// with NotFound when the classification does not exist.
func (s *SchemaService) ClassificationSchema(ctx context.Context, tenant, id string) (*schema.Schema, error) {
	rec, err := s.GetClassification(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, storeerrors.NewNotFoundError("classification", id)
	}
	return schema.Unmarshal(rec.Schema)
}

// FindClassifications lists classifications ordered by name.
func (s *SchemaService) FindClassifications(ctx context.Context, tenant string, req pagination.Request) (*Page[*records.Classification], error) {
	b := storagemodels.Query(records.ClassificationIndexPK(tenant)).
		OnIndex(storagemodels.IndexGSI1).
		WithSortKeyPrefix(keys.PrefixAttr)
	return findPage(ctx, &s.opts, s.store, tenant, req, b, func() *records.Classification { return &records.Classification{} })
}

// DeleteClassification removes a classification and its derived records.
func (s *SchemaService) DeleteClassification(ctx context.Context, tenant, id string) error {
	if id == "" {
		return storeerrors.NewValidationError("classificationId", "'classificationId' is required")
	}
	n, err := s.store.DeleteBeginsWith(ctx, records.SchemaPK(tenant, id), "")
	if err != nil {
		return err
	}
	if n == 0 {
		return storeerrors.NewNotFoundError("classification", id)
	}
	s.opts.log.Info().Str("tenant", tenant).Str("classification", id).Int("count", n).Msg("classification deleted")
	return nil
}

// AllowedValues lists the allowed values of key in the sites schema, or in
// classification id merged with the sites schema when id is set. The result
// is sorted and distinct.
func (s *SchemaService) AllowedValues(ctx context.Context, tenant, classificationID, key string) ([]string, error) {
	values, err := s.allowedIn(ctx, tenant, classificationID, key)
	if err != nil {
		return nil, err
	}
	if classificationID != "" {
		site, err := s.allowedIn(ctx, tenant, "", key)
		if err != nil {
			return nil, err
		}
		values = append(values, site...)
	}
	return distinctSorted(values), nil
}

func (s *SchemaService) allowedIn(ctx context.Context, tenant, classificationID, key string) ([]string, error) {
	cfg, err := storagemodels.Query(records.SchemaPK(tenant, classificationID)).
		WithSortKeyPrefix(records.AllowedValueSortPrefix(key)).
		Build()
	if err != nil {
		return nil, err
	}
	found, err := datastore.QueryAllRecords(ctx, s.store, tenant, cfg, newAllowedValue)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(found))
	for _, v := range found {
		out = append(out, v.Value)
	}
	return out, nil
}

// AttributeAllowedValues lists the allowed values of key across every
// schema of the tenant.
func (s *SchemaService) AttributeAllowedValues(ctx context.Context, tenant, key string) ([]string, error) {
	cfg, err := storagemodels.Query(keys.Encode(tenant, keys.PrefixAttr+key+keys.Separator+keys.PrefixAllowedValue)).
		OnIndex(storagemodels.IndexGSI1).
		WithSortKeyPrefix(keys.PrefixValue).
		Build()
	if err != nil {
		return nil, err
	}
	found, err := datastore.QueryAllRecords(ctx, s.store, tenant, cfg, newAllowedValue)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(found))
	for _, v := range found {
		values = append(values, v.Value)
	}
	return distinctSorted(values), nil
}

// ResolveSchema returns the schema that applies to a document carrying
// values: the sites schema, merged with the classification a
// CLASSIFICATION value names. It returns nil when neither exists.
func (s *SchemaService) ResolveSchema(ctx context.Context, tenant string, values []*records.DocumentAttribute) (*schema.Schema, error) {
	site, err := s.GetSitesSchema(ctx, tenant)
	if err != nil {
		return nil, err
	}

	id := classificationOf(values)
	if id == "" {
		return site, nil
	}

	cls, err := s.ClassificationSchema(ctx, tenant, id)
	if storeerrors.IsNotFound(err) {
		return nil, storeerrors.NewValidationError(attributes.KeyClassification, fmt.Sprintf("Classification '%s' not found", id))
	}
	if err != nil {
		return nil, err
	}
	return schema.Merge(site, cls), nil
}

func classificationOf(values []*records.DocumentAttribute) string {
	for _, v := range values {
		if v.ValueType == attributes.ValueClassification || v.Key == attributes.KeyClassification {
			return v.StringValue
		}
	}
	return ""
}

func newAllowedValue() *records.SchemaAttributeAllowedValue {
	return &records.SchemaAttributeAllowedValue{}
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
