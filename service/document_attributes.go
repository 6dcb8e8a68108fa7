/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/composite"
	"github.com/suparena/docstore/datastore"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
	"github.com/suparena/docstore/storagemodels"
	"github.com/suparena/docstore/validation"
)

// WriteRequest is one batch of values for a document.
type WriteRequest struct {
	DocumentID string
	Values     []*records.DocumentAttribute
	Mode       validation.Mode
	Access     attributes.Access
	UserID     string
}

// DocumentAttributeService writes and reads the attribute values of
// documents. Every write recomputes the document's composite values.
type DocumentAttributeService struct {
	store       datastore.DataStore
	definitions validation.DefinitionSource
	schemas     validation.SchemaSource
	validator   *validation.Validator
	opts        options
}

// NewDocumentAttributeService builds a DocumentAttributeService.
func NewDocumentAttributeService(store datastore.DataStore, definitions validation.DefinitionSource, schemas validation.SchemaSource, opts ...Option) *DocumentAttributeService {
	return &DocumentAttributeService{
		store:       store,
		definitions: definitions,
		schemas:     schemas,
		validator:   validation.NewValidator(definitions, schemas),
		opts:        newOptions(opts),
	}
}

// Add writes req.Values. Values of a written key replace that key's stored
// values; other keys are kept. With Access.Op set to create, a key the
// document already carries is rejected.
func (s *DocumentAttributeService) Add(ctx context.Context, tenant string, req WriteRequest) error {
	if req.Access.Op == "" {
		req.Access.Op = attributes.OpAdd
	}
	return s.write(ctx, tenant, req, false)
}

// Set replaces every value of the document with req.Values.
func (s *DocumentAttributeService) Set(ctx context.Context, tenant string, req WriteRequest) error {
	req.Access.Op = attributes.OpSet
	return s.write(ctx, tenant, req, true)
}

func (s *DocumentAttributeService) write(ctx context.Context, tenant string, req WriteRequest, replace bool) error {
	if req.DocumentID == "" {
		return storeerrors.NewValidationError("documentId", "'documentId' is required")
	}

	stored, err := s.List(ctx, tenant, req.DocumentID)
	if err != nil {
		return err
	}
	existing := withoutComposites(stored)

	now := s.opts.timestamp()
	values := make([]*records.DocumentAttribute, 0, len(req.Values))
	for _, v := range req.Values {
		c := *v
		c.DocumentID = req.DocumentID
		if c.UserID == "" {
			c.UserID = req.UserID
		}
		if c.InsertedDate == "" {
			c.InsertedDate = now
		}
		values = append(values, &c)
	}

	res, err := s.validator.Validate(ctx, validation.Request{
		Tenant:     tenant,
		DocumentID: req.DocumentID,
		Values:     values,
		Existing:   existing,
		Replace:    replace,
		Mode:       req.Mode,
		Access:     req.Access,
	})
	if err != nil {
		return err
	}
	errs := res.Errors
	if req.Access.Op == attributes.OpCreate {
		errs.Append(alreadyPresent(existing, values))
	}
	if len(errs) > 0 {
		return errs
	}

	for _, d := range res.Defaults {
		d.UserID, d.InsertedDate = req.UserID, now
	}
	written := append(values, res.Defaults...)
	resulting := append(validation.Resulting(existing, values, replace), res.Defaults...)

	composites, err := s.composites(ctx, tenant, req.DocumentID, res.Schema, req.Mode, resulting)
	if err != nil {
		return err
	}

	writtenKeys := make(map[string]struct{}, len(written))
	for _, v := range written {
		writtenKeys[v.Key] = struct{}{}
	}
	var stale []*records.DocumentAttribute
	for _, v := range stored {
		_, rewritten := writtenKeys[v.Key]
		if replace || rewritten || v.ValueType == attributes.ValueCompositeString {
			stale = append(stale, v)
		}
	}

	if err := s.deleteValues(ctx, tenant, stale); err != nil {
		return err
	}
	if err := datastore.PutRecords(ctx, s.store, tenant, append(written, composites...)); err != nil {
		return err
	}

	s.opts.log.Debug().
		Str("tenant", tenant).
		Str("document", req.DocumentID).
		Int("count", len(written)).
		Int("composites", len(composites)).
		Int("removed", len(stale)).
		Msg("document attributes written")
	return nil
}

// composites builds the composite values of resulting. Outside FULL mode
// the validator resolved no schema, so it is resolved here.
func (s *DocumentAttributeService) composites(ctx context.Context, tenant, documentID string, sch *schema.Schema, mode validation.Mode, resulting []*records.DocumentAttribute) ([]*records.DocumentAttribute, error) {
	if sch == nil && mode != validation.ModeFull {
		var err error
		if sch, err = s.schemas.ResolveSchema(ctx, tenant, resulting); err != nil {
			return nil, err
		}
	}
	if sch == nil {
		return nil, nil
	}
	return composite.Generate(documentID, sch.CompositeKeyLists(), resulting)
}

func (s *DocumentAttributeService) deleteValues(ctx context.Context, tenant string, values []*records.DocumentAttribute) error {
	if len(values) == 0 {
		return nil
	}
	list := make([]records.Item, 0, len(values))
	for _, v := range values {
		k, err := records.Key(tenant, v)
		if err != nil {
			return err
		}
		list = append(list, k)
	}
	return s.store.DeleteKeys(ctx, list)
}

// List returns every value of the document, composites included, ordered
// by key and value.
func (s *DocumentAttributeService) List(ctx context.Context, tenant, documentID string) ([]*records.DocumentAttribute, error) {
	cfg, err := storagemodels.Query(records.DocumentPK(tenant, documentID)).
		WithSortKeyPrefix(keys.PrefixAttr).
		Build()
	if err != nil {
		return nil, err
	}
	return datastore.QueryAllRecords(ctx, s.store, tenant, cfg, newDocumentAttribute)
}

// Get returns the values of key on the document.
func (s *DocumentAttributeService) Get(ctx context.Context, tenant, documentID, key string) ([]*records.DocumentAttribute, error) {
	all, err := s.List(ctx, tenant, documentID)
	if err != nil {
		return nil, err
	}
	var out []*records.DocumentAttribute
	for _, v := range all {
		if v.Key == key {
			out = append(out, v)
		}
	}
	return out, nil
}

// Delete removes every value of key from the document and recomputes the
// composites. Protected keys need an elevated caller. Outside NONE mode a key
// the document's schema requires cannot be deleted.
func (s *DocumentAttributeService) Delete(ctx context.Context, tenant, documentID, key string, mode validation.Mode, access attributes.Access) error {
	stored, err := s.List(ctx, tenant, documentID)
	if err != nil {
		return err
	}

	var removed, kept []*records.DocumentAttribute
	for _, v := range stored {
		switch {
		case v.ValueType == attributes.ValueCompositeString:
			removed = append(removed, v)
		case v.Key == key:
			removed = append(removed, v)
		default:
			kept = append(kept, v)
		}
	}
	if !hasKey(stored, key) {
		return storeerrors.NewNotFoundError("document attribute", key)
	}

	defs, err := s.definitions.GetMany(ctx, tenant, []string{key})
	if err != nil {
		return err
	}
	if def, ok := defs[key]; ok {
		access.Op = attributes.OpDelete
		if err := access.Check(key, def.Type); err != nil {
			return err
		}
	}

	var sch *schema.Schema
	if mode != validation.ModeNone {
		if sch, err = s.schemas.ResolveSchema(ctx, tenant, kept); err != nil {
			return err
		}
		if sch != nil && slices.Contains(sch.RequiredKeys(), key) {
			var errs storeerrors.ValidationErrors
			errs.Add(key, fmt.Sprintf("missing required attribute '%s'", key))
			return errs
		}
	}

	composites, err := s.composites(ctx, tenant, documentID, sch, validation.ModeNone, kept)
	if err != nil {
		return err
	}

	if err := s.deleteValues(ctx, tenant, removed); err != nil {
		return err
	}
	if err := datastore.PutRecords(ctx, s.store, tenant, composites); err != nil {
		return err
	}

	s.opts.log.Debug().Str("tenant", tenant).Str("document", documentID).Str("key", key).Msg("document attribute deleted")
	return nil
}

// FindByValue lists the values of key across documents matching op. Number
// values compare in their stored sort key form.
func (s *DocumentAttributeService) FindByValue(ctx context.Context, tenant, key string, op storagemodels.SortOperator, value, end string, req pagination.Request) (*Page[*records.DocumentAttribute], error) {
	switch op {
	case storagemodels.SortEquals, storagemodels.SortBeginsWith, storagemodels.SortBetween:
	default:
		return nil, storeerrors.NewValidationError("op", fmt.Sprintf("unsupported operator '%s'", op))
	}
	b := storagemodels.Query(records.DocumentAttributeIndexPK(tenant, key)).
		OnIndex(storagemodels.IndexGSI1).
		WithSortCondition(op, value, end)
	return findPage(ctx, &s.opts, s.store, tenant, req, b, newDocumentAttribute)
}

func newDocumentAttribute() *records.DocumentAttribute { return &records.DocumentAttribute{} }

func withoutComposites(values []*records.DocumentAttribute) []*records.DocumentAttribute {
	out := make([]*records.DocumentAttribute, 0, len(values))
	for _, v := range values {
		if v.ValueType != attributes.ValueCompositeString {
			out = append(out, v)
		}
	}
	return out
}

func hasKey(values []*records.DocumentAttribute, key string) bool {
	for _, v := range values {
		if v.Key == key {
			return true
		}
	}
	return false
}

// alreadyPresent reports written keys the document already carries.
// Relationships may repeat.
func alreadyPresent(existing, written []*records.DocumentAttribute) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	reported := make(map[string]struct{})
	for _, v := range written {
		if v.Key == attributes.KeyRelationships {
			continue
		}
		if _, done := reported[v.Key]; done || !hasKey(existing, v.Key) {
			continue
		}
		reported[v.Key] = struct{}{}
		errs.Add(v.Key, fmt.Sprintf("document attribute '%s' already exists", v.Key))
	}
	return errs
}
