/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/suparena/docstore/datastore"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
	"github.com/suparena/docstore/validation"
)

// SourceType says where a mapped value comes from.
type SourceType string

const (
	SourceContent         SourceType = "CONTENT"
	SourceContentKeyValue SourceType = "CONTENT_KEY_VALUE"
	SourceManual          SourceType = "MANUAL"
	SourceMetadata        SourceType = "METADATA"
)

// LabelMatchingType controls how label texts match content.
type LabelMatchingType string

const (
	LabelExact      LabelMatchingType = "EXACT"
	LabelFuzzy      LabelMatchingType = "FUZZY"
	LabelBeginsWith LabelMatchingType = "BEGINS_WITH"
	LabelContains   LabelMatchingType = "CONTAINS"
)

// MetadataField is a document field a METADATA mapping reads.
type MetadataField string

const (
	MetadataUsername    MetadataField = "USERNAME"
	MetadataPath        MetadataField = "PATH"
	MetadataContentType MetadataField = "CONTENT_TYPE"
)

// MappingAttribute maps one source onto an attribute key.
type MappingAttribute struct {
	AttributeKey      string            `json:"attributeKey" yaml:"attributeKey"`
	SourceType        SourceType        `json:"sourceType" yaml:"sourceType"`
	MetadataField     MetadataField     `json:"metadataField,omitempty" yaml:"metadataField,omitempty"`
	ValidationRegex   string            `json:"validationRegex,omitempty" yaml:"validationRegex,omitempty"`
	LabelTexts        []string          `json:"labelTexts,omitempty" yaml:"labelTexts,omitempty"`
	LabelMatchingType LabelMatchingType `json:"labelMatchingType,omitempty" yaml:"labelMatchingType,omitempty"`
	DefaultValue      string            `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	DefaultValues     []string          `json:"defaultValues,omitempty" yaml:"defaultValues,omitempty"`
}

// Mapping is a named list of attribute mappings.
type Mapping struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Attributes  []MappingAttribute `json:"attributes" yaml:"attributes"`
}

// MappingService stores mappings.
type MappingService struct {
	store       datastore.DataStore
	definitions validation.DefinitionSource
	opts        options
}

// NewMappingService builds a MappingService. definitions checks that mapped
// attribute keys exist.
func NewMappingService(store datastore.DataStore, definitions validation.DefinitionSource, opts ...Option) *MappingService {
	return &MappingService{store: store, definitions: definitions, opts: newOptions(opts)}
}

// Save validates m and stores it under id, or under a new id when id is
// empty.
func (s *MappingService) Save(ctx context.Context, tenant, id string, m *Mapping, userID string) (*records.Mapping, error) {
	errs := validateMapping(m)
	if len(errs) == 0 {
		more, err := s.checkKeys(ctx, tenant, m)
		if err != nil {
			return nil, err
		}
		errs = more
	}
	if len(errs) > 0 {
		return nil, errs
	}

	body, err := json.Marshal(m.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping attributes: %w", err)
	}
	if id == "" {
		id = s.opts.newID()
	}
	rec := &records.Mapping{
		DocumentID:   id,
		Name:         m.Name,
		Description:  m.Description,
		Attributes:   string(body),
		UserID:       userID,
		InsertedDate: s.opts.timestamp(),
	}
	if err := datastore.PutRecord(ctx, s.store, tenant, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Add stores m under a new id.
func (s *MappingService) Add(ctx context.Context, tenant string, m *Mapping, userID string) (*records.Mapping, error) {
	return s.Save(ctx, tenant, "", m, userID)
}

func (s *MappingService) checkKeys(ctx context.Context, tenant string, m *Mapping) (storeerrors.ValidationErrors, error) {
	list := make([]string, 0, len(m.Attributes))
	for _, a := range m.Attributes {
		list = append(list, a.AttributeKey)
	}
	defs, err := s.definitions.GetMany(ctx, tenant, list)
	if err != nil {
		return nil, err
	}

	var errs storeerrors.ValidationErrors
	seen := make(map[string]struct{}, len(list))
	duplicate := false
	for _, k := range list {
		if _, ok := defs[k]; !ok {
			errs.Add(k, fmt.Sprintf("invalid attribute '%s'", k))
		}
		if _, ok := seen[k]; ok {
			duplicate = true
		}
		seen[k] = struct{}{}
	}
	if duplicate {
		errs.Add("", "duplicate attributes in mapping")
	}
	return errs, nil
}

func validateMapping(m *Mapping) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	if m == nil {
		errs.Add("attributes", "'attributes' is required")
		return errs
	}
	if m.Name == "" {
		errs.Add("name", "'name' is required")
	}
	if len(m.Attributes) == 0 {
		errs.Add("attributes", "'attributes' is required")
	}
	if len(errs) > 0 {
		return errs
	}

	for i, a := range m.Attributes {
		field := func(name string) string { return fmt.Sprintf("attribute[%d].%s", i, name) }

		if a.AttributeKey == "" {
			errs.Add(field("attributeKey"), "'attributeKey' is required")
		}
		switch a.SourceType {
		case "":
			errs.Add(field("sourceType"), "'sourceType' is required")
		case SourceManual:
			if a.DefaultValue == "" && len(a.DefaultValues) == 0 {
				errs.Add(field("defaultValue"), "'defaultValue' or 'defaultValues' is required")
			}
		default:
			if a.LabelMatchingType == "" {
				errs.Add(field("labelMatchingType"), "'labelMatchingType' is required")
			}
			if len(a.LabelTexts) == 0 {
				errs.Add(field("labelTexts"), "'labelTexts' is required")
			}
		}
		if len(errs) == 0 && a.SourceType == SourceMetadata && a.MetadataField == "" {
			errs.Add(field("metadataField"), "'metadataField' is required")
		}
	}
	return errs
}

// Get returns the mapping, or nil when it does not exist.
func (s *MappingService) Get(ctx context.Context, tenant, id string) (*records.Mapping, error) {
	if err := keys.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	rec := &records.Mapping{DocumentID: id}
	pair, err := rec.PrimaryKey(tenant)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Get(ctx, pair.Key())
	if err != nil || item == nil {
		return nil, err
	}
	rec = &records.Mapping{}
	if err := records.Unmarshal(tenant, item, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Attributes decodes the attribute mappings of rec.
func (s *MappingService) Attributes(rec *records.Mapping) ([]MappingAttribute, error) {
	var out []MappingAttribute
	if rec.Attributes == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(rec.Attributes), &out); err != nil {
		return nil, fmt.Errorf("failed to decode mapping attributes: %w", err)
	}
	return out, nil
}

// Find lists mappings ordered by name.
func (s *MappingService) Find(ctx context.Context, tenant string, req pagination.Request) (*Page[*records.Mapping], error) {
	b := storagemodels.Query(records.MappingIndexPK(tenant)).
		OnIndex(storagemodels.IndexGSI1).
		WithSortKeyPrefix(keys.PrefixMapping)
	return findPage(ctx, &s.opts, s.store, tenant, req, b, func() *records.Mapping { return &records.Mapping{} })
}

// Delete removes a mapping. A missing mapping is reported as not found.
func (s *MappingService) Delete(ctx context.Context, tenant, id string) error {
	existing, err := s.Get(ctx, tenant, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return storeerrors.NewNotFoundError("mapping", id)
	}
	return datastore.DeleteRecord(ctx, s.store, tenant, existing)
}
