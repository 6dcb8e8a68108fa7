/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package validation checks document attribute values against their
// definitions and the schema that applies to the document. It never writes.
package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/composite"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
)

// Mode selects how much of the document is validated.
type Mode string

const (
	// ModeNone skips validation except the access rules for protected
	// attributes.
	ModeNone Mode = "NONE"
	// ModePartial checks only the values in the request.
	ModePartial Mode = "PARTIAL"
	// ModeFull checks the resulting value set against the resolved schema.
	ModeFull Mode = "FULL"
)

// ParseMode parses s case-insensitively. An empty string yields FULL.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeFull, nil
	}
	m := Mode(strings.ToUpper(s))
	switch m {
	case ModeNone, ModePartial, ModeFull:
		return m, nil
	}
	return "", fmt.Errorf("unknown validation mode %q", s)
}

// DefinitionSource loads attribute definitions. Missing keys are absent
// from the returned map.
type DefinitionSource interface {
	GetMany(ctx context.Context, tenant string, keys []string) (map[string]*records.Attribute, error)
}

// SchemaSource resolves the schema that applies to a document carrying
// values. A nil schema means none is configured.
type SchemaSource interface {
	ResolveSchema(ctx context.Context, tenant string, values []*records.DocumentAttribute) (*schema.Schema, error)
}

// Request describes one attribute write.
type Request struct {
	Tenant     string
	DocumentID string
	// Values are the values being written.
	Values []*records.DocumentAttribute
	// Existing are the document's stored values.
	Existing []*records.DocumentAttribute
	// Replace means keys of Existing missing from Values are removed.
	Replace bool
	Mode    Mode
	Access  attributes.Access
}

// Result carries everything the validator found.
type Result struct {
	Errors storeerrors.ValidationErrors
	// Schema is the resolved schema in FULL mode, nil otherwise.
	Schema *schema.Schema
	// CompositeKeys lists the schema composite keys whose components are
	// all present.
	CompositeKeys [][]string
	// Defaults are required values the schema supplies.
	Defaults []*records.DocumentAttribute
	// Definitions holds every definition loaded while validating.
	Definitions map[string]*records.Attribute
}

// Err returns the collected errors, or nil.
func (r *Result) Err() error {
	return r.Errors.Err()
}

// Validator checks attribute writes.
type Validator struct {
	definitions DefinitionSource
	schemas     SchemaSource
}

// NewValidator builds a Validator.
func NewValidator(definitions DefinitionSource, schemas SchemaSource) *Validator {
	return &Validator{definitions: definitions, schemas: schemas}
}

// Validate checks req. The returned error is reserved for failures loading
// definitions or schemas; validation problems are reported in Result.Errors.
func (v *Validator) Validate(ctx context.Context, req Request) (*Result, error) {
	res := &Result{Definitions: map[string]*records.Attribute{}}
	if req.Mode == ModeNone && req.Access.Elevated {
		return res, nil
	}

	keys := make([]string, 0, len(req.Values)+len(req.Existing))
	for _, val := range req.Values {
		keys = append(keys, val.Key)
	}
	if req.Replace {
		for _, val := range req.Existing {
			keys = append(keys, val.Key)
		}
	}
	if err := v.load(ctx, req.Tenant, keys, res.Definitions); err != nil {
		return nil, err
	}

	// NONE skips value checks but never the access rules.
	if req.Mode == ModeNone {
		res.Errors.Append(checkAccess(req, res.Definitions))
	} else {
		res.Errors.Append(checkValues(req, res.Definitions))
	}
	if req.Replace {
		res.Errors.Append(checkRemovals(req, res.Definitions))
	}

	if req.Mode != ModeFull {
		return res, nil
	}

	resulting := Resulting(req.Existing, req.Values, req.Replace)
	sch, err := v.schemas.ResolveSchema(ctx, req.Tenant, resulting)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return res, nil
	}
	res.Schema = sch

	if err := v.load(ctx, req.Tenant, sch.RequiredKeys(), res.Definitions); err != nil {
		return nil, err
	}
	res.Defaults = schema.RequiredDefaults(sch, req.DocumentID, resulting, res.Definitions)

	complete := append(append([]*records.DocumentAttribute(nil), resulting...), res.Defaults...)
	res.Errors.Append(checkSchema(sch, req.Values, complete))
	res.CompositeKeys = composite.Complete(sch.CompositeKeyLists(), complete)

	return res, nil
}

// load adds the definitions of keys not already in defs. Reserved keys
// without a stored definition get an implicit STANDARD one.
func (v *Validator) load(ctx context.Context, tenant string, keys []string, defs map[string]*records.Attribute) error {
	var missing []string
	seen := make(map[string]struct{})
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := defs[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return nil
	}

	found, err := v.definitions.GetMany(ctx, tenant, missing)
	if err != nil {
		return fmt.Errorf("failed to load attribute definitions: %w", err)
	}
	for _, k := range missing {
		if def, ok := found[k]; ok {
			defs[k] = def
			continue
		}
		if r, ok := attributes.FindReserved(k); ok {
			defs[k] = records.NewAttribute(k, r.DataType, attributes.TypeStandard)
		}
	}
	return nil
}

func checkValues(req Request, defs map[string]*records.Attribute) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	denied := make(map[string]struct{})

	for _, val := range req.Values {
		if val.Key == "" {
			errs.Add("key", "'key' is missing from attribute")
			continue
		}
		if val.ValueType == attributes.ValueCompositeString {
			errs.Add(val.Key, fmt.Sprintf("attribute '%s' is a composite key and cannot be set", val.Key))
			continue
		}

		def, ok := defs[val.Key]
		if !ok {
			errs.Add(val.Key, fmt.Sprintf("attribute '%s' not found", val.Key))
			continue
		}

		if !val.ValueType.Compatible(def.DataType) {
			errs.Add(val.Key, incompatibleMessage(def.DataType))
		}

		deny(&errs, denied, req.Access, val.Key, def)
	}
	return errs
}

// checkAccess reports the protected values in req the caller may not write.
// Values without a definition are ignored.
func checkAccess(req Request, defs map[string]*records.Attribute) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	denied := make(map[string]struct{})
	for _, val := range req.Values {
		if def, ok := defs[val.Key]; ok {
			deny(&errs, denied, req.Access, val.Key, def)
		}
	}
	return errs
}

func deny(errs *storeerrors.ValidationErrors, denied map[string]struct{}, access attributes.Access, key string, def *records.Attribute) {
	if _, done := denied[key]; done || !def.Type.Protected() || access.Elevated {
		return
	}
	denied[key] = struct{}{}
	errs.AddKind(storeerrors.KindAccessDenied, key, attributes.DeniedMessage(access.Op, key, def.Type))
}

func checkRemovals(req Request, defs map[string]*records.Attribute) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	if req.Access.Elevated {
		return errs
	}

	kept := make(map[string]struct{}, len(req.Values))
	for _, val := range req.Values {
		kept[val.Key] = struct{}{}
	}

	reported := make(map[string]struct{})
	for _, val := range req.Existing {
		if val.ValueType == attributes.ValueCompositeString {
			continue
		}
		if _, ok := kept[val.Key]; ok {
			continue
		}
		if _, done := reported[val.Key]; done {
			continue
		}
		def, ok := defs[val.Key]
		if !ok || !def.Type.Protected() {
			continue
		}
		reported[val.Key] = struct{}{}
		errs.AddKind(storeerrors.KindAccessDenied, val.Key, attributes.DeniedMessage(attributes.OpRemove, val.Key, def.Type))
	}
	return errs
}

func checkSchema(sch *schema.Schema, written, complete []*records.DocumentAttribute) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors

	present := make(map[string]struct{}, len(complete))
	for _, val := range complete {
		present[val.Key] = struct{}{}
	}
	for _, k := range sch.RequiredKeys() {
		if _, ok := present[k]; !ok {
			errs.Add(k, fmt.Sprintf("missing required attribute '%s'", k))
		}
	}

	listed := make(map[string]struct{})
	for _, k := range sch.AttributeKeys() {
		listed[k] = struct{}{}
	}

	reported := make(map[string]struct{})
	for _, val := range written {
		if val.Key == "" || val.ValueType == attributes.ValueCompositeString {
			continue
		}

		if allowed, _ := sch.AllowedValues(val.Key); len(allowed) > 0 && !val.ValueType.Keyless() {
			if !containsValue(allowed, val.Value()) {
				errs.Add(val.Key, fmt.Sprintf("invalid attribute value '%s', only allowed values are %s",
					val.Key, strings.Join(sortedUnique(allowed), ",")))
			}
		}

		if sch.AllowsAdditional() || attributes.IsReserved(val.Key) {
			continue
		}
		if _, ok := listed[val.Key]; ok {
			continue
		}
		if _, done := reported[val.Key]; done {
			continue
		}
		reported[val.Key] = struct{}{}
		errs.Add(val.Key, fmt.Sprintf("attribute '%s' not listed in required/optional attributes", val.Key))
	}
	return errs
}

// Resulting returns the value set a document holds after the write. Without
// replace, written keys supersede the existing values of the same key.
// Existing composite values are always dropped.
func Resulting(existing, written []*records.DocumentAttribute, replace bool) []*records.DocumentAttribute {
	out := make([]*records.DocumentAttribute, 0, len(existing)+len(written))
	if !replace {
		writtenKeys := make(map[string]struct{}, len(written))
		for _, val := range written {
			writtenKeys[val.Key] = struct{}{}
		}
		for _, val := range existing {
			if val.ValueType == attributes.ValueCompositeString {
				continue
			}
			if _, ok := writtenKeys[val.Key]; ok {
				continue
			}
			out = append(out, val)
		}
	}
	return append(out, written...)
}

func incompatibleMessage(d attributes.DataType) string {
	switch d {
	case attributes.DataTypeString:
		return "attribute only support string value"
	case attributes.DataTypeNumber:
		return "attribute only support number value"
	case attributes.DataTypeBoolean:
		return "attribute only support boolean value"
	}
	return "attribute does not support a value"
}

func containsValue(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sortedUnique(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
