/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
	"github.com/suparena/docstore/storagemodels"
	"github.com/suparena/docstore/validation"
)

func str(key, value string) *records.DocumentAttribute { return records.NewStringValue("", key, value) }
func num(key string, value float64) *records.DocumentAttribute {
	return records.NewNumberValue("", key, value)
}

func compositeSchema() *schema.Schema {
	return &schema.Schema{
		Attributes: &schema.Attributes{
			Optional:      []schema.Optional{{AttributeKey: "letter"}, {AttributeKey: "number"}, {AttributeKey: "note"}},
			CompositeKeys: []schema.CompositeKey{{AttributeKeys: []string{"letter", "number"}}},
		},
	}
}

func composites(values []*records.DocumentAttribute) []string {
	var out []string
	for _, v := range values {
		if v.ValueType == attributes.ValueCompositeString {
			out = append(out, v.Key+"="+v.StringValue)
		}
	}
	sort.Strings(out)
	return out
}

func TestCompositeValuesAreRecomputed(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "letter", "note")
	f.define(t, attributes.DataTypeNumber, "number")
	require.NoError(t, f.schemas.SetSitesSchema(f.ctx, tenant, "site", compositeSchema(), "joe"))

	require.NoError(t, f.values.Set(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values: []*records.DocumentAttribute{
			str("letter", "a"), str("letter", "b"),
			num("number", 1), num("number", 2), num("number", 3),
		},
		Mode:   validation.ModeFull,
		UserID: "joe",
	}))

	all, err := f.values.List(f.ctx, tenant, "doc1")
	require.NoError(t, err)
	got := composites(all)
	require.Len(t, got, 6)
	assert.Equal(t, "letter#number=a#000000000000001.0000", got[0])
	assert.Equal(t, "letter#number=b#000000000000003.0000", got[5])
	for _, v := range all {
		assert.Equal(t, "doc1", v.DocumentID)
	}

	// narrowing one component shrinks the product
	require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("letter", "z")},
		Mode:       validation.ModePartial,
	}))
	all, err = f.values.List(f.ctx, tenant, "doc1")
	require.NoError(t, err)
	assert.Len(t, composites(all), 3)
	letters, err := f.values.Get(f.ctx, tenant, "doc1", "letter")
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "z", letters[0].StringValue)

	// removing a component removes every composite
	require.NoError(t, f.values.Delete(f.ctx, tenant, "doc1", "number", validation.ModeFull, attributes.Access{}))
	all, err = f.values.List(f.ctx, tenant, "doc1")
	require.NoError(t, err)
	assert.Empty(t, composites(all))
	assert.Len(t, all, 1)

	err = f.values.Delete(f.ctx, tenant, "doc1", "number", validation.ModeFull, attributes.Access{})
	assert.True(t, storeerrors.IsNotFound(err))
}

func TestWriteRejectsInvalidValues(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "letter")
	f.define(t, attributes.DataTypeNumber, "number")

	tests := []struct {
		name    string
		values  []*records.DocumentAttribute
		message string
	}{
		{"unknown key", []*records.DocumentAttribute{str("missing", "x")}, "attribute 'missing' not found"},
		{"wrong type", []*records.DocumentAttribute{str("number", "x")}, "attribute only support number value"},
		{"composite", []*records.DocumentAttribute{records.NewCompositeValue("", "letter#number", "a#1")}, "is a composite key and cannot be set"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.values.Add(f.ctx, tenant, WriteRequest{DocumentID: "doc1", Values: tc.values, Mode: validation.ModePartial})
			require.Error(t, err)
			assert.True(t, storeerrors.IsValidationError(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	all, err := f.values.List(f.ctx, tenant, "doc1")
	require.NoError(t, err)
	assert.Empty(t, all)

	err = f.values.Add(f.ctx, tenant, WriteRequest{Values: []*records.DocumentAttribute{str("letter", "a")}})
	assert.True(t, storeerrors.IsValidationError(err))

	// NONE skips type and definition checks
	require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("undefined", "x")},
		Mode:       validation.ModeNone,
	}))
}

func TestFullModeAppliesSchema(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "status", "region", "owner", "extra")
	sch := siteSchema()
	sch.Attributes.Required = append(sch.Attributes.Required, schema.Required{AttributeKey: "owner"})
	require.NoError(t, f.schemas.SetSitesSchema(f.ctx, tenant, "site", sch, "joe"))

	err := f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("region", "mars"), str("extra", "x")},
		Mode:       validation.ModeFull,
	})
	require.Error(t, err)
	errs, ok := storeerrors.AsValidationErrors(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{
		"missing required attribute 'owner'",
		"invalid attribute value 'region', only allowed values are eu,us",
		"attribute 'extra' not listed in required/optional attributes",
	}, errs.Messages())

	require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("owner", "joe"), str("region", "eu")},
		Mode:       validation.ModeFull,
	}))
	status, err := f.values.Get(f.ctx, tenant, "doc1", "status")
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, "draft", status[0].StringValue)

	// required values already stored satisfy later partial writes
	require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("region", "us")},
		Mode:       validation.ModeFull,
	}))

	err = f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("owner", "ann")},
		Mode:       validation.ModeFull,
		Access:     attributes.Access{Op: attributes.OpCreate},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document attribute 'owner' already exists")
}

func TestSetReplacesAndGuardsProtectedValues(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "letter", "note")
	_, err := f.attrs.Add(f.ctx, tenant, AddAttributeRequest{Key: "legal", Type: attributes.TypeGovernance}, elevated)
	require.NoError(t, err)

	err = f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("legal", "hold")},
		Mode:       validation.ModePartial,
	})
	require.Error(t, err)
	assert.True(t, storeerrors.IsAccessDenied(err))
	assert.Contains(t, err.Error(), "Cannot add attribute 'legal' type GOVERNANCE")

	require.NoError(t, f.values.Set(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("legal", "hold"), str("letter", "a"), str("note", "n")},
		Mode:       validation.ModePartial,
		Access:     elevated,
	}))

	err = f.values.Set(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("letter", "b")},
		Mode:       validation.ModePartial,
	})
	require.Error(t, err)
	assert.True(t, storeerrors.IsAccessDenied(err))
	assert.Contains(t, err.Error(), "Cannot remove attribute 'legal' type GOVERNANCE")

	err = f.values.Delete(f.ctx, tenant, "doc1", "legal", validation.ModePartial, attributes.Access{})
	assert.True(t, storeerrors.IsAccessDenied(err))

	require.NoError(t, f.values.Set(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("letter", "b")},
		Mode:       validation.ModePartial,
		Access:     elevated,
	}))
	all, err := f.values.List(f.ctx, tenant, "doc1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].StringValue)
}

func TestModeNoneKeepsAccessRules(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "letter")
	_, err := f.attrs.Add(f.ctx, tenant, AddAttributeRequest{Key: "retention", Type: attributes.TypeGovernance}, elevated)
	require.NoError(t, err)

	tests := []struct {
		name    string
		write   func(WriteRequest) error
		values  []*records.DocumentAttribute
		message string
	}{
		{
			name:    "add protected value",
			write:   func(r WriteRequest) error { return f.values.Add(f.ctx, tenant, r) },
			values:  []*records.DocumentAttribute{str("retention", "7y")},
			message: "Cannot add attribute 'retention' type GOVERNANCE",
		},
		{
			name:    "set protected value",
			write:   func(r WriteRequest) error { return f.values.Set(f.ctx, tenant, r) },
			values:  []*records.DocumentAttribute{str("retention", "7y")},
			message: "Cannot set attribute 'retention' type GOVERNANCE",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.write(WriteRequest{DocumentID: "doc1", Values: tc.values, Mode: validation.ModeNone, Access: attributes.Access{}})
			require.Error(t, err)
			assert.True(t, storeerrors.IsAccessDenied(err))
			assert.Contains(t, err.Error(), tc.message)

			all, err := f.values.List(f.ctx, tenant, "doc1")
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}

	t.Run("set cannot drop protected value", func(t *testing.T) {
		require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
			DocumentID: "doc2",
			Values:     []*records.DocumentAttribute{str("retention", "7y")},
			Mode:       validation.ModeNone,
			Access:     elevated,
		}))

		err := f.values.Set(f.ctx, tenant, WriteRequest{
			DocumentID: "doc2",
			Values:     []*records.DocumentAttribute{str("letter", "a")},
			Mode:       validation.ModeNone,
		})
		require.Error(t, err)
		assert.True(t, storeerrors.IsAccessDenied(err))
		assert.Contains(t, err.Error(), "Cannot remove attribute 'retention' type GOVERNANCE")

		kept, err := f.values.Get(f.ctx, tenant, "doc2", "retention")
		require.NoError(t, err)
		require.Len(t, kept, 1)
		assert.Equal(t, "7y", kept[0].StringValue)
	})
}

func TestDeleteKeepsRequiredValues(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "category", "note")
	require.NoError(t, f.schemas.SetSitesSchema(f.ctx, tenant, "site", &schema.Schema{
		Attributes: &schema.Attributes{
			Required: []schema.Required{{AttributeKey: "category"}},
			Optional: []schema.Optional{{AttributeKey: "note"}},
		},
	}, "joe"))

	require.NoError(t, f.values.Set(f.ctx, tenant, WriteRequest{
		DocumentID: "doc1",
		Values:     []*records.DocumentAttribute{str("category", "x"), str("note", "n")},
		Mode:       validation.ModeFull,
	}))

	tests := []struct {
		name    string
		mode    validation.Mode
		message string
	}{
		{"full", validation.ModeFull, "missing required attribute 'category'"},
		{"partial", validation.ModePartial, "missing required attribute 'category'"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.values.Delete(f.ctx, tenant, "doc1", "category", tc.mode, attributes.Access{})
			require.Error(t, err)
			assert.True(t, storeerrors.IsValidationError(err))
			assert.Contains(t, err.Error(), tc.message)

			kept, err := f.values.Get(f.ctx, tenant, "doc1", "category")
			require.NoError(t, err)
			assert.Len(t, kept, 1)
		})
	}

	require.NoError(t, f.values.Delete(f.ctx, tenant, "doc1", "note", validation.ModeFull, attributes.Access{}))
	require.NoError(t, f.values.Delete(f.ctx, tenant, "doc1", "category", validation.ModeNone, attributes.Access{}))
	all, err := f.values.List(f.ctx, tenant, "doc1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFindByValue(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "customer")

	for doc, name := range map[string]string{"d1": "acme corp", "d2": "acme labs", "d3": "globex", "d4": "initech"} {
		require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
			DocumentID: doc,
			Values:     []*records.DocumentAttribute{str("customer", name)},
			Mode:       validation.ModePartial,
		}))
	}

	docs := func(page *Page[*records.DocumentAttribute]) string {
		var ids []string
		for _, v := range page.Items {
			ids = append(ids, v.DocumentID)
		}
		return strings.Join(ids, ",")
	}

	page, err := f.values.FindByValue(f.ctx, tenant, "customer", storagemodels.SortEquals, "globex", "", pagination.Request{})
	require.NoError(t, err)
	assert.Equal(t, "d3", docs(page))

	page, err = f.values.FindByValue(f.ctx, tenant, "customer", storagemodels.SortBeginsWith, "acme", "", pagination.Request{})
	require.NoError(t, err)
	assert.Equal(t, "d1,d2", docs(page))

	page, err = f.values.FindByValue(f.ctx, tenant, "customer", storagemodels.SortBetween, "b", "h", pagination.Request{})
	require.NoError(t, err)
	assert.Equal(t, "d3", docs(page))

	_, err = f.values.FindByValue(f.ctx, tenant, "customer", storagemodels.SortLess, "b", "", pagination.Request{})
	assert.True(t, storeerrors.IsValidationError(err))
}
