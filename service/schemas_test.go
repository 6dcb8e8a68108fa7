/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
)

func siteSchema() *schema.Schema {
	return &schema.Schema{
		Attributes: &schema.Attributes{
			Required: []schema.Required{{AttributeKey: "status", AllowedValues: []string{"draft", "final"}, DefaultValue: "draft"}},
			Optional: []schema.Optional{{AttributeKey: "region", AllowedValues: []string{"us", "eu"}}},
		},
	}
}

func TestSitesSchema(t *testing.T) {
	f := newFixture(t)

	none, err := f.schemas.GetSitesSchema(f.ctx, tenant)
	require.NoError(t, err)
	assert.Nil(t, none)

	err = f.schemas.SetSitesSchema(f.ctx, tenant, "site", siteSchema(), "joe")
	require.Error(t, err)
	errs, ok := storeerrors.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs.Messages(), "attribute 'status' not found")

	f.define(t, attributes.DataTypeString, "status", "region")
	require.NoError(t, f.schemas.SetSitesSchema(f.ctx, tenant, "site", siteSchema(), "joe"))

	got, err := f.schemas.GetSitesSchema(f.ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, got.RequiredKeys())

	values, err := f.schemas.AllowedValues(f.ctx, tenant, "", "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "final"}, values)

	// replacing the schema drops the old allowed values
	updated := siteSchema()
	updated.Attributes.Required[0].AllowedValues = []string{"draft", "review"}
	require.NoError(t, f.schemas.SetSitesSchema(f.ctx, tenant, "site", updated, "joe"))
	values, err = f.schemas.AllowedValues(f.ctx, tenant, "", "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "review"}, values)

	err = f.schemas.SetSitesSchema(f.ctx, tenant, "", siteSchema(), "joe")
	assert.True(t, storeerrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "'name' is required")
}

func TestClassifications(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "status", "region", "invoice")
	require.NoError(t, f.schemas.SetSitesSchema(f.ctx, tenant, "site", siteSchema(), "joe"))

	cls := &schema.Schema{
		Attributes: &schema.Attributes{
			Required: []schema.Required{{AttributeKey: "invoice"}},
			Optional: []schema.Optional{{AttributeKey: "region", AllowedValues: []string{"apac"}}},
		},
	}

	rec, err := f.schemas.SetClassification(f.ctx, tenant, "", "invoices", cls, "joe")
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.DocumentID)

	_, err = f.schemas.SetClassification(f.ctx, tenant, "", "invoices", cls, "joe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'name' is already used")

	// updating under the same id keeps the name
	_, err = f.schemas.SetClassification(f.ctx, tenant, rec.DocumentID, "invoices", cls, "joe")
	require.NoError(t, err)

	override := &schema.Schema{Attributes: &schema.Attributes{Optional: []schema.Optional{{AttributeKey: "status"}}}}
	_, err = f.schemas.SetClassification(f.ctx, tenant, "", "override", override, "joe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attribute cannot override site schema attribute")

	got, err := f.schemas.GetClassification(f.ctx, tenant, rec.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "invoices", got.Name)

	values, err := f.schemas.AllowedValues(f.ctx, tenant, rec.DocumentID, "region")
	require.NoError(t, err)
	assert.Equal(t, []string{"apac", "eu", "us"}, values)

	across, err := f.schemas.AttributeAllowedValues(f.ctx, tenant, "region")
	require.NoError(t, err)
	assert.Equal(t, []string{"apac", "eu", "us"}, across)

	resolved, err := f.schemas.ResolveSchema(f.ctx, tenant, []*records.DocumentAttribute{
		records.NewClassificationValue("doc", rec.DocumentID),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"invoice", "status"}, resolved.RequiredKeys())

	siteOnly, err := f.schemas.ResolveSchema(f.ctx, tenant, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, siteOnly.RequiredKeys())

	_, err = f.schemas.ResolveSchema(f.ctx, tenant, []*records.DocumentAttribute{records.NewClassificationValue("doc", "nope")})
	assert.True(t, storeerrors.IsValidationError(err))

	page, err := f.schemas.FindClassifications(f.ctx, tenant, pagination.Request{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "invoices", page.Items[0].Name)

	require.NoError(t, f.schemas.DeleteClassification(f.ctx, tenant, rec.DocumentID))
	gone, err := f.schemas.GetClassification(f.ctx, tenant, rec.DocumentID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = f.schemas.DeleteClassification(f.ctx, tenant, rec.DocumentID)
	assert.True(t, storeerrors.IsNotFound(err))

	// the attribute key records went with it
	require.NoError(t, f.attrs.Delete(f.ctx, tenant, "invoice", attributes.Access{}))
}
