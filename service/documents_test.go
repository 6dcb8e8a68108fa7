/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/validation"
)

func TestDocuments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.documents.PutDocument(f.ctx, tenant, &records.Document{Path: "invoices/1.pdf", ContentType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", doc.DocumentID)
	assert.Equal(t, records.FormatDate(testNow), doc.InsertedDate)

	got, err := f.documents.GetDocument(f.ctx, tenant, doc.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "invoices/1.pdf", got.Path)

	_, err = f.documents.PutDocument(f.ctx, tenant, &records.Document{
		DocumentID:   "older",
		InsertedDate: records.FormatDate(testNow.Add(-48 * time.Hour)),
	})
	require.NoError(t, err)

	today, err := f.documents.FindDocumentsByDate(f.ctx, tenant, testNow, pagination.Request{})
	require.NoError(t, err)
	require.Len(t, today.Items, 1)
	assert.Equal(t, doc.DocumentID, today.Items[0].DocumentID)

	earlier, err := f.documents.FindDocumentsByDate(f.ctx, tenant, testNow.Add(-48*time.Hour), pagination.Request{})
	require.NoError(t, err)
	require.Len(t, earlier.Items, 1)
	assert.Equal(t, "older", earlier.Items[0].DocumentID)

	require.NoError(t, f.documents.AddTags(f.ctx, tenant, doc.DocumentID, []*records.DocumentTag{
		{TagKey: "project", TagValue: "apollo"},
		{TagKey: "owner", TagValue: "joe"},
	}, "joe"))

	tags, err := f.documents.FindTags(f.ctx, tenant, doc.DocumentID, pagination.Request{})
	require.NoError(t, err)
	require.Len(t, tags.Items, 2)
	assert.Equal(t, "owner", tags.Items[0].TagKey)
	assert.Equal(t, "joe", tags.Items[0].UserID)

	tagged, err := f.documents.FindDocumentsByTag(f.ctx, tenant, "project", "apollo", pagination.Request{})
	require.NoError(t, err)
	require.Len(t, tagged.Items, 1)
	assert.Equal(t, doc.DocumentID, tagged.Items[0].DocumentID)

	f.define(t, attributes.DataTypeString, "letter")
	require.NoError(t, f.values.Add(f.ctx, tenant, WriteRequest{
		DocumentID: doc.DocumentID,
		Values:     []*records.DocumentAttribute{str("letter", "a")},
		Mode:       validation.ModePartial,
	}))

	require.NoError(t, f.documents.DeleteDocument(f.ctx, tenant, doc.DocumentID))
	gone, err := f.documents.GetDocument(f.ctx, tenant, doc.DocumentID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	values, err := f.values.List(f.ctx, tenant, doc.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, values)

	err = f.documents.DeleteDocument(f.ctx, tenant, doc.DocumentID)
	assert.True(t, storeerrors.IsNotFound(err))
}

func TestSyncs(t *testing.T) {
	f := newFixture(t)

	for i, status := range []string{"PENDING", "COMPLETE", "FAILED"} {
		_, err := f.syncs.AddSync(f.ctx, tenant, &records.DocumentSync{
			DocumentID: "doc1",
			Service:    "OPENSEARCH",
			Status:     status,
			SyncDate:   records.FormatDate(testNow.Add(time.Duration(i) * time.Hour)),
		})
		require.NoError(t, err)
	}

	latest, err := f.syncs.AddSync(f.ctx, tenant, &records.DocumentSync{DocumentID: "doc2", Service: "TYPESENSE", Status: "COMPLETE"})
	require.NoError(t, err)
	assert.Equal(t, records.FormatDate(testNow), latest.SyncDate)
	assert.Equal(t, testNow.Add(24*time.Hour).Unix(), latest.TimeToLive)

	all, err := f.syncs.FindSyncs(f.ctx, tenant, "doc1", time.Time{}, time.Time{}, pagination.Request{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "FAILED", all.Items[0].Status)

	window, err := f.syncs.FindSyncs(f.ctx, tenant, "doc1", testNow.Add(30*time.Minute), testNow.Add(90*time.Minute), pagination.Request{})
	require.NoError(t, err)
	require.Len(t, window.Items, 1)
	assert.Equal(t, "COMPLETE", window.Items[0].Status)

	before, err := f.syncs.FindSyncs(f.ctx, tenant, "doc1", time.Time{}, testNow.Add(30*time.Minute), pagination.Request{})
	require.NoError(t, err)
	require.Len(t, before.Items, 1)
	assert.Equal(t, "PENDING", before.Items[0].Status)

	_, err = f.syncs.AddSync(f.ctx, tenant, &records.DocumentSync{DocumentID: "doc1"})
	assert.True(t, storeerrors.IsIllegalState(err))
}

func TestMappings(t *testing.T) {
	f := newFixture(t)
	f.define(t, attributes.DataTypeString, "invoice", "customer")

	m := &Mapping{
		Name: "invoices",
		Attributes: []MappingAttribute{
			{AttributeKey: "invoice", SourceType: SourceContent, LabelMatchingType: LabelFuzzy, LabelTexts: []string{"invoice no"}},
			{AttributeKey: "customer", SourceType: SourceManual, DefaultValue: "acme"},
		},
	}
	rec, err := f.mappings.Add(f.ctx, tenant, m, "joe")
	require.NoError(t, err)

	got, err := f.mappings.Get(f.ctx, tenant, rec.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	attrs, err := f.mappings.Attributes(got)
	require.NoError(t, err)
	assert.Equal(t, m.Attributes, attrs)

	page, err := f.mappings.Find(f.ctx, tenant, pagination.Request{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "invoices", page.Items[0].Name)

	tests := []struct {
		name    string
		mapping *Mapping
		message string
	}{
		{"no name", &Mapping{Attributes: m.Attributes}, "'name' is required"},
		{"no attributes", &Mapping{Name: "x"}, "'attributes' is required"},
		{"no source", &Mapping{Name: "x", Attributes: []MappingAttribute{{AttributeKey: "invoice"}}}, "'sourceType' is required"},
		{"manual without default", &Mapping{Name: "x", Attributes: []MappingAttribute{{AttributeKey: "invoice", SourceType: SourceManual}}}, "'defaultValue' or 'defaultValues' is required"},
		{"content without labels", &Mapping{Name: "x", Attributes: []MappingAttribute{{AttributeKey: "invoice", SourceType: SourceContent, LabelMatchingType: LabelExact}}}, "'labelTexts' is required"},
		{"metadata without field", &Mapping{Name: "x", Attributes: []MappingAttribute{{AttributeKey: "invoice", SourceType: SourceMetadata, LabelMatchingType: LabelExact, LabelTexts: []string{"a"}}}}, "'metadataField' is required"},
		{"unknown attribute", &Mapping{Name: "x", Attributes: []MappingAttribute{{AttributeKey: "nope", SourceType: SourceManual, DefaultValue: "a"}}}, "invalid attribute 'nope'"},
		{"duplicate", &Mapping{Name: "x", Attributes: []MappingAttribute{
			{AttributeKey: "invoice", SourceType: SourceManual, DefaultValue: "a"},
			{AttributeKey: "invoice", SourceType: SourceManual, DefaultValue: "b"},
		}}, "duplicate attributes in mapping"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.mappings.Add(f.ctx, tenant, tc.mapping, "joe")
			require.Error(t, err)
			assert.True(t, storeerrors.IsValidationError(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	require.NoError(t, f.mappings.Delete(f.ctx, tenant, rec.DocumentID))
	assert.True(t, storeerrors.IsNotFound(f.mappings.Delete(f.ctx, tenant, rec.DocumentID)))
}
