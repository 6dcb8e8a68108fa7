/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/datastore/ddb"
	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/datastore/testmodels"
	"github.com/suparena/docstore/schema"
	"github.com/suparena/docstore/service"
)

const validYAML = `
definitions:
  - key: status
  - key: region
  - key: amount
    dataType: NUMBER
  - key: approved
    dataType: KEY_ONLY
    type: GOVERNANCE
sites:
  name: sites
  attributes:
    required:
      - attributeKey: status
        allowedValues: [draft, final]
        defaultValue: draft
    optional:
      - attributeKey: region
classifications:
  - name: invoice
    schema:
      attributes:
        required:
          - attributeKey: amount
        compositeKeys:
          - attributeKeys: [status, region]
        allowAdditionalAttributes: true
`

func fixtureDocument() *Document {
	doc := &Document{
		Sites:           testmodels.SiteSchema(),
		Classifications: []Classification{{Name: "invoice", Schema: testmodels.InvoiceSchema()}},
	}
	for _, a := range testmodels.Definitions() {
		doc.Definitions = append(doc.Definitions, Definition{Key: a.Key, DataType: a.DataType, Type: a.Type})
	}
	return doc
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(validYAML), 0o600))

	b, err := json.Marshal(fixtureDocument())
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "schema.JSON")
	require.NoError(t, os.WriteFile(jsonPath, b, 0o600))

	for _, path := range []string{yamlPath, jsonPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			doc, err := Load(path)
			require.NoError(t, err)

			require.Len(t, doc.Definitions, 4)
			assert.Equal(t, attributes.DataTypeNumber, doc.Definitions[2].DataType)
			assert.Equal(t, []string{"status"}, doc.Sites.RequiredKeys())
			require.Len(t, doc.Classifications, 1)
			assert.Equal(t, [][]string{{"status", "region"}}, doc.Classifications[0].Schema.CompositeKeyLists())
			assert.True(t, Check(doc).Valid())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read")

	_, err = Parse([]byte("definitions: {"), FormatYAML)
	assert.ErrorContains(t, err, "failed to parse yaml")

	_, err = Parse([]byte("{}"), Format("toml"))
	assert.EqualError(t, err, `unknown format "toml"`)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		want   []string
	}{
		{
			name: "bad definitions",
			mutate: func(d *Document) {
				d.Definitions = append(d.Definitions,
					Definition{Key: "status"},
					Definition{Key: "due", DataType: "DATE"},
				)
			},
			want: []string{
				"definitions: duplicate definition 'status'",
				"definitions: invalid dataType 'DATE'",
			},
		},
		{
			name: "unknown attribute in sites",
			mutate: func(d *Document) {
				d.Sites.Attributes.Optional = append(d.Sites.Attributes.Optional, schema.Optional{AttributeKey: "owner"})
			},
			want: []string{"sites: attribute 'owner' not found"},
		},
		{
			name: "classification overrides site",
			mutate: func(d *Document) {
				d.Classifications[0].Schema.Attributes.Optional = []schema.Optional{{AttributeKey: "status"}}
			},
			want: []string{"classification invoice: attribute cannot override site schema attribute"},
		},
		{
			name: "duplicate classification and single composite",
			mutate: func(d *Document) {
				s := testmodels.InvoiceSchema()
				s.Attributes.CompositeKeys = []schema.CompositeKey{{AttributeKeys: []string{"amount"}}}
				d.Classifications = append(d.Classifications, Classification{Name: "invoice", Schema: s})
			},
			want: []string{
				"classification invoice: compositeKeys must have more than 1 value",
				"classification invoice: 'name' is already used",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fixtureDocument()
			tt.mutate(doc)

			report := Check(doc)
			assert.False(t, report.Valid())
			assert.Equal(t, tt.want, report.Lines())
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := ddb.NewDynamodbDataStore(mock.New(), "docstore-test")
	attrs := service.NewAttributeService(store)
	schemas := service.NewSchemaService(store, attrs)

	_, err := attrs.Add(ctx, "acme", service.AddAttributeRequest{Key: testmodels.KeyStatus}, attributes.Access{})
	require.NoError(t, err)

	doc := fixtureDocument()
	res, err := Apply(ctx, zerolog.Nop(), doc, "acme", "admin", attrs, schemas)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 1, res.Existing)
	assert.True(t, res.Sites)
	require.Len(t, res.Classifications, 1)

	site, err := schemas.GetSitesSchema(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, site.RequiredKeys())

	// applying again updates the classification in place
	again, err := Apply(ctx, zerolog.Nop(), doc, "acme", "admin", attrs, schemas)
	require.NoError(t, err)
	assert.Equal(t, 4, again.Existing)
	assert.Equal(t, res.Classifications, again.Classifications)
}
