/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/records"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		record records.Record
		kind   string
	}{
		{"document", &records.Document{DocumentID: "doc-1"}, "document"},
		{"value", records.NewStringValue("doc-1", "status", "draft"), "document-attribute"},
		{"definition", records.NewAttribute("status", "", ""), "attribute"},
		{"allowed value", &records.SchemaAttributeAllowedValue{Key: "status", Value: "draft"}, "schema-allowed-value"},
		{"attribute key", &records.SchemaAttributeKey{Key: "status"}, "schema-attribute-key"},
	}

	for _, tt := range tests {
		for _, tenant := range []string{"", "acme"} {
			t.Run(tt.name+"/"+tenant, func(t *testing.T) {
				item, err := records.Marshal(tenant, tt.record)
				require.NoError(t, err)

				kind, rec, err := Resolve(tenant, item)
				require.NoError(t, err)
				assert.Equal(t, tt.kind, kind)
				assert.IsType(t, tt.record, rec)
			})
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	item := records.KeyPair{PK: "pagination#abc", SK: "pagination"}.Key()
	_, _, err := Resolve("", item)
	assert.ErrorContains(t, err, "no kind registered")
}

func TestRegisterDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		Register(Kind{Name: "again", PKPrefix: "docs#", SKPrefix: "document"})
	})
}

func TestKindsOrdered(t *testing.T) {
	list := Kinds()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, len(list[i-1].SKPrefix), len(list[i].SKPrefix))
	}
}
