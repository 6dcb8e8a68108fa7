/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/records"
)

func TestProduct(t *testing.T) {
	got := Product([][]string{{"a", "b"}, {"1", "2", "3"}})
	assert.Equal(t, [][]string{
		{"a", "1"}, {"a", "2"}, {"a", "3"},
		{"b", "1"}, {"b", "2"}, {"b", "3"},
	}, got)

	assert.Nil(t, Product([][]string{{"a"}, {}}))
	assert.Nil(t, Product[int](nil))
	assert.Equal(t, [][]int{{1}, {2}}, Product([][]int{{1, 2}}))
}

func TestGenerateCardinality(t *testing.T) {
	values := []*records.DocumentAttribute{
		records.NewStringValue("doc1", "category", "invoice"),
		records.NewStringValue("doc1", "category", "receipt"),
		records.NewNumberValue("doc1", "year", 2023),
		records.NewNumberValue("doc1", "year", 2024),
		records.NewNumberValue("doc1", "year", 2025),
	}

	out, err := Generate("doc1", [][]string{{"category", "year"}}, values)
	require.NoError(t, err)
	require.Len(t, out, 6)

	assert.Equal(t, "category#year", out[0].Key)
	assert.Equal(t, attributes.ValueCompositeString, out[0].ValueType)
	assert.Equal(t, "invoice#000000000002023.0000", out[0].StringValue)
	assert.Equal(t, "receipt#000000000002025.0000", out[5].StringValue)
	for _, v := range out {
		assert.Equal(t, "doc1", v.DocumentID)
	}
}

func TestGenerateSkipsIncompleteAndDerivedValues(t *testing.T) {
	values := []*records.DocumentAttribute{
		records.NewStringValue("doc1", "category", "invoice"),
		records.NewBooleanValue("doc1", "paid", true),
		records.NewClassificationValue("doc1", "c1"),
		records.NewCompositeValue("doc1", "category#paid", "old#false"),
	}

	out, err := Generate("doc1", [][]string{
		{"category", "paid"},
		{"category", "missing"},
		{"Classification", "category"},
	}, values)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "category#paid", out[0].Key)
	assert.Equal(t, "invoice#true", out[0].StringValue)
}

func TestGenerateDeduplicates(t *testing.T) {
	values := []*records.DocumentAttribute{
		records.NewStringValue("doc1", "a", "x"),
		records.NewStringValue("doc1", "b", "y"),
	}
	out, err := Generate("doc1", [][]string{{"a", "b"}, {"a", "b"}}, values)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestGenerateRejectsKeyOnly(t *testing.T) {
	values := []*records.DocumentAttribute{
		records.NewStringValue("doc1", "a", "x"),
		records.NewKeyOnlyValue("doc1", "flag"),
	}
	_, err := Generate("doc1", [][]string{{"a", "flag"}}, values)
	require.Error(t, err)
	assert.True(t, storeerrors.IsValidationError(err))
}

func TestComplete(t *testing.T) {
	values := []*records.DocumentAttribute{
		records.NewStringValue("doc1", "a", "x"),
		records.NewStringValue("doc1", "b", "y"),
	}
	got := Complete([][]string{{"a", "b"}, {"a", "c"}, {}}, values)
	assert.Equal(t, [][]string{{"a", "b"}}, got)
}
