/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attributes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeerrors "github.com/suparena/docstore/errors"
)

func TestParseDataType(t *testing.T) {
	d, err := ParseDataType("")
	require.NoError(t, err)
	assert.Equal(t, DataTypeString, d)

	d, err = ParseDataType("key_only")
	require.NoError(t, err)
	assert.Equal(t, DataTypeKeyOnly, d)

	_, err = ParseDataType("DATE")
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	ty, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeStandard, ty)

	ty, err = ParseType("opa")
	require.NoError(t, err)
	assert.True(t, ty.Protected())
	assert.False(t, TypeStandard.Protected())

	_, err = ParseType("SECRET")
	assert.Error(t, err)
}

func TestValueTypeCompatible(t *testing.T) {
	tests := []struct {
		value ValueType
		data  DataType
		want  bool
	}{
		{ValueString, DataTypeString, true},
		{ValueClassification, DataTypeString, true},
		{ValueNumber, DataTypeString, false},
		{ValueNumber, DataTypeNumber, true},
		{ValueBoolean, DataTypeBoolean, true},
		{ValueString, DataTypeBoolean, false},
		{ValueKeyOnly, DataTypeKeyOnly, true},
		{ValueKeyOnly, DataTypeWatermark, true},
		{ValueString, DataTypeKeyOnly, false},
		{ValueCompositeString, DataTypeString, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value)+"/"+string(tt.data), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Compatible(tt.data))
		})
	}
}

func TestFindReserved(t *testing.T) {
	for _, key := range []string{"Classification", "classification", "CLASSIFICATION"} {
		r, ok := FindReserved(key)
		require.True(t, ok, key)
		assert.Equal(t, KeyClassification, r.Key)
	}

	r, ok := FindReserved("publication")
	require.True(t, ok)
	assert.Equal(t, DataTypeKeyOnly, r.DataType)

	_, ok = FindReserved("invoiceNumber")
	assert.False(t, ok)

	list := ReservedKeys()
	assert.Len(t, list, 8)
	assert.Equal(t, KeyCheckout, list[0].Key)
}

func TestValidateWatermark(t *testing.T) {
	rotation := 45.0
	badRotation := 400.0

	tests := []struct {
		name     string
		dataType DataType
		mark     *Watermark
		messages []string
	}{
		{
			name:     "watermark without text or image",
			dataType: DataTypeWatermark,
			mark:     &Watermark{},
			messages: []string{"'watermark.text' or 'watermark.imageDocumentId' is required"},
		},
		{
			name:     "watermark nil",
			dataType: DataTypeWatermark,
			messages: []string{"'watermark.text' or 'watermark.imageDocumentId' is required"},
		},
		{
			name:     "text only",
			dataType: DataTypeWatermark,
			mark:     &Watermark{Text: "CONFIDENTIAL", Rotation: &rotation, Scale: ScaleFit},
		},
		{
			name:     "image only",
			dataType: DataTypeWatermark,
			mark:     &Watermark{ImageDocumentID: "doc-1"},
		},
		{
			name:     "text on string definition",
			dataType: DataTypeString,
			mark:     &Watermark{Text: "DRAFT"},
			messages: []string{"watermark is only supported on WATERMARK data type"},
		},
		{
			name:     "no watermark on string definition",
			dataType: DataTypeString,
		},
		{
			name:     "bad position and rotation",
			dataType: DataTypeWatermark,
			mark: &Watermark{
				Text:     "DRAFT",
				Position: &WatermarkPosition{XAnchor: "MIDDLE", YAnchor: AnchorTop},
				Rotation: &badRotation,
				Scale:    "HUGE",
			},
			messages: []string{
				"invalid xAnchor 'MIDDLE'",
				"rotation must be between 0 and 360",
				"invalid scale 'HUGE'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateWatermark(tt.dataType, tt.mark)
			if len(tt.messages) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.messages, errs.Messages())
		})
	}
}

func TestAccessCheck(t *testing.T) {
	err := Access{Op: OpSet}.Check("security", TypeGovernance)
	require.Error(t, err)
	assert.True(t, storeerrors.IsAccessDenied(err))
	assert.Contains(t, err.Error(), "Cannot set attribute 'security' type GOVERNANCE")

	assert.NoError(t, Access{Op: OpSet, Elevated: true}.Check("security", TypeGovernance))
	assert.NoError(t, Access{Op: OpSet}.Check("category", TypeStandard))
}
