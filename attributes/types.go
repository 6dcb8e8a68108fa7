/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attributes

import (
	"fmt"
	"strings"
)

// DataType is the value type an attribute definition accepts.
type DataType string

const (
	DataTypeString    DataType = "STRING"
	DataTypeNumber    DataType = "NUMBER"
	DataTypeBoolean   DataType = "BOOLEAN"
	DataTypeKeyOnly   DataType = "KEY_ONLY"
	DataTypeWatermark DataType = "WATERMARK"
)

var dataTypes = []DataType{DataTypeString, DataTypeNumber, DataTypeBoolean, DataTypeKeyOnly, DataTypeWatermark}

// Valid reports whether d is a known data type.
func (d DataType) Valid() bool {
	for _, t := range dataTypes {
		if d == t {
			return true
		}
	}
	return false
}

// ParseDataType parses s case-insensitively. An empty string yields STRING.
func ParseDataType(s string) (DataType, error) {
	if s == "" {
		return DataTypeString, nil
	}
	d := DataType(strings.ToUpper(s))
	if !d.Valid() {
		return "", fmt.Errorf("unknown data type %q", s)
	}
	return d, nil
}

// Type is the governance class of an attribute definition.
type Type string

const (
	TypeStandard   Type = "STANDARD"
	TypeGovernance Type = "GOVERNANCE"
	TypeOPA        Type = "OPA"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t == TypeStandard || t == TypeGovernance || t == TypeOPA
}

// Protected reports whether writes against t require elevated access.
func (t Type) Protected() bool {
	return t == TypeGovernance || t == TypeOPA
}

// ParseType parses s case-insensitively. An empty string yields STANDARD.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeStandard, nil
	}
	t := Type(strings.ToUpper(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown attribute type %q", s)
	}
	return t, nil
}

// ValueType is the shape of one stored document attribute value.
type ValueType string

const (
	ValueString          ValueType = "STRING"
	ValueNumber          ValueType = "NUMBER"
	ValueBoolean         ValueType = "BOOLEAN"
	ValueKeyOnly         ValueType = "KEY_ONLY"
	ValueCompositeString ValueType = "COMPOSITE_STRING"
	ValueClassification  ValueType = "CLASSIFICATION"
	ValueRelationships   ValueType = "RELATIONSHIPS"
	ValuePublication     ValueType = "PUBLICATION"
)

// HasStringValue reports whether v stores its value in the string field.
func (v ValueType) HasStringValue() bool {
	switch v {
	case ValueString, ValueCompositeString, ValueClassification, ValueRelationships:
		return true
	}
	return false
}

// Keyless reports whether v carries no value at all.
func (v ValueType) Keyless() bool {
	return v == ValueKeyOnly || v == ValuePublication
}

// Compatible reports whether a value of type v may be stored against a
// definition of data type d.
func (v ValueType) Compatible(d DataType) bool {
	switch d {
	case DataTypeString:
		return v == ValueString || v == ValueClassification || v == ValueRelationships
	case DataTypeNumber:
		return v == ValueNumber
	case DataTypeBoolean:
		return v == ValueBoolean
	case DataTypeKeyOnly, DataTypeWatermark:
		return v == ValueKeyOnly || v == ValuePublication
	}
	return false
}
