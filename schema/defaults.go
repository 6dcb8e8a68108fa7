/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"strconv"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/records"
)

// RequiredDefaults builds the values to add for required attributes that
// values does not carry. Only required entries with a default value, or
// whose definition is KEY_ONLY, produce anything. Definitions missing from
// defs are skipped.
func RequiredDefaults(s *Schema, documentID string, values []*records.DocumentAttribute, defs map[string]*records.Attribute) []*records.DocumentAttribute {
	if s == nil || s.Attributes == nil {
		return nil
	}

	present := make(map[string]struct{}, len(values))
	for _, v := range values {
		present[v.Key] = struct{}{}
	}

	var out []*records.DocumentAttribute
	for _, r := range s.Attributes.Required {
		if _, ok := present[r.AttributeKey]; ok {
			continue
		}
		def, ok := defs[r.AttributeKey]
		if !ok {
			continue
		}

		if def.DataType == attributes.DataTypeKeyOnly {
			out = append(out, records.NewKeyOnlyValue(documentID, r.AttributeKey))
			continue
		}

		defaults := r.DefaultValues
		if len(defaults) == 0 && r.DefaultValue != "" {
			defaults = []string{r.DefaultValue}
		}
		for _, d := range defaults {
			if v := defaultValue(documentID, r.AttributeKey, def.DataType, d); v != nil {
				out = append(out, v)
			}
		}
	}
	return out
}

func defaultValue(documentID, key string, dataType attributes.DataType, raw string) *records.DocumentAttribute {
	switch dataType {
	case attributes.DataTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return records.NewNumberValue(documentID, key, n)
	case attributes.DataTypeBoolean:
		b, _ := strconv.ParseBool(raw)
		return records.NewBooleanValue(documentID, key, b)
	case attributes.DataTypeString:
		return records.NewStringValue(documentID, key, raw)
	}
	return nil
}
