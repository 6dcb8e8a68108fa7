/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package composite expands component attribute values into generated
// COMPOSITE_STRING values.
package composite

import (
	"fmt"
	"strconv"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/records"
)

// Product returns the cartesian product of lists in declared order, the
// last list varying fastest. Any empty list yields no combinations.
func Product[T any](lists [][]T) [][]T {
	if len(lists) == 0 {
		return nil
	}
	total := 1
	for _, l := range lists {
		if len(l) == 0 {
			return nil
		}
		total *= len(l)
	}

	out := make([][]T, 0, total)
	idx := make([]int, len(lists))
	for {
		combo := make([]T, len(lists))
		for i, l := range lists {
			combo[i] = l[idx[i]]
		}
		out = append(out, combo)

		i := len(lists) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(lists[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

// Key is the generated attribute key of a composite definition.
func Key(componentKeys []string) string {
	return keys.Join(componentKeys...)
}

// Render formats one component value for inclusion in a composite value.
func Render(v *records.DocumentAttribute) (string, error) {
	switch v.ValueType {
	case attributes.ValueString:
		return v.StringValue, nil
	case attributes.ValueNumber:
		if v.NumberValue == nil {
			break
		}
		return keys.FormatCompositeNumber(*v.NumberValue), nil
	case attributes.ValueBoolean:
		if v.BooleanValue == nil {
			break
		}
		return strconv.FormatBool(*v.BooleanValue), nil
	}
	return "", storeerrors.NewValidationError(v.Key,
		fmt.Sprintf("attribute '%s' of type %s cannot be part of a composite key", v.Key, v.ValueType))
}

// Generate builds every composite value of documentID. Each entry of
// definitions is an ordered list of component keys; values are the
// document's current values. Classification and composite values never
// take part. Definitions with a component lacking values produce nothing.
func Generate(documentID string, definitions [][]string, values []*records.DocumentAttribute) ([]*records.DocumentAttribute, error) {
	byKey := make(map[string][]*records.DocumentAttribute)
	for _, v := range values {
		if v.ValueType == attributes.ValueClassification || v.ValueType == attributes.ValueCompositeString {
			continue
		}
		byKey[v.Key] = append(byKey[v.Key], v)
	}

	var out []*records.DocumentAttribute
	seen := make(map[string]struct{})

	for _, def := range definitions {
		lists := make([][]string, 0, len(def))
		for _, k := range def {
			rendered := make([]string, 0, len(byKey[k]))
			for _, v := range byKey[k] {
				s, err := Render(v)
				if err != nil {
					return nil, err
				}
				rendered = append(rendered, s)
			}
			lists = append(lists, rendered)
		}

		key := Key(def)
		for _, combo := range Product(lists) {
			value := keys.Join(combo...)
			id := key + "\x00" + value
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, records.NewCompositeValue(documentID, key, value))
		}
	}

	return out, nil
}

// Complete returns the definitions whose every component key has at least
// one value in values.
func Complete(definitions [][]string, values []*records.DocumentAttribute) [][]string {
	present := make(map[string]struct{}, len(values))
	for _, v := range values {
		present[v.Key] = struct{}{}
	}

	var out [][]string
	for _, def := range definitions {
		ok := len(def) > 0
		for _, k := range def {
			if _, found := present[k]; !found {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, def)
		}
	}
	return out
}
