/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package schema models the sites schema and classification schemas that
// constrain which attributes a document carries.
package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Schema is a named attribute policy.
type Schema struct {
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Attributes *Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attributes lists the attributes a schema requires or permits.
type Attributes struct {
	Required                  []Required     `json:"required,omitempty" yaml:"required,omitempty"`
	Optional                  []Optional     `json:"optional,omitempty" yaml:"optional,omitempty"`
	CompositeKeys             []CompositeKey `json:"compositeKeys,omitempty" yaml:"compositeKeys,omitempty"`
	AllowAdditionalAttributes bool           `json:"allowAdditionalAttributes" yaml:"allowAdditionalAttributes"`
}

// Required is an attribute every document must carry.
type Required struct {
	AttributeKey  string   `json:"attributeKey" yaml:"attributeKey"`
	AllowedValues []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
	DefaultValue  string   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	DefaultValues []string `json:"defaultValues,omitempty" yaml:"defaultValues,omitempty"`
}

// Optional is an attribute a document may carry.
type Optional struct {
	AttributeKey  string   `json:"attributeKey" yaml:"attributeKey"`
	AllowedValues []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`
}

// CompositeKey is an ordered list of component attribute keys.
type CompositeKey struct {
	AttributeKeys []string `json:"attributeKeys" yaml:"attributeKeys"`
}

// Marshal encodes s as stored in schema records.
func Marshal(s *Schema) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return string(b), nil
}

// Unmarshal decodes a stored schema.
func Unmarshal(data string) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return &s, nil
}

// RequiredKeys returns the required attribute keys in order.
func (s *Schema) RequiredKeys() []string {
	if s == nil || s.Attributes == nil {
		return nil
	}
	out := make([]string, 0, len(s.Attributes.Required))
	for _, r := range s.Attributes.Required {
		out = append(out, r.AttributeKey)
	}
	return out
}

// OptionalKeys returns the optional attribute keys in order.
func (s *Schema) OptionalKeys() []string {
	if s == nil || s.Attributes == nil {
		return nil
	}
	out := make([]string, 0, len(s.Attributes.Optional))
	for _, o := range s.Attributes.Optional {
		out = append(out, o.AttributeKey)
	}
	return out
}

// AttributeKeys returns required then optional keys, without duplicates.
func (s *Schema) AttributeKeys() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range append(s.RequiredKeys(), s.OptionalKeys()...) {
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// CompositeKeyLists returns each composite key's components.
func (s *Schema) CompositeKeyLists() [][]string {
	if s == nil || s.Attributes == nil {
		return nil
	}
	out := make([][]string, 0, len(s.Attributes.CompositeKeys))
	for _, c := range s.Attributes.CompositeKeys {
		out = append(out, append([]string(nil), c.AttributeKeys...))
	}
	return out
}

// AllowedValues returns the allowed values declared for key, with found
// reporting whether key is listed at all.
func (s *Schema) AllowedValues(key string) (values []string, found bool) {
	if s == nil || s.Attributes == nil {
		return nil, false
	}
	for _, r := range s.Attributes.Required {
		if r.AttributeKey == key {
			values = append(values, r.AllowedValues...)
			found = true
		}
	}
	for _, o := range s.Attributes.Optional {
		if o.AttributeKey == key {
			values = append(values, o.AllowedValues...)
			found = true
		}
	}
	return values, found
}

// AllowsAdditional reports whether attributes outside the lists are allowed.
// A nil schema allows everything.
func (s *Schema) AllowsAdditional() bool {
	return s == nil || s.Attributes == nil || s.Attributes.AllowAdditionalAttributes
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{Name: s.Name}
	if s.Attributes == nil {
		return out
	}
	a := &Attributes{AllowAdditionalAttributes: s.Attributes.AllowAdditionalAttributes}
	for _, r := range s.Attributes.Required {
		a.Required = append(a.Required, Required{
			AttributeKey:  r.AttributeKey,
			AllowedValues: append([]string(nil), r.AllowedValues...),
			DefaultValue:  r.DefaultValue,
			DefaultValues: append([]string(nil), r.DefaultValues...),
		})
	}
	for _, o := range s.Attributes.Optional {
		a.Optional = append(a.Optional, Optional{
			AttributeKey:  o.AttributeKey,
			AllowedValues: append([]string(nil), o.AllowedValues...),
		})
	}
	for _, c := range s.Attributes.CompositeKeys {
		a.CompositeKeys = append(a.CompositeKeys, CompositeKey{AttributeKeys: append([]string(nil), c.AttributeKeys...)})
	}
	out.Attributes = a
	return out
}
