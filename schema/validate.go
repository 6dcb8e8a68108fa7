/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"strings"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/records"
)

// ValidateDefinition checks a schema before it is stored. site is the
// tenant's sites schema when s is a classification, nil otherwise. defs
// holds the definitions of s.AttributeKeys() that exist.
//
// Checks run in stages and stop at the first stage that reports errors.
func ValidateDefinition(name string, s *Schema, site *Schema, defs map[string]*records.Attribute) storeerrors.ValidationErrors {
	errs := validateShape(name, s)
	if len(errs) > 0 {
		return errs
	}

	errs = validateAgainstSite(site, s)
	if len(errs) > 0 {
		return errs
	}

	errs = validateKeysPresent(s.Attributes)
	if len(errs) > 0 {
		return errs
	}

	required := s.RequiredKeys()
	optional := s.OptionalKeys()
	all := append(append([]string(nil), required...), optional...)

	for _, k := range all {
		if _, ok := defs[k]; !ok {
			errs.Add(k, fmt.Sprintf("attribute '%s' not found", k))
		}
	}

	if len(errs) == 0 {
		for _, r := range s.Attributes.Required {
			def := defs[r.AttributeKey]
			if def.DataType != attributes.DataTypeKeyOnly {
				continue
			}
			if len(r.AllowedValues) > 0 {
				errs.Add(r.AttributeKey, fmt.Sprintf("attribute '%s' does not allow allowed values", r.AttributeKey))
			}
			if len(r.DefaultValues) > 0 || r.DefaultValue != "" {
				errs.Add(r.AttributeKey, fmt.Sprintf("attribute '%s' does not allow default values", r.AttributeKey))
			}
		}
	}

	optionalSet := toSet(optional)
	for _, k := range required {
		if _, ok := optionalSet[k]; ok {
			errs.Add(k, fmt.Sprintf("attribute '%s' is in both required & optional lists", k))
		}
	}

	if !s.Attributes.AllowAdditionalAttributes {
		listed := toSet(all)
		for _, c := range s.Attributes.CompositeKeys {
			for _, k := range c.AttributeKeys {
				if _, ok := listed[k]; !ok {
					errs.Add(k, fmt.Sprintf("attribute '%s' not listed in required/optional attributes", k))
				}
			}
		}
	}

	return errs
}

func validateShape(name string, s *Schema) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors

	if name == "" {
		errs.Add("name", "'name' is required")
	}

	if s == nil || s.Attributes == nil {
		errs.Add("schema", "'schema' is required")
		return errs
	}

	for _, r := range s.Attributes.Required {
		if r.DefaultValue != "" && len(r.AllowedValues) > 0 && !contains(r.AllowedValues, r.DefaultValue) {
			errs.Add("defaultValue", "defaultValue must be part of allowed values")
		}
	}

	seen := make(map[string]struct{}, len(s.Attributes.CompositeKeys))
	duplicate := false
	for _, c := range s.Attributes.CompositeKeys {
		if len(c.AttributeKeys) == 1 {
			errs.Add("compositeKeys", "compositeKeys must have more than 1 value")
		}
		id := strings.Join(c.AttributeKeys, ",")
		if _, ok := seen[id]; ok {
			duplicate = true
		}
		seen[id] = struct{}{}
	}
	if duplicate {
		errs.Add("compositeKeys", "duplicate compositeKey")
	}

	return errs
}

func validateAgainstSite(site, s *Schema) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	if site == nil {
		return errs
	}
	siteRequired := toSet(site.RequiredKeys())
	reported := make(map[string]struct{})
	for _, k := range s.OptionalKeys() {
		if _, ok := siteRequired[k]; !ok {
			continue
		}
		if _, done := reported[k]; done {
			continue
		}
		reported[k] = struct{}{}
		errs.Add(k, "attribute cannot override site schema attribute")
	}
	return errs
}

func validateKeysPresent(a *Attributes) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors
	for _, r := range a.Required {
		if r.AttributeKey == "" {
			errs.Add("", "required attribute missing attributeKey")
		}
	}
	for _, o := range a.Optional {
		if o.AttributeKey == "" {
			errs.Add("", "optional attribute missing attributeKey")
		}
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, s := range list {
		out[s] = struct{}{}
	}
	return out
}
