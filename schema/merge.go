/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import "strings"

// Merge folds the sites schema into a classification schema and returns the
// result. Neither argument is modified.
//
// Required entries present in both concatenate allowed values (site first)
// and inherit the site default when the classification has none. Optional
// entries merge the same way, then any key the site requires is dropped.
// Composite keys keep the site's, followed by the classification's that the
// site does not already declare.
func Merge(site, classification *Schema) *Schema {
	if classification == nil {
		return site.Clone()
	}
	out := classification.Clone()
	if site == nil || site.Attributes == nil {
		return out
	}
	if out.Attributes == nil {
		out.Attributes = &Attributes{}
	}

	from := site.Attributes
	to := out.Attributes

	siteRequired := make(map[string]Required, len(from.Required))
	for _, r := range from.Required {
		siteRequired[r.AttributeKey] = r
	}
	siteOptional := make(map[string]Optional, len(from.Optional))
	for _, o := range from.Optional {
		siteOptional[o.AttributeKey] = o
	}

	required := make([]Required, 0, len(to.Required)+len(from.Required))
	present := make(map[string]struct{})
	for _, r := range to.Required {
		if s, ok := siteRequired[r.AttributeKey]; ok {
			r.AllowedValues = concat(s.AllowedValues, r.AllowedValues)
			if r.DefaultValue == "" && s.DefaultValue != "" {
				r.DefaultValue = s.DefaultValue
			}
		}
		present[r.AttributeKey] = struct{}{}
		required = append(required, r)
	}
	for _, s := range from.Required {
		if _, ok := present[s.AttributeKey]; !ok {
			required = append(required, cloneRequired(s))
		}
	}
	to.Required = required

	optional := make([]Optional, 0, len(to.Optional)+len(from.Optional))
	present = make(map[string]struct{})
	for _, o := range to.Optional {
		if s, ok := siteOptional[o.AttributeKey]; ok {
			o.AllowedValues = concat(s.AllowedValues, o.AllowedValues)
		}
		present[o.AttributeKey] = struct{}{}
		optional = append(optional, o)
	}
	for _, s := range from.Optional {
		if _, ok := present[s.AttributeKey]; !ok {
			optional = append(optional, Optional{AttributeKey: s.AttributeKey, AllowedValues: concat(s.AllowedValues)})
		}
	}
	filtered := optional[:0]
	for _, o := range optional {
		if _, ok := siteRequired[o.AttributeKey]; !ok {
			filtered = append(filtered, o)
		}
	}
	to.Optional = filtered

	siteComposite := make(map[string]struct{}, len(from.CompositeKeys))
	composite := make([]CompositeKey, 0, len(from.CompositeKeys)+len(to.CompositeKeys))
	for _, c := range from.CompositeKeys {
		siteComposite[strings.Join(c.AttributeKeys, ",")] = struct{}{}
		composite = append(composite, CompositeKey{AttributeKeys: concat(c.AttributeKeys)})
	}
	for _, c := range to.CompositeKeys {
		if _, ok := siteComposite[strings.Join(c.AttributeKeys, ",")]; !ok {
			composite = append(composite, c)
		}
	}
	to.CompositeKeys = composite

	return out
}

func cloneRequired(r Required) Required {
	r.AllowedValues = concat(r.AllowedValues)
	r.DefaultValues = concat(r.DefaultValues)
	return r
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
