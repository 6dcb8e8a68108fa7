/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package keys

// Key prefixes. Each record kind owns one or more of these.
const (
	PrefixDocs         = "docs#"
	PrefixDocumentDate = "docts#"
	PrefixTag          = "tag#"
	PrefixTags         = "tags#"
	PrefixAttr         = "attr#"
	PrefixDocAttr      = "docs#attr#"
	PrefixSchemas      = "schemas"
	PrefixClass        = "class#document"
	PrefixCompositeKey = "compositeKey#"
	PrefixAttrKey      = "attrkey#"
	PrefixAllowedValue = "allowedvalue"
	PrefixValue        = "val#"
	PrefixSyncs        = "syncs#"
	PrefixMappings     = "mappings#"
	PrefixMapping      = "mapping#"
	PrefixPagination   = "pagination#"
)

// Fixed sort keys.
const (
	SortDocument   = "document"
	SortAttribute  = "attribute"
	SortSchema     = "schema"
	SortMapping    = "mapping"
	SortPagination = "pagination"
)

var prefixWords = map[string]struct{}{
	"docs":         {},
	"docts":        {},
	"tag":          {},
	"tags":         {},
	"attr":         {},
	"attrkey":      {},
	"schemas":      {},
	"class":        {},
	"compositekey": {},
	"val":          {},
	"syncs":        {},
	"mappings":     {},
	"mapping":      {},
	"pagination":   {},
}
