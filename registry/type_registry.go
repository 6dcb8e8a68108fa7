/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/records"
)

// NewFunc returns an empty record of one kind.
type NewFunc func() records.Record

// Kind describes one record kind stored in the table.
type Kind struct {
	Name     string
	PKPrefix string
	SKPrefix string
	New      NewFunc
}

var (
	mu    sync.RWMutex
	kinds []Kind
)

// Register adds a kind. It panics when the prefix pair is already taken.
func Register(k Kind) {
	mu.Lock()
	defer mu.Unlock()

	for _, existing := range kinds {
		if existing.PKPrefix == k.PKPrefix && existing.SKPrefix == k.SKPrefix {
			panic(fmt.Sprintf("registry: prefixes %q/%q already registered by %s", k.PKPrefix, k.SKPrefix, existing.Name))
		}
	}
	kinds = append(kinds, k)

	// longest sort prefix first, then longest partition prefix
	sort.SliceStable(kinds, func(i, j int) bool {
		if len(kinds[i].SKPrefix) != len(kinds[j].SKPrefix) {
			return len(kinds[i].SKPrefix) > len(kinds[j].SKPrefix)
		}
		return len(kinds[i].PKPrefix) > len(kinds[j].PKPrefix)
	})
}

// Kinds returns the registered kinds, most specific first.
func Kinds() []Kind {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Kind(nil), kinds...)
}

// Lookup finds the kind of the item keyed pk/sk in tenant.
func Lookup(tenant, pk, sk string) (Kind, bool) {
	pk = keys.Decode(tenant, pk)

	mu.RLock()
	defer mu.RUnlock()
	for _, k := range kinds {
		if strings.HasPrefix(pk, k.PKPrefix) && strings.HasPrefix(sk, k.SKPrefix) {
			return k, true
		}
	}
	return Kind{}, false
}

// Resolve decodes item into the record of its kind.
func Resolve(tenant string, item records.Item) (string, records.Record, error) {
	pk := records.StringField(item, keys.PK)
	sk := records.StringField(item, keys.SK)

	k, ok := Lookup(tenant, pk, sk)
	if !ok {
		return "", nil, fmt.Errorf("registry: no kind registered for %q/%q", pk, sk)
	}
	rec := k.New()
	if err := records.Unmarshal(tenant, item, rec); err != nil {
		return k.Name, nil, fmt.Errorf("registry: failed to decode %s: %w", k.Name, err)
	}
	return k.Name, rec, nil
}

func init() {
	for _, k := range []Kind{
		{"document", keys.PrefixDocs, keys.SortDocument, func() records.Record { return &records.Document{} }},
		{"document-tag", keys.PrefixDocs, keys.PrefixTags, func() records.Record { return &records.DocumentTag{} }},
		{"document-sync", keys.PrefixDocs, keys.PrefixSyncs, func() records.Record { return &records.DocumentSync{} }},
		{"document-attribute", keys.PrefixDocs, keys.PrefixAttr, func() records.Record { return &records.DocumentAttribute{} }},
		{"attribute", keys.PrefixAttr, keys.SortAttribute, func() records.Record { return &records.Attribute{} }},
		{"sites-schema", keys.PrefixSchemas, keys.SortSchema, func() records.Record { return &records.SitesSchema{} }},
		{"classification", keys.PrefixSchemas, keys.PrefixClass, func() records.Record { return &records.Classification{} }},
		{"schema-composite-key", keys.PrefixSchemas, keys.PrefixCompositeKey, func() records.Record { return &records.SchemaCompositeKey{} }},
		{"schema-allowed-value", keys.PrefixSchemas, keys.PrefixAttr, func() records.Record { return &records.SchemaAttributeAllowedValue{} }},
		{"schema-attribute-key", keys.PrefixSchemas, keys.PrefixAttrKey, func() records.Record { return &records.SchemaAttributeKey{} }},
		{"mapping", keys.PrefixMappings, keys.SortMapping, func() records.Record { return &records.Mapping{} }},
	} {
		Register(k)
	}
}
