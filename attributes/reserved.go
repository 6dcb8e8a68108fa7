/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attributes

import (
	"sort"
	"strings"
)

// ReservedKey is an attribute key with a fixed meaning in the system.
type ReservedKey struct {
	Key      string
	DataType DataType
}

// Reserved attribute keys.
const (
	KeyClassification               = "Classification"
	KeyRelationships                = "Relationships"
	KeyPublication                  = "Publication"
	KeyMalwareScanResult            = "MalwareScanResult"
	KeyCheckout                     = "Checkout"
	KeyCheckoutForLegalHold         = "CheckoutForLegalHold"
	KeyEsignatureDocusignEnvelopeID = "EsignatureDocusignEnvelopeId"
	KeyEsignatureDocusignStatus     = "EsignatureDocusignStatus"
)

// reserved is built once and never written again.
var reserved = buildReserved([]ReservedKey{
	{Key: KeyClassification, DataType: DataTypeString},
	{Key: KeyRelationships, DataType: DataTypeString},
	{Key: KeyPublication, DataType: DataTypeKeyOnly},
	{Key: KeyMalwareScanResult, DataType: DataTypeString},
	{Key: KeyCheckout, DataType: DataTypeString},
	{Key: KeyCheckoutForLegalHold, DataType: DataTypeString},
	{Key: KeyEsignatureDocusignEnvelopeID, DataType: DataTypeString},
	{Key: KeyEsignatureDocusignStatus, DataType: DataTypeString},
})

func buildReserved(list []ReservedKey) map[string]ReservedKey {
	m := make(map[string]ReservedKey, len(list))
	for _, r := range list {
		m[strings.ToLower(r.Key)] = r
	}
	return m
}

// FindReserved looks key up case-insensitively.
func FindReserved(key string) (ReservedKey, bool) {
	r, ok := reserved[strings.ToLower(key)]
	return r, ok
}

// IsReserved reports whether key is reserved.
func IsReserved(key string) bool {
	_, ok := FindReserved(key)
	return ok
}

// ReservedKeys returns the registry sorted by key.
func ReservedKeys() []ReservedKey {
	out := make([]ReservedKey, 0, len(reserved))
	for _, r := range reserved {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
