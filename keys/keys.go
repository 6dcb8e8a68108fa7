/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package keys builds the tenant-aware partition and sort keys shared by every record.
package keys

import (
	"fmt"
	"strings"

	storeerrors "github.com/suparena/docstore/errors"
)

// Table and index attribute names.
const (
	PK     = "PK"
	SK     = "SK"
	GSI1   = "GSI1"
	GSI2   = "GSI2"
	GSI1PK = GSI1 + PK
	GSI1SK = GSI1 + SK
	GSI2PK = GSI2 + PK
	GSI2SK = GSI2 + SK
)

const (
	// DefaultTenant keys carry no prefix.
	DefaultTenant = "default"

	// Separator joins key segments and folds a tenant into a key.
	Separator = "#"
)

// IsDefaultTenant reports whether tenant maps to the unprefixed namespace.
func IsDefaultTenant(tenant string) bool {
	return tenant == "" || tenant == DefaultTenant
}

// Encode folds tenant into id. The default tenant leaves id untouched.
func Encode(tenant, id string) string {
	if IsDefaultTenant(tenant) {
		return id
	}
	return tenant + Separator + id
}

// Decode strips the tenant prefix Encode added.
func Decode(tenant, key string) string {
	if IsDefaultTenant(tenant) {
		return key
	}
	return strings.TrimPrefix(key, tenant+Separator)
}

// ValidateTenant rejects tenant ids that would make Encode ambiguous: ids
// containing the separator, and ids equal to a record prefix word (a tenant
// named "docs" would otherwise collide with the default tenant's "docs#..." keys).
func ValidateTenant(tenant string) error {
	if IsDefaultTenant(tenant) {
		return nil
	}
	if strings.Contains(tenant, Separator) {
		return storeerrors.NewValidationError("siteId", fmt.Sprintf("'%s' must not contain '%s'", tenant, Separator))
	}
	if _, ok := prefixWords[strings.ToLower(tenant)]; ok {
		return storeerrors.NewValidationError("siteId", fmt.Sprintf("'%s' is a reserved site id", tenant))
	}
	return nil
}

// Join concatenates segments with Separator.
func Join(parts ...string) string {
	return strings.Join(parts, Separator)
}
