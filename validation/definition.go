/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validation

import (
	"fmt"
	"strings"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/records"
)

// Definition checks a new or changed attribute definition. Existence checks
// are left to the caller.
func Definition(a *records.Attribute, allowReserved bool, access attributes.Access) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors

	if a.Key == "" {
		errs.Add("key", "'key' is required")
		return errs
	}
	if strings.Contains(a.Key, keys.Separator) {
		errs.Add("key", fmt.Sprintf("'%s' must not contain '%s'", a.Key, keys.Separator))
	}

	if !allowReserved && attributes.IsReserved(a.Key) {
		errs.AddKind(storeerrors.KindReserved, "key", fmt.Sprintf("'%s' is a reserved attribute name", a.Key))
	}

	if !a.DataType.Valid() {
		errs.Add("dataType", fmt.Sprintf("invalid dataType '%s'", a.DataType))
	}
	if !a.Type.Valid() {
		errs.Add("type", fmt.Sprintf("invalid type '%s'", a.Type))
	}

	errs.Append(attributes.ValidateWatermark(a.DataType, a.Watermark()))

	if err := access.Check(a.Key, a.Type); err != nil {
		errs.AddKind(storeerrors.KindAccessDenied, a.Key, attributes.DeniedMessage(access.Op, a.Key, a.Type))
	}

	return errs
}
