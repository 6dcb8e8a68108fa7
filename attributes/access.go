/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attributes

import (
	"fmt"

	storeerrors "github.com/suparena/docstore/errors"
)

// Operation is the kind of write being checked.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpAdd    Operation = "add"
	OpSet    Operation = "set"
	OpRemove Operation = "remove"
	OpDelete Operation = "delete"
)

// Access is the caller's resolved permission for one write. Elevated is
// computed upstream (admin or governance role).
type Access struct {
	Op       Operation
	Elevated bool
}

// Check returns an access-denied error when a non-elevated caller writes
// against a protected attribute type.
func (a Access) Check(key string, t Type) error {
	if !t.Protected() || a.Elevated {
		return nil
	}
	return storeerrors.NewAccessDeniedError(key, DeniedMessage(a.Op, key, t))
}

// DeniedMessage formats the access-denied message for op.
func DeniedMessage(op Operation, key string, t Type) string {
	return fmt.Sprintf("Cannot %s attribute '%s' type %s", op, key, t)
}
