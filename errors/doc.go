/*
Package errors provides semantic error types for the docstore library.

Three families of errors are used throughout the module:

	ValidationError / ValidationErrors  user-correctable problems, collected per request
	NotFoundError                       mutation on an entity that does not exist
	IllegalStateError                   a record asked to compute a key without its key fields

Sentinels can be matched with errors.Is() or the Is* helpers:

	var (
	    ErrNotFound        = errors.New("entity not found")
	    ErrAlreadyExists   = errors.New("entity already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrIllegalState    = errors.New("illegal state")
	    ErrAccessDenied    = errors.New("access denied")
	    ErrInUse           = errors.New("entity in use")
	    ErrInvalidToken    = errors.New("invalid pagination token")
	)

Usage:

	var errs errors.ValidationErrors
	errs.Add("key", "'key' is required")
	errs.AddKind(errors.KindAccessDenied, "security", "Cannot set attribute 'security' type OPA")
	if err := errs.Err(); err != nil {
	    return err
	}

	if errors.IsAccessDenied(err) {
	    // caller needs elevated access
	}

A ValidationErrors value matches ErrInvalidInput when non-empty, and also
ErrAccessDenied or ErrInUse when one of its entries is of that kind.
*/
package errors
