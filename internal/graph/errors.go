package graph

import (
	"errors"
	"fmt"
)

// Validation errors returned by mutating operations. They are wrapped with
// the offending entity name or relation triple, so match with errors.Is.
var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrDuplicateEntity   = errors.New("entity already exists")
	ErrDuplicateRelation = errors.New("relation already exists")
	ErrEmptyEntityName   = errors.New("entity name must not be empty")
)

// PersistError reports a failure to read or write the backing memory file.
// An operation that returns a PersistError from a save has not changed the
// on-disk graph: the previous file is left in place.
type PersistError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s memory file %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
