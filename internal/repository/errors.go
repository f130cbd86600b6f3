// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios: duplicate identifiers
// map to HTTP 409, missing parents and rows map to 404/422. Not-found
// sentinels for individual entities live next to their repositories.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicateCode is returned when a showcase code, or a shelf code within
// its showcase, collides with an existing row.
var ErrDuplicateCode = errors.New("code already exists")

// ErrDuplicateNumber is returned when a mineral's catalog number collides
// with another mineral anywhere in the collection.
var ErrDuplicateNumber = errors.New("catalog number already exists")

// isDuplicateKey reports whether a database error is a MySQL duplicate key
// violation (error 1062). The unique constraints in the schema are the
// authoritative uniqueness check; the explicit pre-checks in the
// repositories only exist to produce friendlier errors, and this backstop
// catches the race between a pre-check and the insert.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
