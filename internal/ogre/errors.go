// Package ogre holds the constants of the chunked mesh and skeleton binary
// format: chunk ids, nesting grammar, vertex element types and semantics.
package ogre

import "errors"

var (
	// ErrFormat marks structural failures of the binary format. Nothing
	// produced by the failing parse or serialize call is usable.
	ErrFormat = errors.New("format error")

	// ErrPrecondition marks an operation that cannot run on the given mesh.
	// The mesh is left as it was and the caller may skip the operation.
	ErrPrecondition = errors.New("precondition failed")
)
