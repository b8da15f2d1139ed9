// ABOUTME: Sentinel errors for the host introspection boundary
// ABOUTME: Classifies failures so callers can degrade instead of aborting

package inspect

import "errors"

var (
	// ErrInaccessible is returned when a value is optimized out or its
	// memory cannot be read.
	ErrInaccessible = errors.New("value is inaccessible")

	// ErrUnresolvedSymbol is returned when an expression or symbol name
	// does not resolve.
	ErrUnresolvedSymbol = errors.New("symbol does not resolve")

	// ErrAllocatorQuery is returned when the heap oracle cannot classify
	// an address.
	ErrAllocatorQuery = errors.New("allocator query failed")

	// ErrNoSuchField is returned when a field is absent from an object's
	// actual layout.
	ErrNoSuchField = errors.New("no such field")

	// ErrNotPointer is returned when pointer navigation is applied to a
	// non-pointer value.
	ErrNotPointer = errors.New("value is not a pointer")

	// ErrNoSuchThread is returned when selecting a thread the host does
	// not know.
	ErrNoSuchThread = errors.New("no such thread")
)
