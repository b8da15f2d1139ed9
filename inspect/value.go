// ABOUTME: Value views and the host navigation contract
// ABOUTME: Defines Value, Variable, HeapBlock and the Host/Process interfaces

package inspect

// Value is a transient, typed view over one location in the inspected
// process's memory. Values are produced on demand by the host and are never
// owned by the traversal engine.
type Value struct {
	Type *Type

	// Addr is the memory address of the value, or 0 when the value has no
	// address (register-resident).
	Addr uint64

	// Bits holds the raw contents for addressless scalar values.
	Bits uint64

	// OptimizedOut marks a value the debug info declares but the process
	// no longer materializes.
	OptimizedOut bool
}

// Variable is a named root value supplied by the host: a global, static, or
// stack-local variable. File is the defining source file for globals and is
// empty for stack variables.
type Variable struct {
	Name  string
	File  string
	Value Value
}

// HeapBlock is one allocator-tracked region of memory. Two blocks are the
// same iff their base addresses are equal. Block metadata is owned by the
// allocator bookkeeping; consumers only read it.
type HeapBlock struct {
	Base  uint64
	Size  uint64
	InUse bool
}

// Host is the introspection boundary the traversal engine runs against:
// type/value navigation plus the heap allocator liveness oracle. Every
// operation may fail; callers must treat failure as "stop expanding this
// branch", never as fatal.
type Host interface {
	// DynamicType returns the most-derived runtime type of a polymorphic
	// value, which may differ from its static type.
	DynamicType(v Value) (*Type, error)

	// CastTo reinterprets a value as another type at the same location,
	// e.g. viewing an object as one of its base-class subobjects.
	CastTo(v Value, t *Type) (Value, error)

	// Dereference follows a pointer value to its pointee.
	Dereference(v Value) (Value, error)

	// ElementAt returns element i of an array value.
	ElementAt(v Value, i int) (Value, error)

	// FieldValue returns the named field of a struct/union value, or an
	// error if the field is absent from this object's actual layout.
	FieldValue(v Value, f Field) (Value, error)

	// PointerValue reads the address stored in a pointer value.
	PointerValue(v Value) (uint64, error)

	// HeapBlock answers whether addr falls inside a currently tracked
	// allocator block. Returns (nil, nil) when the address is not inside
	// any block.
	HeapBlock(addr uint64) (*HeapBlock, error)
}

// Thread is one thread of the inspected process.
type Thread interface {
	// Num is the host's ordinal for the thread.
	Num() int

	// NewestFrame returns the innermost stack frame, or nil if the
	// thread's stack cannot be read.
	NewestFrame() (Frame, error)
}

// Frame is one stack frame of a thread.
type Frame interface {
	Name() string

	// Older returns the next-outer frame, or nil at the outermost frame.
	Older() Frame

	// Block returns the innermost lexical block of the frame. Fails when
	// the frame carries no debug info.
	Block() (Block, error)
}

// Block is a lexical scope within a frame. Blocks chain outward via
// Superblock until the global/static scope is reached.
type Block interface {
	// GlobalOrStatic reports whether this block is the file-level scope;
	// symbols there are handled by the globals pass, not the stack walk.
	GlobalOrStatic() bool

	// Variables returns the variables declared directly in this block.
	// Non-variable symbols (types, labels, functions) are excluded.
	Variables() ([]Variable, error)

	// Superblock returns the enclosing block, or nil.
	Superblock() Block
}

// Process is the full host surface needed by the whole-process scan: value
// navigation, stack walking, global enumeration, and expression evaluation.
type Process interface {
	Host

	// Threads lists all threads of the inspected process.
	Threads() ([]Thread, error)

	// SelectedThread returns the currently selected thread, which may be
	// nil if none is selected.
	SelectedThread() (Thread, error)

	// SelectThread makes t the current thread for subsequent stack reads.
	SelectThread(t Thread) error

	// GlobalVariables enumerates all global and static variables.
	GlobalVariables() ([]Variable, error)

	// Evaluate parses and evaluates an expression in the current context.
	Evaluate(expr string) (Value, error)

	// LookupGlobal resolves a global symbol by name.
	LookupGlobal(name string) (Variable, error)
}
