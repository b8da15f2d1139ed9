// ABOUTME: In-memory implementation of the inspect host contract
// ABOUTME: Backs tests, the JSON image loader, and the CLI with a synthetic process

// Package memhost provides an in-memory inspect.Process built from an
// explicit description of types, memory words, heap blocks, threads and
// globals. It stands in for a live debugger attachment so the traversal and
// scan layers can run against a fully controlled memory image.
package memhost

import (
	"fmt"
	"sort"

	"github.com/corelens/corelens/inspect"
)

// Host is an in-memory inspect.Process.
type Host struct {
	words      map[uint64]uint64
	unreadable map[uint64]bool
	blocks     []inspect.HeapBlock
	dynamic    map[uint64]*inspect.Type
	globals    []inspect.Variable
	threads    []*MemThread
	selected   inspect.Thread
	exprs      map[string]inspect.Value
}

// New creates an empty host with no memory, blocks, or threads.
func New() *Host {
	return &Host{
		words:      make(map[uint64]uint64),
		unreadable: make(map[uint64]bool),
		dynamic:    make(map[uint64]*inspect.Type),
		exprs:      make(map[string]inspect.Value),
	}
}

// SetWord stores a pointer-sized word at addr, the contents a pointer value
// at that address would read.
func (h *Host) SetWord(addr, val uint64) { h.words[addr] = val }

// MarkUnreadable makes every read at addr fail with ErrInaccessible.
func (h *Host) MarkUnreadable(addr uint64) { h.unreadable[addr] = true }

// AddBlock registers an allocator-tracked block. Blocks are kept sorted by
// base address for containment lookup.
func (h *Host) AddBlock(base, size uint64, inUse bool) {
	h.blocks = append(h.blocks, inspect.HeapBlock{Base: base, Size: size, InUse: inUse})
	sort.Slice(h.blocks, func(i, j int) bool { return h.blocks[i].Base < h.blocks[j].Base })
}

// Blocks returns the allocator block table, sorted by base address.
func (h *Host) Blocks() []inspect.HeapBlock {
	out := make([]inspect.HeapBlock, len(h.blocks))
	copy(out, h.blocks)
	return out
}

// SetDynamicType records that the object at pointee address addr has the
// given most-derived pointer type.
func (h *Host) SetDynamicType(addr uint64, ptrType *inspect.Type) {
	h.dynamic[addr] = ptrType
}

// AddGlobal registers a global or static variable.
func (h *Host) AddGlobal(name, file string, v inspect.Value) {
	h.globals = append(h.globals, inspect.Variable{Name: name, File: file, Value: v})
}

// DefineExpression maps an expression string to the value it evaluates to.
func (h *Host) DefineExpression(expr string, v inspect.Value) { h.exprs[expr] = v }

// DynamicType returns the most-derived type for a pointer value, falling
// back to the static type when the pointee carries no override.
func (h *Host) DynamicType(v inspect.Value) (*inspect.Type, error) {
	t := inspect.BasicType(v.Type)
	if t == nil || (t.Kind != inspect.KindPointer && t.Kind != inspect.KindReference) {
		return v.Type, nil
	}
	ptr, err := h.PointerValue(v)
	if err != nil {
		return nil, err
	}
	if dt, ok := h.dynamic[ptr]; ok {
		return dt, nil
	}
	return v.Type, nil
}

// CastTo reinterprets v as type t at the same location.
func (h *Host) CastTo(v inspect.Value, t *inspect.Type) (inspect.Value, error) {
	if t == nil {
		return inspect.Value{}, inspect.ErrInaccessible
	}
	return inspect.Value{Type: t, Addr: v.Addr, Bits: v.Bits}, nil
}

// PointerValue reads the address stored in a pointer value: the word at its
// address, or its register contents when it has no address.
func (h *Host) PointerValue(v inspect.Value) (uint64, error) {
	t := inspect.BasicType(v.Type)
	if t == nil || (t.Kind != inspect.KindPointer && t.Kind != inspect.KindReference) {
		return 0, inspect.ErrNotPointer
	}
	if v.Addr == 0 {
		return v.Bits, nil
	}
	if h.unreadable[v.Addr] {
		return 0, inspect.ErrInaccessible
	}
	return h.words[v.Addr], nil
}

// Dereference follows a pointer value to its pointee.
func (h *Host) Dereference(v inspect.Value) (inspect.Value, error) {
	t := inspect.BasicType(v.Type)
	if t == nil || (t.Kind != inspect.KindPointer && t.Kind != inspect.KindReference) {
		return inspect.Value{}, inspect.ErrNotPointer
	}
	if t.Target == nil {
		return inspect.Value{}, inspect.ErrInaccessible
	}
	ptr, err := h.PointerValue(v)
	if err != nil {
		return inspect.Value{}, err
	}
	if ptr == 0 {
		return inspect.Value{}, inspect.ErrInaccessible
	}
	return inspect.Value{Type: t.Target, Addr: ptr}, nil
}

// ElementAt returns element i of an array value.
func (h *Host) ElementAt(v inspect.Value, i int) (inspect.Value, error) {
	t := inspect.BasicType(v.Type)
	if t == nil || t.Kind != inspect.KindArray || t.Target == nil || t.Target.Size == 0 {
		return inspect.Value{}, fmt.Errorf("element %d: %w", i, inspect.ErrInaccessible)
	}
	if v.Addr == 0 {
		return inspect.Value{}, inspect.ErrInaccessible
	}
	if n := int(t.Size / t.Target.Size); i < 0 || i >= n {
		return inspect.Value{}, fmt.Errorf("element %d out of range [0,%d)", i, n)
	}
	return inspect.Value{Type: t.Target, Addr: v.Addr + uint64(i)*t.Target.Size}, nil
}

// FieldValue returns the named field of a struct/union value, failing when
// the field is absent from the value's actual layout.
func (h *Host) FieldValue(v inspect.Value, f inspect.Field) (inspect.Value, error) {
	t := inspect.BasicType(v.Type)
	if t == nil || (t.Kind != inspect.KindStruct && t.Kind != inspect.KindUnion) {
		return inspect.Value{}, inspect.ErrNoSuchField
	}
	if v.Addr == 0 {
		return inspect.Value{}, inspect.ErrInaccessible
	}
	found := false
	for i := range t.Fields {
		if !t.Fields[i].IsBaseClass && t.Fields[i].Name == f.Name {
			found = true
			break
		}
	}
	if !found {
		return inspect.Value{}, fmt.Errorf("field %q: %w", f.Name, inspect.ErrNoSuchField)
	}
	addr := v.Addr + f.Offset
	if h.unreadable[addr] {
		return inspect.Value{}, inspect.ErrInaccessible
	}
	return inspect.Value{Type: f.Type, Addr: addr}, nil
}

// HeapBlock answers whether addr falls inside a tracked allocator block.
func (h *Host) HeapBlock(addr uint64) (*inspect.HeapBlock, error) {
	if addr == 0 {
		return nil, nil
	}
	// First block with Base > addr; the candidate is the one before it.
	i := sort.Search(len(h.blocks), func(i int) bool { return h.blocks[i].Base > addr })
	if i == 0 {
		return nil, nil
	}
	blk := h.blocks[i-1]
	if addr >= blk.Base+blk.Size {
		return nil, nil
	}
	return &blk, nil
}

// GlobalVariables returns all registered global and static variables.
func (h *Host) GlobalVariables() ([]inspect.Variable, error) {
	out := make([]inspect.Variable, len(h.globals))
	copy(out, h.globals)
	return out, nil
}

// Evaluate resolves an expression registered with DefineExpression.
func (h *Host) Evaluate(expr string) (inspect.Value, error) {
	if v, ok := h.exprs[expr]; ok {
		return v, nil
	}
	return inspect.Value{}, fmt.Errorf("evaluating %q: %w", expr, inspect.ErrUnresolvedSymbol)
}

// LookupGlobal resolves a global symbol by name.
func (h *Host) LookupGlobal(name string) (inspect.Variable, error) {
	for _, g := range h.globals {
		if g.Name == name {
			return g, nil
		}
	}
	return inspect.Variable{}, fmt.Errorf("global %q: %w", name, inspect.ErrUnresolvedSymbol)
}
