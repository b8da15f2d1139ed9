// ABOUTME: Work-list reachability traversal over typed values
// ABOUTME: Accumulates heap bytes and block counts transitively reachable from a root

package traverse

import (
	"fmt"

	"github.com/corelens/corelens/inspect"
)

// minExpandSize is the pointee/field size below which traversal does not
// descend. Scalar-sized targets cannot themselves own heap memory.
const minExpandSize = 8

// Usage is the heap footprint attributed to one root value.
type Usage struct {
	Bytes  uint64
	Blocks int
}

type workItem struct {
	name string
	val  inspect.Value
}

// Traverse walks the value graph reachable from root, billing every live
// heap block it discovers exactly once against st.Blocks and returning the
// accumulated bytes and block count.
//
// Traversal order is not significant: counting is deduplicated by address,
// so any order yields the same totals. Host failures on a single node stop
// expansion of that branch only. A panic out of the host layer is recovered
// and returned as the root's error, with the partial totals.
func Traverse(h inspect.Host, name string, root inspect.Value, st *State) (u Usage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("traversing %s: %v", name, r)
		}
	}()

	stack := []workItem{{name: name, val: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v := it.val
		if v.Type == nil || v.OptimizedOut {
			continue
		}

		// parentAddr is remembered so a child that aliases its
		// container's address can un-claim it below.
		var parentAddr uint64
		if v.Addr != 0 {
			if st.Addrs.Has(v.Addr) {
				// This aggregate, or an aliasing path to it, has
				// already been expanded.
				continue
			}
			st.Addrs.Add(v.Addr)
			parentAddr = v.Addr
		}

		t := inspect.BasicType(v.Type)
		if t == nil {
			continue
		}

		switch t.Kind {
		case inspect.KindPointer:
			// A polymorphic pointee may be larger than its static
			// type claims; re-resolve as the most-derived type.
			if dt, derr := h.DynamicType(v); derr == nil && dt != nil && dt != t {
				if cast, cerr := h.CastTo(v, dt); cerr == nil {
					if bt := inspect.BasicType(dt); bt != nil {
						v = cast
						t = bt
					}
				}
			}
			ptr, perr := h.PointerValue(v)
			if perr != nil {
				continue
			}
			blk, berr := h.HeapBlock(ptr)
			if berr != nil || blk == nil || !blk.InUse {
				// Not a live heap block (or the oracle could not
				// classify it): nothing to bill here.
				continue
			}
			if st.Blocks.Has(blk.Base) {
				continue
			}
			st.Blocks.Add(blk.Base)
			u.Bytes += blk.Size
			u.Blocks++
			if t.Target != nil && t.Target.Size >= minExpandSize {
				if pointee, derr := h.Dereference(v); derr == nil {
					stack = append(stack, workItem{
						name: "*(" + it.name + ")",
						val:  pointee,
					})
				}
			}

		case inspect.KindArray:
			if t.Target == nil || t.Target.Size == 0 {
				continue
			}
			count := int(t.Size / t.Target.Size)
			for i := 0; i < count; i++ {
				elem, eerr := h.ElementAt(v, i)
				if eerr != nil {
					continue
				}
				if parentAddr != 0 && elem.Addr == parentAddr {
					// The array shares its address with this
					// element; un-claim it so the element is
					// not skipped as already visited.
					st.Addrs.Remove(parentAddr)
				}
				stack = append(stack, workItem{
					name: fmt.Sprintf("%s[%d]", it.name, i),
					val:  elem,
				})
			}

		case inspect.KindStruct, inspect.KindUnion:
			for _, f := range t.Fields {
				if f.Type == nil {
					continue
				}
				var fv inspect.Value
				var ferr error
				switch {
				case f.IsBaseClass:
					fv, ferr = h.CastTo(v, f.Type)
				case f.Name != "":
					fv, ferr = h.FieldValue(v, f)
				default:
					continue
				}
				if ferr != nil || fv.Addr == 0 {
					continue
				}
				if f.Type.Size < minExpandSize || !canOwnHeap(f.Type.Kind) {
					continue
				}
				if parentAddr != 0 && fv.Addr == parentAddr {
					// The first field of a struct shares the
					// struct's own address; un-claim it so the
					// field still gets expanded.
					st.Addrs.Remove(parentAddr)
				}
				fname := f.Name
				if fname == "" {
					fname = f.Type.Name
				}
				stack = append(stack, workItem{
					name: it.name + "." + fname,
					val:  fv,
				})
			}

		default:
			// Primitives and everything else: no expansion.
		}
	}
	return u, nil
}

// canOwnHeap reports whether a field of the given kind can hold or reach
// heap memory and is therefore worth descending into.
func canOwnHeap(k inspect.TypeKind) bool {
	switch k {
	case inspect.KindPointer, inspect.KindReference, inspect.KindArray,
		inspect.KindStruct, inspect.KindUnion, inspect.KindTypedef:
		return true
	}
	return false
}
