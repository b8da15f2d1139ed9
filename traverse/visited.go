// ABOUTME: Visited-set bookkeeping for reachability traversal
// ABOUTME: Tracks expanded value addresses and counted heap block bases

package traverse

// AddrSet records value addresses that have already been expanded, so an
// aggregate reached through multiple paths is walked once. Entries can be
// removed again to correct container/first-member address aliasing.
type AddrSet map[uint64]struct{}

func NewAddrSet() AddrSet { return make(AddrSet) }

func (s AddrSet) Has(addr uint64) bool {
	_, ok := s[addr]
	return ok
}

func (s AddrSet) Add(addr uint64) { s[addr] = struct{}{} }

func (s AddrSet) Remove(addr uint64) { delete(s, addr) }

func (s AddrSet) Len() int { return len(s) }

// BlockSet records heap block base addresses whose bytes have been added to
// the running total. It only ever grows within one scan: a block is billed
// exactly once across the lifetime of the set.
type BlockSet map[uint64]struct{}

func NewBlockSet() BlockSet { return make(BlockSet) }

func (s BlockSet) Has(base uint64) bool {
	_, ok := s[base]
	return ok
}

func (s BlockSet) Add(base uint64) { s[base] = struct{}{} }

func (s BlockSet) Len() int { return len(s) }

// State is the traversal bookkeeping threaded explicitly through Traverse
// calls. A single State is shared across every root of a whole-process scan
// so memory reachable from two variables is billed once overall; independent
// scans use independent States.
type State struct {
	Addrs  AddrSet
	Blocks BlockSet
}

// NewState returns empty traversal state.
func NewState() *State {
	return &State{
		Addrs:  NewAddrSet(),
		Blocks: NewBlockSet(),
	}
}
