// ABOUTME: In-memory threads, frames and lexical blocks for the synthetic process
// ABOUTME: Implements the stack-walking side of the inspect contract

package memhost

import "github.com/corelens/corelens/inspect"

// MemThread is one thread of the synthetic process. Frames are ordered
// newest (innermost) first.
type MemThread struct {
	num    int
	frames []*MemFrame
}

func (t *MemThread) Num() int { return t.num }

func (t *MemThread) NewestFrame() (inspect.Frame, error) {
	if len(t.frames) == 0 {
		return nil, nil
	}
	return t.frames[0], nil
}

// MemFrame is one stack frame. A frame with no block behaves like one
// without debug info.
type MemFrame struct {
	name   string
	older  *MemFrame
	blocks []*MemBlock
}

func (f *MemFrame) Name() string { return f.name }

func (f *MemFrame) Older() inspect.Frame {
	if f.older == nil {
		return nil
	}
	return f.older
}

func (f *MemFrame) Block() (inspect.Block, error) {
	if len(f.blocks) == 0 {
		return nil, inspect.ErrInaccessible
	}
	return f.blocks[0], nil
}

// MemBlock is a lexical scope; superblocks chain toward the file scope.
type MemBlock struct {
	globalOrStatic bool
	vars           []inspect.Variable
	super          *MemBlock
}

func (b *MemBlock) GlobalOrStatic() bool { return b.globalOrStatic }

func (b *MemBlock) Variables() ([]inspect.Variable, error) {
	out := make([]inspect.Variable, len(b.vars))
	copy(out, b.vars)
	return out, nil
}

func (b *MemBlock) Superblock() inspect.Block {
	if b.super == nil {
		return nil
	}
	return b.super
}

// AddVar declares a variable directly in this block.
func (b *MemBlock) AddVar(name string, v inspect.Value) {
	b.vars = append(b.vars, inspect.Variable{Name: name, Value: v})
}

// AddThread registers a thread; the first thread added becomes the
// initially selected one.
func (h *Host) AddThread(num int) *MemThread {
	t := &MemThread{num: num}
	h.threads = append(h.threads, t)
	if h.selected == nil {
		h.selected = t
	}
	return t
}

// AddFrame appends the next-outer frame to the thread and returns it. The
// first frame added is the newest.
func (t *MemThread) AddFrame(name string) *MemFrame {
	f := &MemFrame{name: name}
	if n := len(t.frames); n > 0 {
		t.frames[n-1].older = f
	}
	t.frames = append(t.frames, f)
	return f
}

// AddBlock appends the next-outer lexical block to the frame and returns
// it. The first block added is the innermost; later blocks become the
// superblocks of earlier ones.
func (f *MemFrame) AddBlock(globalOrStatic bool) *MemBlock {
	b := &MemBlock{globalOrStatic: globalOrStatic}
	if n := len(f.blocks); n > 0 {
		f.blocks[n-1].super = b
	}
	f.blocks = append(f.blocks, b)
	return b
}

// Threads lists all threads of the synthetic process.
func (h *Host) Threads() ([]inspect.Thread, error) {
	out := make([]inspect.Thread, len(h.threads))
	for i, t := range h.threads {
		out[i] = t
	}
	return out, nil
}

// SelectedThread returns the currently selected thread, possibly nil.
func (h *Host) SelectedThread() (inspect.Thread, error) {
	return h.selected, nil
}

// SelectThread makes t the current thread. The thread must belong to this
// host.
func (h *Host) SelectThread(t inspect.Thread) error {
	for _, own := range h.threads {
		if own == t {
			h.selected = t
			return nil
		}
	}
	return inspect.ErrNoSuchThread
}
