// ABOUTME: Whole-process scan orchestration over threads, frames and globals
// ABOUTME: Funnels every root variable through the shared traversal state

// Package scan drives the reachability engine across an entire inspected
// process: every stack variable of every frame of every thread, then every
// global and static variable, all billed against one shared visited-block
// set so memory reachable from several variables is counted once overall.
package scan

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/corelens/corelens/inspect"
	"github.com/corelens/corelens/traverse"
)

// Result is the heap footprint attributed to one root variable.
type Result struct {
	Name   string
	Bytes  uint64
	Blocks int
}

// Summary is the outcome of a whole-process scan. Results are sorted by
// bytes descending.
type Summary struct {
	Results     []Result
	TotalBytes  uint64
	TotalBlocks int
}

// ExprResult is the outcome of analyzing one user-supplied expression.
type ExprResult struct {
	Expr       string
	TypeName   string
	StaticSize uint64
	Usage      traverse.Usage
	Err        error
}

// Scanner runs scans against one inspected process. The engine is strictly
// sequential: one traversal in flight, thread/frame selection serialized.
type Scanner struct {
	proc inspect.Process
	log  *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for per-root diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// New creates a Scanner over the given process. Diagnostics are discarded
// unless WithLogger is supplied.
func New(p inspect.Process, opts ...Option) *Scanner {
	s := &Scanner{proc: p, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans every stack variable of every thread, then every global and
// static variable, and returns the ranked attribution. A failure on one
// root, frame, or thread never aborts the scan.
//
// Whichever thread was selected before the scan is selected again when Run
// returns, on every exit path.
func (s *Scanner) Run() (*Summary, error) {
	orig, err := s.proc.SelectedThread()
	if err != nil {
		s.log.Warn("cannot read selected thread", zap.Error(err))
	}
	if orig != nil {
		defer func() {
			if rerr := s.proc.SelectThread(orig); rerr != nil {
				s.log.Warn("restoring selected thread failed", zap.Error(rerr))
			}
		}()
	}

	threads, err := s.proc.Threads()
	if err != nil {
		return nil, fmt.Errorf("enumerating threads: %w", err)
	}
	s.log.Debug("scanning process", zap.Int("threads", len(threads)))

	st := traverse.NewState()
	sum := &Summary{}
	for _, th := range threads {
		if serr := s.proc.SelectThread(th); serr != nil {
			s.log.Warn("cannot select thread", zap.Int("thread", th.Num()), zap.Error(serr))
			continue
		}
		frame, ferr := th.NewestFrame()
		if ferr != nil {
			s.log.Warn("cannot read stack", zap.Int("thread", th.Num()), zap.Error(ferr))
			continue
		}
		for i := 0; frame != nil; frame, i = frame.Older(), i+1 {
			s.scanFrame(th, i, frame, st, sum)
		}
	}

	s.scanGlobals(st, sum)

	sort.SliceStable(sum.Results, func(i, j int) bool {
		return sum.Results[i].Bytes > sum.Results[j].Bytes
	})
	return sum, nil
}

// scanFrame walks the frame's lexical block chain up to, but not into, the
// global/static scope, traversing each variable once per frame.
func (s *Scanner) scanFrame(th inspect.Thread, idx int, f inspect.Frame, st *traverse.State, sum *Summary) {
	block, err := f.Block()
	if err != nil {
		// No debug info in this frame.
		s.log.Debug("frame has no block info",
			zap.Int("thread", th.Num()), zap.Int("frame", idx), zap.Error(err))
		return
	}
	seen := make(map[string]struct{})
	for block != nil && !block.GlobalOrStatic() {
		vars, verr := block.Variables()
		if verr != nil {
			s.log.Debug("cannot read block symbols",
				zap.Int("thread", th.Num()), zap.Int("frame", idx), zap.Error(verr))
			block = block.Superblock()
			continue
		}
		for _, v := range vars {
			if _, dup := seen[v.Name]; dup {
				// An inner block already shadowed this name.
				continue
			}
			seen[v.Name] = struct{}{}
			u, terr := traverse.Traverse(s.proc, v.Name, v.Value, st)
			if terr != nil {
				s.log.Warn("variable traversal failed",
					zap.String("variable", v.Name), zap.Error(terr))
				continue
			}
			if u.Bytes > 0 && u.Blocks > 0 {
				sum.Results = append(sum.Results, Result{
					Name:   fmt.Sprintf("thread %d frame [%d] %s", th.Num(), idx, v.Name),
					Bytes:  u.Bytes,
					Blocks: u.Blocks,
				})
				sum.TotalBytes += u.Bytes
				sum.TotalBlocks += u.Blocks
			}
		}
		block = block.Superblock()
	}
}

// scanGlobals traverses every global/static variable, sorted by defining
// file. A global whose address was already expanded during the stack pass
// contributes nothing further.
func (s *Scanner) scanGlobals(st *traverse.State, sum *Summary) {
	globals, err := s.proc.GlobalVariables()
	if err != nil {
		s.log.Warn("enumerating globals failed", zap.Error(err))
		return
	}
	sort.SliceStable(globals, func(i, j int) bool { return globals[i].File < globals[j].File })
	for _, g := range globals {
		u, terr := traverse.Traverse(s.proc, g.Name, g.Value, st)
		if terr != nil {
			s.log.Warn("global traversal failed",
				zap.String("variable", g.Name), zap.Error(terr))
			continue
		}
		if u.Bytes > 0 && u.Blocks > 0 {
			name := g.Name
			if g.File != "" {
				name = g.File + " " + g.Name
			}
			sum.Results = append(sum.Results, Result{Name: name, Bytes: u.Bytes, Blocks: u.Blocks})
			sum.TotalBytes += u.Bytes
			sum.TotalBlocks += u.Blocks
		}
	}
}

// Expressions analyzes each expression individually, with fresh traversal
// state per expression. An expression that fails to evaluate is retried as
// a global symbol name before being reported as unresolved.
func (s *Scanner) Expressions(exprs []string) []ExprResult {
	results := make([]ExprResult, 0, len(exprs))
	for _, expr := range exprs {
		r := ExprResult{Expr: expr}
		v, err := s.proc.Evaluate(expr)
		if err != nil {
			g, lerr := s.proc.LookupGlobal(expr)
			if lerr != nil {
				r.Err = err
				results = append(results, r)
				continue
			}
			v = g.Value
		}
		r.TypeName = v.Type.String()
		if v.Type != nil {
			r.StaticSize = v.Type.Size
		}
		r.Usage, r.Err = traverse.Traverse(s.proc, expr, v, traverse.NewState())
		results = append(results, r)
	}
	return results
}
