// ABOUTME: Formats scan results as ranked text reports
// ABOUTME: Also computes allocator-wide block statistics

// Package report renders heap-attribution results: ranked per-variable
// reports, per-expression summaries, allocator block statistics, and pprof
// profile export.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/corelens/corelens/inspect"
	"github.com/corelens/corelens/scan"
)

// DefaultTopN is the number of ranked entries printed when no limit is
// given.
const DefaultTopN = 20

// Write prints the ranked attribution: the top-N roots by reachable heap
// bytes, then the grand total.
func Write(w io.Writer, sum *scan.Summary, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if _, err := fmt.Fprintln(w, "==================================================="); err != nil {
		return err
	}
	for i, r := range sum.Results {
		if i >= topN {
			break
		}
		if _, err := fmt.Fprintf(w, "[%d] %s size=%d count=%d\n", i, r.Name, r.Bytes, r.Blocks); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total heap usage: %d bytes count: %d\n", sum.TotalBytes, sum.TotalBlocks)
	return err
}

// WriteExprResults prints one line per analyzed expression.
func WriteExprResults(w io.Writer, results []scan.ExprResult) error {
	for _, r := range results {
		if r.Err != nil {
			if _, err := fmt.Fprintf(w, "expr=%s error: %v\n", r.Expr, r.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "expr=%s type=%s size=%d heap=%d count=%d\n",
			r.Expr, r.TypeName, r.StaticSize, r.Usage.Bytes, r.Usage.Blocks); err != nil {
			return err
		}
	}
	return nil
}

// BlockStats summarizes an allocator block table.
type BlockStats struct {
	InUseBlocks int
	FreeBlocks  int
	InUseBytes  uint64
	FreeBytes   uint64

	// SizeClasses counts in-use blocks per size.
	SizeClasses map[uint64]int
}

// ComputeBlockStats tallies the allocator's block table.
func ComputeBlockStats(blocks []inspect.HeapBlock) *BlockStats {
	st := &BlockStats{SizeClasses: make(map[uint64]int)}
	for _, b := range blocks {
		if b.InUse {
			st.InUseBlocks++
			st.InUseBytes += b.Size
			st.SizeClasses[b.Size]++
		} else {
			st.FreeBlocks++
			st.FreeBytes += b.Size
		}
	}
	return st
}

// Write prints block totals, the largest in-use sizes, and the most common
// size classes.
func (st *BlockStats) Write(w io.Writer, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if _, err := fmt.Fprintf(w, "Total inuse blocks: %d total bytes: %d number of size classes: %d\n",
		st.InUseBlocks, st.InUseBytes, len(st.SizeClasses)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total free blocks: %d total bytes: %d\n",
		st.FreeBlocks, st.FreeBytes); err != nil {
		return err
	}

	sizes := make([]uint64, 0, len(st.SizeClasses))
	for sz := range st.SizeClasses {
		sizes = append(sizes, sz)
	}

	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })
	fmt.Fprintf(w, "Top %d block sizes:\n", topN)
	for i, sz := range sizes {
		if i >= topN {
			break
		}
		if _, err := fmt.Fprintf(w, "\tsize %d count: %d\n", sz, st.SizeClasses[sz]); err != nil {
			return err
		}
	}

	sort.Slice(sizes, func(i, j int) bool {
		if st.SizeClasses[sizes[i]] != st.SizeClasses[sizes[j]] {
			return st.SizeClasses[sizes[i]] > st.SizeClasses[sizes[j]]
		}
		return sizes[i] > sizes[j]
	})
	fmt.Fprintf(w, "Top %d block sizes by count:\n", topN)
	for i, sz := range sizes {
		if i >= topN {
			break
		}
		if _, err := fmt.Fprintf(w, "\tsize %d count: %d\n", sz, st.SizeClasses[sz]); err != nil {
			return err
		}
	}
	return nil
}
