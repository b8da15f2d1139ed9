// ABOUTME: Tests for text report formatting
// ABOUTME: Validates ranked output, top-N cutoff and block statistics

package report

import (
	"strings"
	"testing"

	"github.com/corelens/corelens/inspect"
	"github.com/corelens/corelens/scan"
	"github.com/corelens/corelens/traverse"
)

func sampleSummary() *scan.Summary {
	return &scan.Summary{
		Results: []scan.Result{
			{Name: "thread 1 frame [0] p", Bytes: 64, Blocks: 2},
			{Name: "pool.c g_pool", Bytes: 32, Blocks: 1},
			{Name: "thread 2 frame [0] q", Bytes: 16, Blocks: 1},
		},
		TotalBytes:  112,
		TotalBlocks: 4,
	}
}

func sampleSummaryEmpty() *scan.Summary {
	return &scan.Summary{}
}

func TestWrite(t *testing.T) {
	var buf strings.Builder
	if err := Write(&buf, sampleSummary(), 0); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"[0] thread 1 frame [0] p size=64 count=2",
		"[1] pool.c g_pool size=32 count=1",
		"[2] thread 2 frame [0] q size=16 count=1",
		"Total heap usage: 112 bytes count: 4",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}
}

func TestWriteTopNCutoff(t *testing.T) {
	var buf strings.Builder
	if err := Write(&buf, sampleSummary(), 1); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "[0] thread 1 frame [0] p") {
		t.Errorf("top entry missing:\n%s", out)
	}
	if strings.Contains(out, "g_pool") {
		t.Errorf("entry beyond top-N printed:\n%s", out)
	}
	// The grand total still covers everything
	if !strings.Contains(out, "Total heap usage: 112 bytes count: 4") {
		t.Errorf("total line missing:\n%s", out)
	}
}

func TestWriteExprResults(t *testing.T) {
	results := []scan.ExprResult{
		{Expr: "cache.head", TypeName: "node*", StaticSize: 8,
			Usage: traverse.Usage{Bytes: 48, Blocks: 3}},
		{Expr: "nope", Err: inspect.ErrUnresolvedSymbol},
	}

	var buf strings.Builder
	if err := WriteExprResults(&buf, results); err != nil {
		t.Fatalf("WriteExprResults failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "expr=cache.head type=node* size=8 heap=48 count=3") {
		t.Errorf("expression line missing:\n%s", out)
	}
	if !strings.Contains(out, "expr=nope error:") {
		t.Errorf("error line missing:\n%s", out)
	}
}

func TestComputeBlockStats(t *testing.T) {
	blocks := []inspect.HeapBlock{
		{Base: 0x1000, Size: 32, InUse: true},
		{Base: 0x2000, Size: 32, InUse: true},
		{Base: 0x3000, Size: 64, InUse: true},
		{Base: 0x4000, Size: 128, InUse: false},
	}
	st := ComputeBlockStats(blocks)

	if st.InUseBlocks != 3 || st.InUseBytes != 128 {
		t.Errorf("in-use totals = (%d, %d), want (3, 128)", st.InUseBlocks, st.InUseBytes)
	}
	if st.FreeBlocks != 1 || st.FreeBytes != 128 {
		t.Errorf("free totals = (%d, %d), want (1, 128)", st.FreeBlocks, st.FreeBytes)
	}
	if len(st.SizeClasses) != 2 {
		t.Errorf("size classes = %d, want 2", len(st.SizeClasses))
	}
	if st.SizeClasses[32] != 2 || st.SizeClasses[64] != 1 {
		t.Errorf("size class counts = %v", st.SizeClasses)
	}

	var buf strings.Builder
	if err := st.Write(&buf, 10); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Total inuse blocks: 3 total bytes: 128 number of size classes: 2") {
		t.Errorf("totals line missing:\n%s", out)
	}
	if !strings.Contains(out, "size 32 count: 2") {
		t.Errorf("size class line missing:\n%s", out)
	}
}
