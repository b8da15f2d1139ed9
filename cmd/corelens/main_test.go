// ABOUTME: Tests for the corelens CLI
// ABOUTME: Exercises scan, expression and block-stats modes end to end

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testImage = "../../testdata/simple.json"

func TestRunRequiresImage(t *testing.T) {
	var out, errOut strings.Builder
	code := run(nil, &out, &errOut)
	require.Equal(t, 1, code)
	require.Contains(t, errOut.String(), "-image is required")
}

func TestRunMissingFile(t *testing.T) {
	var out, errOut strings.Builder
	code := run([]string{"-image", "no/such/file.json"}, &out, &errOut)
	require.Equal(t, 1, code)
	require.Contains(t, errOut.String(), "corelens:")
}

func TestRunWholeScan(t *testing.T) {
	var out, errOut strings.Builder
	code := run([]string{"-image", testImage}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "list.c g_list size=80 count=3")
	require.Contains(t, out.String(), "Total heap usage: 144 bytes count: 4")
}

func TestRunExpressionMode(t *testing.T) {
	var out, errOut strings.Builder
	code := run([]string{"-image", testImage, "g_list->next", "missing_sym"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "expr=g_list->next type=node* size=8 heap=32 count=2")
	require.Contains(t, out.String(), "expr=missing_sym error:")
}

func TestRunBlockStats(t *testing.T) {
	var out, errOut strings.Builder
	code := run([]string{"-image", testImage, "-blocks"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "Total inuse blocks: 4 total bytes: 144")
	require.Contains(t, out.String(), "Total free blocks: 1 total bytes: 256")
}

func TestRunWritesProfile(t *testing.T) {
	profPath := filepath.Join(t.TempDir(), "heap.pb.gz")
	var out, errOut strings.Builder
	code := run([]string{"-image", testImage, "-pprof", profPath}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	info, err := os.Stat(profPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
