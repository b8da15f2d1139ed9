// ABOUTME: Tests for the JSON memory-image parser
// ABOUTME: Validates type resolution, host construction and error handling

package image

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corelens/corelens/inspect"
)

const sampleImage = `{
	"types": [
		{"name": "long", "kind": "primitive", "size": 8},
		{"name": "long*", "kind": "pointer", "size": 8, "target": "long"},
		{"name": "S", "kind": "struct", "size": 16, "fields": [
			{"name": "p", "type": "long*", "offset": 0},
			{"name": "self", "type": "S*", "offset": 8}
		]},
		{"name": "S*", "kind": "pointer", "size": 8, "target": "S"}
	],
	"blocks": [
		{"base": 4096, "size": 32, "inuse": true},
		{"base": 8192, "size": 64, "inuse": false}
	],
	"words": [
		{"addr": 65536, "value": 4096},
		{"addr": 65544, "value": 65536}
	],
	"globals": [
		{"name": "g_state", "file": "state.c", "type": "S", "addr": 65536}
	],
	"threads": [
		{"num": 1, "frames": [
			{"name": "main", "blocks": [
				{"vars": [{"name": "p", "type": "long*", "addr": 65536}]}
			]}
		]}
	],
	"dynamic": [
		{"addr": 4096, "type": "S*"}
	],
	"expressions": [
		{"expr": "g_state.p", "value": {"name": "g_state.p", "type": "long*", "addr": 65536}}
	]
}`

func TestJSONParse(t *testing.T) {
	parser := &JSONImage{}
	h, err := parser.Parse(strings.NewReader(sampleImage))
	require.NoError(t, err)

	// Heap blocks
	blk, err := h.HeapBlock(4100)
	require.NoError(t, err)
	require.NotNil(t, blk)
	require.Equal(t, uint64(4096), blk.Base)
	require.Equal(t, uint64(32), blk.Size)
	require.True(t, blk.InUse)

	blk, err = h.HeapBlock(8192)
	require.NoError(t, err)
	require.NotNil(t, blk)
	require.False(t, blk.InUse)

	// Globals, with resolved self-referential type
	g, err := h.LookupGlobal("g_state")
	require.NoError(t, err)
	require.Equal(t, "state.c", g.File)
	require.Equal(t, "S", g.Value.Type.Name)
	require.Len(t, g.Value.Type.Fields, 2)
	self := g.Value.Type.Fields[1]
	require.Equal(t, inspect.KindPointer, self.Type.Kind)
	require.Equal(t, g.Value.Type, self.Type.Target)

	// Memory words drive pointer navigation
	ptr, err := h.PointerValue(inspect.Value{Type: self.Type, Addr: 65544})
	require.NoError(t, err)
	require.Equal(t, uint64(65536), ptr)

	// Threads and frames
	threads, err := h.Threads()
	require.NoError(t, err)
	require.Len(t, threads, 1)
	frame, err := threads[0].NewestFrame()
	require.NoError(t, err)
	require.Equal(t, "main", frame.Name())
	b, err := frame.Block()
	require.NoError(t, err)
	vars, err := b.Variables()
	require.NoError(t, err)
	require.Len(t, vars, 1)
	require.Equal(t, "p", vars[0].Name)

	// Dynamic override and expressions
	dt, err := h.DynamicType(inspect.Value{Type: vars[0].Value.Type, Addr: 65536})
	require.NoError(t, err)
	require.Equal(t, "S*", dt.Name)

	_, err = h.Evaluate("g_state.p")
	require.NoError(t, err)
}

func TestJSONCanParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "valid image",
			content: `{"types": [], "blocks": []}`,
			want:    true,
		},
		{
			name:    "missing types key",
			content: `{"blocks": []}`,
			want:    false,
		},
		{
			name:    "not JSON",
			content: "core dump v1",
			want:    false,
		},
		{
			name:    "empty input",
			content: "",
			want:    false,
		},
	}

	parser := &JSONImage{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.CanParse(strings.NewReader(tt.content))
			if got != tt.want {
				t.Errorf("CanParse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed JSON",
			content: `{"types": [`,
			wantErr: "failed to decode JSON",
		},
		{
			name:    "unnamed type",
			content: `{"types": [{"kind": "struct", "size": 8}]}`,
			wantErr: "missing name",
		},
		{
			name:    "duplicate type",
			content: `{"types": [{"name": "t", "kind": "struct"}, {"name": "t", "kind": "union"}]}`,
			wantErr: "duplicate type",
		},
		{
			name:    "unknown kind",
			content: `{"types": [{"name": "t", "kind": "flux"}]}`,
			wantErr: "unknown kind",
		},
		{
			name:    "unknown target",
			content: `{"types": [{"name": "t*", "kind": "pointer", "size": 8, "target": "t"}]}`,
			wantErr: "unknown target",
		},
		{
			name:    "unknown field type",
			content: `{"types": [{"name": "s", "kind": "struct", "size": 8, "fields": [{"name": "f", "type": "missing"}]}]}`,
			wantErr: "unknown type",
		},
		{
			name:    "global with unknown type",
			content: `{"types": [], "globals": [{"name": "g", "type": "nope", "addr": 1}]}`,
			wantErr: "unknown type",
		},
	}

	parser := &JSONImage{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(strings.NewReader(tt.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
