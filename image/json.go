// ABOUTME: JSON memory-image parser
// ABOUTME: Reads types, heap blocks, memory words, globals and threads into a memhost

package image

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/corelens/corelens/inspect"
	"github.com/corelens/corelens/memhost"
)

// JSONImage is a parser for JSON memory images
type JSONImage struct{}

// jsonImage represents the JSON image format
type jsonImage struct {
	Types       []jsonType   `json:"types"`
	Blocks      []jsonBlock  `json:"blocks"`
	Words       []jsonWord   `json:"words"`
	Globals     []jsonVar    `json:"globals"`
	Threads     []jsonThread `json:"threads"`
	Dynamic     []jsonDyn    `json:"dynamic"`
	Expressions []jsonExpr   `json:"expressions"`
}

type jsonType struct {
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Size   uint64      `json:"size"`
	Target string      `json:"target,omitempty"`
	Fields []jsonField `json:"fields,omitempty"`
}

type jsonField struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Offset    uint64 `json:"offset"`
	BaseClass bool   `json:"base_class,omitempty"`
}

type jsonBlock struct {
	Base  uint64 `json:"base"`
	Size  uint64 `json:"size"`
	InUse bool   `json:"inuse"`
}

type jsonWord struct {
	Addr  uint64 `json:"addr"`
	Value uint64 `json:"value"`
}

type jsonVar struct {
	Name         string `json:"name"`
	File         string `json:"file,omitempty"`
	Type         string `json:"type"`
	Addr         uint64 `json:"addr"`
	Bits         uint64 `json:"bits,omitempty"`
	OptimizedOut bool   `json:"optimized_out,omitempty"`
}

type jsonThread struct {
	Num    int         `json:"num"`
	Frames []jsonFrame `json:"frames"`
}

type jsonFrame struct {
	Name   string      `json:"name"`
	Blocks []jsonScope `json:"blocks"`
}

type jsonScope struct {
	GlobalOrStatic bool      `json:"global_or_static,omitempty"`
	Vars           []jsonVar `json:"vars"`
}

type jsonDyn struct {
	Addr uint64 `json:"addr"`
	Type string `json:"type"`
}

type jsonExpr struct {
	Expr string  `json:"expr"`
	Var  jsonVar `json:"value"`
}

var kindNames = map[string]inspect.TypeKind{
	"other":     inspect.KindOther,
	"pointer":   inspect.KindPointer,
	"reference": inspect.KindReference,
	"array":     inspect.KindArray,
	"struct":    inspect.KindStruct,
	"union":     inspect.KindUnion,
	"typedef":   inspect.KindTypedef,
	"primitive": inspect.KindPrimitive,
}

// CanParse checks if the input looks like our JSON format
func (p *JSONImage) CanParse(r io.Reader) bool {
	buf := make([]byte, 1024)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	if n == 0 {
		return false
	}

	// Check for the presence of a "types" key in the JSON
	var test struct {
		Types json.RawMessage `json:"types"`
	}
	if err := json.Unmarshal(buf[:n], &test); err != nil {
		return false
	}
	return test.Types != nil
}

// Parse reads the JSON image and builds an in-memory process host
func (p *JSONImage) Parse(r io.Reader) (*memhost.Host, error) {
	var img jsonImage
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&img); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	types, err := resolveTypes(img.Types)
	if err != nil {
		return nil, err
	}
	lookup := func(name string) (*inspect.Type, error) {
		t, ok := types[name]
		if !ok {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		return t, nil
	}
	value := func(v jsonVar) (inspect.Value, error) {
		t, err := lookup(v.Type)
		if err != nil {
			return inspect.Value{}, fmt.Errorf("variable %q: %w", v.Name, err)
		}
		return inspect.Value{Type: t, Addr: v.Addr, Bits: v.Bits, OptimizedOut: v.OptimizedOut}, nil
	}

	h := memhost.New()
	for _, b := range img.Blocks {
		h.AddBlock(b.Base, b.Size, b.InUse)
	}
	for _, w := range img.Words {
		h.SetWord(w.Addr, w.Value)
	}
	for _, d := range img.Dynamic {
		t, err := lookup(d.Type)
		if err != nil {
			return nil, fmt.Errorf("dynamic type at %#x: %w", d.Addr, err)
		}
		h.SetDynamicType(d.Addr, t)
	}
	for _, g := range img.Globals {
		v, err := value(g)
		if err != nil {
			return nil, err
		}
		h.AddGlobal(g.Name, g.File, v)
	}
	for _, jth := range img.Threads {
		th := h.AddThread(jth.Num)
		for _, jf := range jth.Frames {
			f := th.AddFrame(jf.Name)
			for _, js := range jf.Blocks {
				b := f.AddBlock(js.GlobalOrStatic)
				for _, jv := range js.Vars {
					v, err := value(jv)
					if err != nil {
						return nil, err
					}
					b.AddVar(jv.Name, v)
				}
			}
		}
	}
	for _, je := range img.Expressions {
		v, err := value(je.Var)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %w", je.Expr, err)
		}
		h.DefineExpression(je.Expr, v)
	}
	return h, nil
}

// resolveTypes builds the type table in two passes: allocate every named
// type first, then wire targets and fields, so types may reference each
// other and themselves in any order.
func resolveTypes(jts []jsonType) (map[string]*inspect.Type, error) {
	types := make(map[string]*inspect.Type, len(jts))
	for i, jt := range jts {
		if jt.Name == "" {
			return nil, fmt.Errorf("type at index %d missing name", i)
		}
		if _, dup := types[jt.Name]; dup {
			return nil, fmt.Errorf("duplicate type %q", jt.Name)
		}
		kind, ok := kindNames[jt.Kind]
		if !ok {
			return nil, fmt.Errorf("type %q has unknown kind %q", jt.Name, jt.Kind)
		}
		types[jt.Name] = &inspect.Type{Name: jt.Name, Kind: kind, Size: jt.Size}
	}
	for _, jt := range jts {
		t := types[jt.Name]
		if jt.Target != "" {
			target, ok := types[jt.Target]
			if !ok {
				return nil, fmt.Errorf("type %q has unknown target %q", jt.Name, jt.Target)
			}
			t.Target = target
		}
		for _, jf := range jt.Fields {
			ft, ok := types[jf.Type]
			if !ok {
				return nil, fmt.Errorf("field %q.%s has unknown type %q", jt.Name, jf.Name, jf.Type)
			}
			t.Fields = append(t.Fields, inspect.Field{
				Name:        jf.Name,
				Offset:      jf.Offset,
				Type:        ft,
				IsBaseClass: jf.BaseClass,
			})
		}
	}
	return types, nil
}

// init registers the JSON parser
func init() {
	Register(&JSONImage{})
}
