// ABOUTME: Exports scan results as a pprof profile
// ABOUTME: One sample per root variable, valued in heap bytes and block count

package report

import (
	"io"

	"github.com/google/pprof/profile"

	"github.com/corelens/corelens/scan"
)

// WriteProfile encodes the scan summary as a gzip-compressed pprof profile
// with one sample per root. Sample values are reachable heap bytes and
// block count; the root's identifier becomes the sample's function name, so
// standard pprof tooling can rank and filter the attribution.
func WriteProfile(w io.Writer, sum *scan.Summary) error {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "heap", Unit: "bytes"},
			{Type: "blocks", Unit: "count"},
		},
		DefaultSampleType: "heap",
	}
	for i, r := range sum.Results {
		fn := &profile.Function{
			ID:         uint64(i + 1),
			Name:       r.Name,
			SystemName: r.Name,
		}
		loc := &profile.Location{
			ID:   uint64(i + 1),
			Line: []profile.Line{{Function: fn}},
		}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{int64(r.Bytes), int64(r.Blocks)},
		})
	}
	return p.Write(w)
}
