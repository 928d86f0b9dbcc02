package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// maxListedTriangles caps the triangle indices listed per instance.
const maxListedTriangles = 64

// ReportEntry describes one instance in report.json.
type ReportEntry struct {
	Name          string  `json:"name"`
	Mesh          string  `json:"mesh"`
	Triangles     int     `json:"triangles"`
	Degenerate    int     `json:"degenerate"`
	Rays          int64   `json:"rays"`
	SelfHits      int64   `json:"self_hits"`
	NaiveSelfHits int64   `json:"naive_self_hits"`
	MinOffset     float32 `json:"min_offset"`
	MaxOffset     float32 `json:"max_offset"`
	MeanOffset    float64 `json:"mean_offset"`
	HitTriangles  []int   `json:"hit_triangles,omitempty"`
}

// Report is the JSON form of a Summary.
type Report struct {
	Triangles     int           `json:"triangles"`
	Processed     int           `json:"processed"`
	Samples       int64         `json:"samples"`
	Rays          int64         `json:"rays"`
	SelfHits      int64         `json:"self_hits"`
	NaiveSelfHits int64         `json:"naive_self_hits"`
	ElapsedSec    float64       `json:"elapsed_sec"`
	Canceled      bool          `json:"canceled,omitempty"`
	Instances     []ReportEntry `json:"instances"`
}

// NewReport converts s. Self-hit triangles are listed per instance, up to
// maxListedTriangles.
func NewReport(s Summary) Report {
	r := Report{
		Triangles:     s.Triangles,
		Processed:     s.Processed,
		Samples:       s.Samples,
		Rays:          s.Rays,
		SelfHits:      s.SelfHits,
		NaiveSelfHits: s.NaiveSelfHits,
		ElapsedSec:    s.Elapsed.Seconds(),
		Canceled:      s.Canceled,
		Instances:     make([]ReportEntry, len(s.Instances)),
	}
	for i, in := range s.Instances {
		e := ReportEntry{
			Name:          in.Name,
			Mesh:          in.Mesh,
			Triangles:     in.Triangles,
			Degenerate:    in.Degenerate,
			Rays:          in.Rays,
			SelfHits:      in.SelfHits,
			NaiveSelfHits: in.NaiveSelfHits,
			MinOffset:     in.MinOffset,
			MaxOffset:     in.MaxOffset,
			MeanOffset:    in.MeanOffset,
		}
		for t, st := range in.Stats {
			if st.SelfHits > 0 && len(e.HitTriangles) < maxListedTriangles {
				e.HitTriangles = append(e.HitTriangles, t)
			}
		}
		r.Instances[i] = e
	}
	return r
}

// WriteReport writes the summary as indented JSON to path.
func WriteReport(path string, s Summary) error {
	data, err := json.MarshalIndent(NewReport(s), "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write report %s: %w", path, err)
	}
	return nil
}
