// Package batch runs the self-intersection audit over every triangle of a
// scene with a worker pool.
package batch

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"safespawn/internal/logging"
	"safespawn/internal/scene"
	"safespawn/internal/trace"
)

// Config holds the audit settings shared by all workers.
type Config struct {
	Samples  int // hits per triangle
	Rays     int // rays per hit and side
	Seed     int64
	Workers  int
	Progress time.Duration // interval of the progress log line, 0 for 2s
}

// TriangleStat is the outcome for one triangle.
type TriangleStat struct {
	MaxOffset     float32
	SelfHits      int
	NaiveSelfHits int
	Degenerate    bool
}

// InstanceResult aggregates the triangles of one instance.
type InstanceResult struct {
	Name          string
	Mesh          string
	Triangles     int
	Degenerate    int
	Rays          int64
	SelfHits      int64
	NaiveSelfHits int64
	MinOffset     float32
	MaxOffset     float32
	MeanOffset    float64

	// Stats is indexed by triangle.
	Stats []TriangleStat
}

// Summary is the result of a run.
type Summary struct {
	Instances     []InstanceResult
	Triangles     int
	Processed     int
	Samples       int64
	Rays          int64
	SelfHits      int64
	NaiveSelfHits int64
	Elapsed       time.Duration
	Canceled      bool
}

// Failed reports whether any ray from a spawn point hit its own triangle.
func (s Summary) Failed() bool { return s.SelfHits > 0 }

type job struct {
	inst, tri int
}

// Run probes every triangle of every instance. Each triangle gets its own
// random stream seeded from cfg.Seed and the triangle's position in the
// scene, so results do not depend on the worker count. A cancelled ctx
// stops the run early; unprocessed triangles keep zero stats.
func Run(ctx context.Context, cfg Config, insts []scene.Instance) Summary {
	log := logging.Logger()
	workers := max(cfg.Workers, 1)
	interval := cfg.Progress
	if interval <= 0 {
		interval = 2 * time.Second
	}

	stats := make([][]TriangleStat, len(insts))
	bases := make([]int, len(insts))
	total := 0
	for i, in := range insts {
		stats[i] = make([]TriangleStat, len(in.Mesh.Tris))
		bases[i] = total
		total += len(in.Mesh.Tris)
	}

	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", "done", p, "total", total, "triangles_per_sec", math.Round(rate))
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan job, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				in := insts[j.inst]
				stats[j.inst][j.tri] = probeTriangle(cfg, in, j.tri, cfg.Seed+int64(bases[j.inst]+j.tri))
				processed.Add(1)
			}
		}()
	}

	// Send work
send:
	for i, in := range insts {
		for t := range in.Mesh.Tris {
			select {
			case jobs <- job{i, t}:
			case <-ctx.Done():
				break send
			}
		}
	}
	close(jobs)

	wg.Wait()
	close(done)

	s := summarize(cfg, insts, stats)
	s.Processed = int(processed.Load())
	s.Canceled = ctx.Err() != nil
	s.Elapsed = time.Since(start)
	if s.Canceled {
		log.Warn("run cancelled", "done", s.Processed, "total", total)
	}
	return s
}

func probeTriangle(cfg Config, in scene.Instance, tri int, seed int64) TriangleStat {
	rng := rand.New(rand.NewSource(seed))
	t := in.Mesh.Triangle(tri)

	var st TriangleStat
	for range cfg.Samples {
		s := trace.Probe(t, trace.RandomBary(rng), in.O2W, in.W2O, rng, cfg.Rays)
		if s.Degenerate {
			st.Degenerate = true
			return st
		}
		st.MaxOffset = max(st.MaxOffset, s.Offset)
		st.SelfHits += s.SelfHits
		st.NaiveSelfHits += s.NaiveSelfHits
	}
	if st.SelfHits > 0 {
		logging.Logger().Debug("self hit", "instance", in.Name, "triangle", tri, "hits", st.SelfHits, "offset", st.MaxOffset)
	}
	return st
}

func summarize(cfg Config, insts []scene.Instance, stats [][]TriangleStat) Summary {
	var s Summary
	for i, in := range insts {
		r := InstanceResult{
			Name:      in.Name,
			Mesh:      in.Mesh.Name,
			Triangles: len(in.Mesh.Tris),
			MinOffset: float32(math.Inf(1)),
			Stats:     stats[i],
		}
		var sum float64
		var counted int
		for _, st := range stats[i] {
			if st.Degenerate {
				r.Degenerate++
				continue
			}
			r.SelfHits += int64(st.SelfHits)
			r.NaiveSelfHits += int64(st.NaiveSelfHits)
			if st.MaxOffset == 0 {
				continue // not processed
			}
			r.MinOffset = min(r.MinOffset, st.MaxOffset)
			r.MaxOffset = max(r.MaxOffset, st.MaxOffset)
			sum += float64(st.MaxOffset)
			counted++
		}
		if counted > 0 {
			r.MeanOffset = sum / float64(counted)
		} else {
			r.MinOffset = 0
		}
		r.Rays = int64(counted) * int64(cfg.Samples) * int64(cfg.Rays) * 2
		s.Samples += int64(counted) * int64(cfg.Samples)
		s.Rays += r.Rays
		s.Instances = append(s.Instances, r)
		s.Triangles += r.Triangles
		s.SelfHits += r.SelfHits
		s.NaiveSelfHits += r.NaiveSelfHits
	}
	return s
}
