package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"meshopt/internal/analyzer"
	"meshopt/internal/logger"
	"meshopt/internal/mesh"
	"meshopt/internal/preview"
	"meshopt/internal/terrain"
)

// Mode selects the job run on every file.
type Mode int

const (
	// ModeOptimize runs the configured catalog procedures.
	ModeOptimize Mode = iota
	// ModeTerrain runs the terrain pipeline.
	ModeTerrain
)

// Config holds all shared settings for a batch run.
type Config struct {
	Mode       Mode
	OutputDir  string
	PreviewDir string
	Workers    int

	// Optimize mode
	Procs   []string
	Epsilon float32

	// Terrain mode
	Actions terrain.Action
	Eyes    []mgl32.Vec3

	Preview       preview.Options
	PreviewFormat string
}

// Result holds the outcome of processing one file.
type Result struct {
	File     string          `json:"file"`
	Output   string          `json:"output,omitempty"`
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Before   mesh.Stats      `json:"before"`
	After    mesh.Stats      `json:"after"`
	Applied  []string        `json:"applied,omitempty"`
	Terrain  *terrain.Result `json:"terrain,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Previews []string        `json:"previews,omitempty"`
}

// Run processes all files using a worker pool. Results keep the order of
// files.
func Run(cfg Config, files []string) []Result {
	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logger.Log.Info("progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("files_per_sec", float64(p)/elapsed))
				}
			}
		}
	}()

	// Worker pool
	fileChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = processFile(cfg, files[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	logger.Log.Info("batch finished",
		zap.Int("files", total),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func processFile(cfg Config, path string) Result {
	res := Result{File: path}
	fail := func(err error) Result {
		res.Error = err.Error()
		logger.Log.Warn("file failed", zap.String("file", path), zap.Error(err))
		return res
	}

	a, err := analyzer.Open(path)
	if err != nil {
		return fail(err)
	}
	a.SetEpsilon(cfg.Epsilon)
	res.Warnings = a.Warnings()
	if res.Before, err = a.Stats(); err != nil {
		return fail(err)
	}
	if err := writePreview(cfg, &res, a.Mesh, "before"); err != nil {
		return fail(err)
	}

	switch cfg.Mode {
	case ModeOptimize:
		for _, name := range cfg.Procs {
			p, err := analyzer.Lookup(name)
			if err != nil {
				return fail(err)
			}
			if !p.Applicable(a.Mesh) {
				continue
			}
			if _, _, err := a.Run(name); err != nil {
				return fail(err)
			}
			res.Applied = append(res.Applied, name)
		}
	case ModeTerrain:
		tr, err := terrain.Process(a.Mesh, cfg.Actions, cfg.Eyes)
		if err != nil {
			return fail(err)
		}
		res.Terrain = &tr
	default:
		return fail(fmt.Errorf("batch: unknown mode %d", cfg.Mode))
	}

	if res.After, err = a.Stats(); err != nil {
		return fail(err)
	}
	if err := writePreview(cfg, &res, a.Mesh, "after"); err != nil {
		return fail(err)
	}

	if cfg.OutputDir != "" {
		out := filepath.Join(cfg.OutputDir, filepath.Base(path))
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fail(err)
		}
		if err := a.SaveFile(out); err != nil {
			return fail(err)
		}
		res.Output = out
	}

	res.Success = true
	return res
}

func writePreview(cfg Config, res *Result, m *mesh.Mesh, stage string) error {
	if cfg.PreviewDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.PreviewDir, 0755); err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(res.File), filepath.Ext(res.File))
	out := filepath.Join(cfg.PreviewDir, name+"."+stage+preview.Ext(cfg.PreviewFormat))
	if err := preview.Save(out, m, cfg.Preview, cfg.PreviewFormat); err != nil {
		return err
	}
	res.Previews = append(res.Previews, out)
	return nil
}
