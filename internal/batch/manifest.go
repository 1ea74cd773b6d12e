package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Manifest summarizes a batch run.
type Manifest struct {
	Files     int      `json:"files"`
	Failed    int      `json:"failed"`
	Vertices  Savings  `json:"vertices"`
	Bytes     Savings  `json:"bytes"`
	Triangles Savings  `json:"triangles"`
	Results   []Result `json:"results"`
}

// Savings is a before and after total.
type Savings struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Percent is the share of Before that survived.
func (s Savings) Percent() float64 {
	if s.Before == 0 {
		return 100
	}
	return float64(s.After) / float64(s.Before) * 100
}

// Summarize totals the successful results.
func Summarize(results []Result) Manifest {
	m := Manifest{Files: len(results), Results: results}
	for _, r := range results {
		if !r.Success {
			m.Failed++
			continue
		}
		m.Vertices.Before += r.Before.Vertices
		m.Vertices.After += r.After.Vertices
		m.Bytes.Before += r.Before.Bytes
		m.Bytes.After += r.After.Bytes
		if r.Terrain != nil {
			m.Triangles.Before += r.Terrain.TrianglesBefore
			m.Triangles.After += r.Terrain.TrianglesAfter
		}
	}
	return m
}

// WriteManifest writes the summary of results as JSON to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Files expands the arguments into a sorted list of mesh files. A
// directory contributes its *.mesh files, anything else is a glob pattern.
func Files(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			arg = filepath.Join(arg, "*.mesh")
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("batch: bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 && !strings.ContainsAny(arg, "*?[") {
			return nil, fmt.Errorf("batch: %s: no such file", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(files)
	return files, nil
}
