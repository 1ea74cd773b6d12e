// Package analyzer reports which optimizations apply to a mesh, predicts
// their effect and runs them.
package analyzer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"meshopt/internal/logger"
	"meshopt/internal/mesh"
)

// Candidate is an applicable procedure with the stats the mesh would have
// after running it.
type Candidate struct {
	Proc  Proc       `json:"proc"`
	After mesh.Stats `json:"after"`
}

// Report is the outcome of Analyze.
type Report struct {
	Before     mesh.Stats  `json:"before"`
	StatLine   string      `json:"stat_line"`
	Candidates []Candidate `json:"candidates"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Analyzer wraps one parsed mesh.
type Analyzer struct {
	Mesh *mesh.Mesh
}

// New returns an analyzer for m.
func New(m *mesh.Mesh) *Analyzer {
	return &Analyzer{Mesh: m}
}

// Open parses the mesh file at path.
func Open(path string) (*Analyzer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("analyzer: open %s: %w", path, err)
	}
	defer f.Close()
	m, err := mesh.Parse(f, mesh.ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("analyzer: parse %s: %w", path, err)
	}
	return New(m), nil
}

// SetEpsilon sets the distance used by unify_by_tan_epsilon.
func (a *Analyzer) SetEpsilon(eps float32) {
	if eps > 0 {
		a.Mesh.Epsilon = eps
	}
}

// Stats returns the current vertex count and file size.
func (a *Analyzer) Stats() (mesh.Stats, error) {
	return a.Mesh.Stats()
}

// Warnings lists the mesh features that limit or complicate optimization.
func (a *Analyzer) Warnings() []string {
	m := a.Mesh
	var ws []string
	if len(m.Subs) > 1 {
		ws = append(ws, fmt.Sprintf("WARNING: Mesh contains more than 1 submeshes (%d Submeshes). Make sure this is ok", len(m.Subs)))
	}
	if tc := m.MaxTexCoords(); tc > 1 {
		ws = append(ws, fmt.Sprintf("WARNING: Mesh has %d texture coordinate channels. Make sure they are all needed", tc))
	}
	if m.HasVertexAnimation {
		ws = append(ws, "WARNING: Mesh contains vertex animation which will prevent unifying vertices")
	}
	if m.HasEdges {
		ws = append(ws, "WARNING: Mesh contains an edge list which will prevent unifying vertices")
	}
	return ws
}

// Analyze lists every applicable procedure with its predicted effect. The
// prediction runs the procedure on a private copy of the mesh.
func (a *Analyzer) Analyze() (Report, error) {
	before, err := a.Stats()
	if err != nil {
		return Report{}, err
	}
	rep := Report{
		Before:   before,
		StatLine: a.Mesh.StatLine(),
		Warnings: a.Warnings(),
	}
	data, err := a.Mesh.Bytes()
	if err != nil {
		return Report{}, err
	}
	for _, p := range catalog {
		if !p.Applicable(a.Mesh) {
			continue
		}
		after, err := predict(data, a.Mesh.Epsilon, p)
		if err != nil {
			return Report{}, fmt.Errorf("analyzer: predict %s: %w", p.Name, err)
		}
		rep.Candidates = append(rep.Candidates, Candidate{Proc: p, After: after})
	}
	return rep, nil
}

func predict(data []byte, eps float32, p Proc) (mesh.Stats, error) {
	m, err := mesh.ParseBytes(data)
	if err != nil {
		return mesh.Stats{}, err
	}
	m.Epsilon = eps
	if err := p.Apply(m); err != nil {
		return mesh.Stats{}, err
	}
	return m.Stats()
}

// Run applies the named procedure and returns the stats before and after.
func (a *Analyzer) Run(name string) (before, after mesh.Stats, err error) {
	p, err := Lookup(name)
	if err != nil {
		return before, after, err
	}
	if before, err = a.Stats(); err != nil {
		return before, after, err
	}
	if err = p.Apply(a.Mesh); err != nil {
		return before, after, fmt.Errorf("analyzer: %s: %w", name, err)
	}
	if after, err = a.Stats(); err != nil {
		return before, after, err
	}
	logger.Log.Info("optimized",
		zap.String("proc", name),
		zap.Stringer("before", before),
		zap.Stringer("after", after))
	return before, after, nil
}

// Save writes the mesh to w after checking that the encoded bytes parse.
func (a *Analyzer) Save(w io.Writer) error {
	data, err := a.Mesh.Bytes()
	if err != nil {
		return fmt.Errorf("analyzer: encode: %w", err)
	}
	if _, err := mesh.Parse(bytes.NewReader(data), mesh.ParseOptions{}); err != nil {
		return fmt.Errorf("analyzer: verify: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// SaveFile writes the mesh to path through Save.
func (a *Analyzer) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := a.Save(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("analyzer: write %s: %w", path, err)
	}
	return nil
}
