package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	var c Config
	c.Resolve(Flags{})
	if c.Epsilon != 0.2 {
		t.Errorf("epsilon got %v, want 0.2", c.Epsilon)
	}
	if !slices.Equal(c.Procs, DefaultProcs) {
		t.Errorf("procs got %v", c.Procs)
	}
	if c.Actions != "all" {
		t.Errorf("actions got %q", c.Actions)
	}
	if len(c.Eyes) != 3 || c.Eyes[1] != [3]float32{-0.40558, -0.819152, -0.40558} {
		t.Errorf("eyes got %v", c.Eyes)
	}
	if c.Workers != runtime.NumCPU() {
		t.Errorf("workers got %d", c.Workers)
	}
	if c.PreviewSize != 256 || c.Supersample != 2 || c.PreviewFormat != "webp" || c.WebPQuality != 90 {
		t.Errorf("preview settings %d %d %q %d", c.PreviewSize, c.Supersample, c.PreviewFormat, c.WebPQuality)
	}
	if v := c.EyeVectors(); len(v) != 3 || v[2].Y() != -0.5 {
		t.Errorf("eye vectors got %v", v)
	}
}

func TestLoadAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshopt.json")
	data := `{"epsilon": 0.05, "procs": ["merge_vertex_buffers"], "workers": 3, "preview_format": "TGA"}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	c.Resolve(Flags{Procs: "just_unify, remove_normal_and_unify", Workers: 8})
	if c.Epsilon != 0.05 {
		t.Errorf("epsilon got %v, want 0.05", c.Epsilon)
	}
	if want := []string{"just_unify", "remove_normal_and_unify"}; !slices.Equal(c.Procs, want) {
		t.Errorf("procs got %v, want %v", c.Procs, want)
	}
	if c.Workers != 8 {
		t.Errorf("workers got %d, want 8", c.Workers)
	}
	if c.PreviewFormat != "tga" {
		t.Errorf("format got %q, want tga", c.PreviewFormat)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("bad json accepted")
	}
}
