package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"meshopt/internal/batch"
	"meshopt/internal/config"
	"meshopt/internal/logger"
	"meshopt/internal/preview"
	"meshopt/internal/terrain"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	actions := flag.String("actions", "", "Comma separated steps: cull,quads,diffuse,tangent,duptri or all (default: all)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	previewDir := flag.String("preview", "", "Write before/after preview images to this directory")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: terrainopt [flags] <in-dir> <out-dir>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	if err := logger.Init(*verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir:  flag.Arg(1),
		PreviewDir: *previewDir,
		Actions:    *actions,
		Format:     *format,
		Workers:    *workers,
	})

	acts, err := terrain.ParseActions(cfg.Actions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Terrain tiles are named t_*.mesh
	files, err := batch.Files([]string{filepath.Join(flag.Arg(0), "t_*.mesh")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No terrain tiles found.")
		os.Exit(0)
	}

	fmt.Printf("Tiles: %d, Workers: %d, Actions: %s\n", len(files), cfg.Workers, acts)
	start := time.Now()

	results := batch.Run(batch.Config{
		Mode:          batch.ModeTerrain,
		OutputDir:     cfg.OutputDir,
		PreviewDir:    cfg.PreviewDir,
		Workers:       cfg.Workers,
		Actions:       acts,
		Eyes:          cfg.EyeVectors(),
		Preview:       preview.Options{Size: cfg.PreviewSize, Supersample: cfg.Supersample},
		PreviewFormat: cfg.PreviewFormat,
	}, files)

	summary := batch.Summarize(results)
	for i, r := range results {
		if !r.Success {
			fmt.Printf("%d, %s: %s\n", i, r.File, r.Error)
			continue
		}
		fmt.Printf("%d, %s: %d -> %d triangles\n", i, r.File, r.Terrain.TrianglesBefore, r.Terrain.TrianglesAfter)
	}
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Printf("TerrainProcess  %d/%d = %.2f%% triangles survived\n",
		summary.Triangles.After, summary.Triangles.Before, summary.Triangles.Percent())

	if err := batch.WriteManifest(filepath.Join(cfg.OutputDir, "manifest.json"), results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
