package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"meshopt/internal/analyzer"
	"meshopt/internal/batch"
	"meshopt/internal/config"
	"meshopt/internal/logger"
	"meshopt/internal/preview"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	analyzeOnly := flag.Bool("analyze", false, "Only print the applicable optimizations")
	procs := flag.String("procs", "", "Comma separated optimizations to run (default: just_unify,unify_by_tan_epsilon,merge_vertex_buffers)")
	epsilon := flag.Float64("epsilon", 0, "Tangent distance for unify_by_tan_epsilon (default: 0.2)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	outputDir := flag.String("output", "", "Output directory for optimized meshes")
	previewDir := flag.String("preview", "", "Write before/after preview images to this directory")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meshopt [flags] <file.mesh|dir|glob>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := logger.Init(*verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		PreviewDir: *previewDir,
		Epsilon:    float32(*epsilon),
		Procs:      *procs,
		Format:     *format,
		Workers:    *workers,
	})

	files, err := batch.Files(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No meshes found.")
		os.Exit(0)
	}

	if *analyzeOnly {
		failed := 0
		for _, f := range files {
			if err := printAnalysis(f, cfg.Epsilon); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if cfg.OutputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: no output directory. Use -output or config.json.")
		os.Exit(1)
	}

	fmt.Printf("Meshes: %d, Workers: %d\n", len(files), cfg.Workers)
	fmt.Printf("Optimizations: %v\n", cfg.Procs)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Mode:          batch.ModeOptimize,
		OutputDir:     cfg.OutputDir,
		PreviewDir:    cfg.PreviewDir,
		Workers:       cfg.Workers,
		Procs:         cfg.Procs,
		Epsilon:       cfg.Epsilon,
		Preview:       preview.Options{Size: cfg.PreviewSize, Supersample: cfg.Supersample},
		PreviewFormat: cfg.PreviewFormat,
	}, files)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	summary := batch.Summarize(results)
	fmt.Printf("Optimized: %d/%d\n", summary.Files-summary.Failed, summary.Files)
	fmt.Printf("Vertices: %d -> %d (%.1f%%)\n", summary.Vertices.Before, summary.Vertices.After, summary.Vertices.Percent())
	fmt.Printf("Bytes: %d -> %d (%.1f%%)\n", summary.Bytes.Before, summary.Bytes.After, summary.Bytes.Percent())

	if summary.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", summary.Failed)
		shown := 0
		for _, r := range results {
			if r.Success || shown == 20 {
				continue
			}
			fmt.Printf("  %s: %s\n", r.File, r.Error)
			shown++
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func printAnalysis(path string, eps float32) error {
	a, err := analyzer.Open(path)
	if err != nil {
		return err
	}
	a.SetEpsilon(eps)
	rep, err := a.Analyze()
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", path)
	fmt.Printf("  %s\n", rep.StatLine)
	fmt.Printf("  VtxCount=%d  Size=%d\n", rep.Before.Vertices, rep.Before.Bytes)
	for _, w := range rep.Warnings {
		fmt.Printf("  %s\n", w)
	}
	for _, c := range rep.Candidates {
		fmt.Printf("  %s: %s\n", c.Proc.Name, c.Proc.Description)
		fmt.Printf("    VtxCount=%d (%.1f%%)  Size=%d (%.1f%%)\n",
			c.After.Vertices, percent(c.After.Vertices, rep.Before.Vertices),
			c.After.Bytes, percent(c.After.Bytes, rep.Before.Bytes))
	}
	return nil
}

func percent(a, b int) float64 {
	if b == 0 {
		return 100
	}
	return float64(a) / float64(b) * 100
}
