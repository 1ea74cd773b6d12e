package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"meshopt/internal/batch"
	"meshopt/internal/logger"
	"meshopt/internal/mesh"
	"meshopt/internal/preview"
)

func main() {
	outputDir := flag.String("output", ".", "Output directory")
	size := flag.Int("size", 256, "Image size in pixels")
	supersample := flag.Int("ss", 2, "Supersampling factor")
	yaw := flag.Float64("yaw", 45, "Camera yaw in degrees")
	pitch := flag.Float64("pitch", 35.264, "Camera pitch in degrees")
	format := flag.String("format", "webp", "Image format: webp or tga")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meshpreview [flags] <file.mesh|dir|glob>...\n")
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

	files, err := batch.Files(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := preview.Options{Size: *size, Supersample: *supersample, Yaw: *yaw, Pitch: *pitch}
	failed := 0
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := filepath.Join(*outputDir, name+preview.Ext(*format))
		if err := render(path, out, opts, *format); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s -> %s\n", path, out)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func render(path, out string, opts preview.Options, format string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := mesh.Parse(f, mesh.ParseOptions{})
	if err != nil {
		return err
	}
	return preview.Save(out, m, opts, format)
}
