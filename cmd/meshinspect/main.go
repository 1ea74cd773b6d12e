package main

import (
	"flag"
	"fmt"
	"os"

	"meshopt/internal/analyzer"
	"meshopt/internal/batch"
	"meshopt/internal/chunk"
	"meshopt/internal/logger"
	"meshopt/internal/mesh"
)

func main() {
	allVtx := flag.Bool("allvtx", false, "Log every vertex instead of the first and last of each buffer")
	stats := flag.Bool("stats", false, "Print one statistics line per file instead of the chunk tree")
	verbose := flag.Bool("v", false, "Verbose logging (chunk and vertex trace)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meshinspect [flags] <file.mesh|dir|glob>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := logger.Init(*verbose || *allVtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	files, err := batch.Files(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *stats {
		fmt.Printf("Count=%d\n", len(files))
		for _, f := range files {
			if err := printStats(f); err != nil {
				fmt.Printf("%s: %v\n", f, err)
			}
		}
		return
	}

	failed := false
	for _, f := range files {
		if err := printTree(f, *allVtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", f, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printTree(path string, allVtx bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := mesh.Parse(f, mesh.ParseOptions{TraceAllVertices: allVtx})
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s v%d\n", path, m.Dialect, m.Version)
	if err := chunk.Dump(os.Stdout, m.Root, m.Dialect); err != nil {
		return err
	}
	fmt.Println(m.StatLine())
	fmt.Printf("Triangles: %d\n", m.CountTriangles())
	return nil
}

// printStats reports the vertex count, the count left by
// unify_by_tan_epsilon and whether the buffers need merging. Lines worth a
// look are highlighted.
func printStats(path string) error {
	a, err := analyzer.Open(path)
	if err != nil {
		return err
	}
	rep, err := a.Analyze()
	if err != nil {
		return err
	}
	tanVtx, perc := 0, 0.0
	hasTan, needMerge := false, false
	for _, c := range rep.Candidates {
		switch c.Proc.Name {
		case "unify_by_tan_epsilon":
			tanVtx = c.After.Vertices
			if rep.Before.Vertices > 0 {
				perc = float64(tanVtx) / float64(rep.Before.Vertices) * 100
			}
			hasTan = true
		case "merge_vertex_buffers":
			needMerge = true
		}
	}
	merge := "no-merge"
	if needMerge {
		merge = "NEED-MERGE"
	}
	line := fmt.Sprintf("%s  %d  %d  %.1f  %s", path, rep.Before.Vertices, tanVtx, perc, merge)
	if (hasTan && perc < 90) || needMerge {
		line = "\x1b[1;31;40m" + line + "\x1b[0m"
	}
	fmt.Println(line)
	return nil
}
