// ABOUTME: CLI entry point for the corelens heap attribution tool
// ABOUTME: Analyzes expressions or scans a whole memory image for top heap owners

// Package main implements the corelens command.
//
// corelens ranks the variables of an inspected process by the heap memory
// transitively reachable from them. It reads a memory image (currently the
// JSON format), then either analyzes the expressions given as arguments or,
// with no arguments, scans every stack variable of every thread plus all
// globals and prints the ranked attribution.
//
// Usage:
//
//	corelens -image dump.json              # whole-process scan, top 20
//	corelens -image dump.json -top 5       # whole-process scan, top 5
//	corelens -image dump.json g_cache buf  # analyze individual expressions
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/corelens/corelens/image"
	"github.com/corelens/corelens/report"
	"github.com/corelens/corelens/scan"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("corelens", flag.ContinueOnError)
	fs.SetOutput(stderr)
	imagePath := fs.String("image", "", "path to the memory image to analyze")
	topN := fs.Int("top", report.DefaultTopN, "number of ranked entries to print")
	pprofPath := fs.String("pprof", "", "also write the attribution as a pprof profile to this file")
	blocks := fs.Bool("blocks", false, "print allocator block statistics instead of scanning variables")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *imagePath == "" {
		fmt.Fprintln(stderr, "corelens: -image is required")
		fs.Usage()
		return 1
	}

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "corelens: %v\n", err)
			return 1
		}
		logger = dev
		defer logger.Sync()
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(stderr, "corelens: %v\n", err)
		return 1
	}
	defer f.Close()

	host, err := image.Open(f)
	if err != nil {
		fmt.Fprintf(stderr, "corelens: parsing %s: %v\n", *imagePath, err)
		return 1
	}

	if *blocks {
		stats := report.ComputeBlockStats(host.Blocks())
		if err := stats.Write(stdout, *topN); err != nil {
			fmt.Fprintf(stderr, "corelens: %v\n", err)
			return 1
		}
		return 0
	}

	scanner := scan.New(host, scan.WithLogger(logger))

	if exprs := fs.Args(); len(exprs) > 0 {
		results := scanner.Expressions(exprs)
		if err := report.WriteExprResults(stdout, results); err != nil {
			fmt.Fprintf(stderr, "corelens: %v\n", err)
			return 1
		}
		return 0
	}

	sum, err := scanner.Run()
	if err != nil {
		fmt.Fprintf(stderr, "corelens: scan failed: %v\n", err)
		return 1
	}
	if err := report.Write(stdout, sum, *topN); err != nil {
		fmt.Fprintf(stderr, "corelens: %v\n", err)
		return 1
	}

	if *pprofPath != "" {
		out, err := os.Create(*pprofPath)
		if err != nil {
			fmt.Fprintf(stderr, "corelens: %v\n", err)
			return 1
		}
		defer out.Close()
		if err := report.WriteProfile(out, sum); err != nil {
			fmt.Fprintf(stderr, "corelens: writing profile: %v\n", err)
			return 1
		}
	}
	return 0
}
