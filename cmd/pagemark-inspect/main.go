package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kpauljoseph/pagemark/internal/source"
	"github.com/kpauljoseph/pagemark/internal/workspace"
	"github.com/kpauljoseph/pagemark/pkg/logger"
)

func main() {
	path := flag.String("file", "", "Path to a PDF or image file")
	width := flag.Float64("width", 0, "available width in pixels; prints the fit-to-width scale per page")
	flag.Parse()

	if *path == "" {
		fmt.Println("Please provide a document path using -file flag")
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Printf("Error reading document: %v\n", err)
		os.Exit(1)
	}
	kind, err := source.DetectKind(*path, data)
	if err != nil {
		fmt.Printf("Error detecting document kind: %v\n", err)
		os.Exit(1)
	}

	r, err := workspace.DefaultRenderers(kind, data, logger.Discard())
	if err != nil {
		fmt.Printf("Error opening document: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	fmt.Printf("Analyzing %s document: %s (%d pages)\n", kind, *path, r.PageCount())

	for page := 1; page <= r.PageCount(); page++ {
		dim, err := r.NaturalSize(page)
		if err != nil {
			fmt.Printf("Error getting page %d dimensions: %v\n", page, err)
			os.Exit(1)
		}
		fmt.Printf("\nPage %d:\n", page)
		fmt.Printf("Dimensions (Width x Height): %.3f x %.3f points\n", dim.Width, dim.Height)
		if *width > 0 {
			fmt.Printf("Fit to %.0fpx: scale %.4f\n", *width, *width/dim.Width)
		}
	}
}
