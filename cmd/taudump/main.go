// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

// Command taudump extracts embedded compressed assets from a Tauri-style
// 64-bit PE or Mach-O executable into an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/woozymasta/taudump"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taudump: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	input := flag.String("input", "", "path to a 64-bit PE or Mach-O executable")
	output := flag.String("output", "", "output directory for extracted assets")
	workers := flag.Int("workers", 0, "extraction workers (0 means GOMAXPROCS)")
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		return fmt.Errorf("both -input and -output are required")
	}

	d, err := taudump.Open(*input)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	fmt.Println("Scanning for assets...")
	assets, err := d.ScanAssets()
	if err != nil {
		return err
	}

	fmt.Printf("Scanning completed. Found %d assets\n", len(assets))
	if len(assets) == 0 {
		return taudump.ErrNoAssetsFound
	}

	err = taudump.ExtractAssets(context.Background(), assets, *output, taudump.ExtractOptions{
		MaxWorkers: *workers,
		OnAssetDone: func(asset taudump.Asset, written int64, outputPath string) {
			fmt.Printf("Dump asset: %s, size: %#x\n", asset.Name, len(asset.Data))
		},
	})
	if err != nil {
		return err
	}

	fmt.Println("Done :)")
	return nil
}
