// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

/*
Package taudump locates and extracts embedded brotli-compressed static
assets (web UI files) packed into the read-only data sections of compiled
Tauri-style desktop executables. Supported containers are 64-bit PE and
64-bit Mach-O; anything else fails fast.

Assets are found without any index or manifest. The dumper walks a
format-specific read-only section for fixed 32-byte header records
(name pointer, name length, data pointer, data size), resolves the raw
pointers through a format-specific strategy (PE .rdata translation,
Mach-O traditional virtual addresses, or Mach-O chained-fixup offset
decoding), and accepts a candidate only when the name is a root-relative
ASCII path and the payload fully decodes as a brotli stream.

# Scanning

Open an executable and scan for assets:

	d, err := taudump.Open("app.exe")
	if err != nil {
	    return err
	}
	defer d.Close()

	assets, err := d.ScanAssets()
	if err != nil {
	    return err
	}
	for _, a := range assets {
	    raw, _ := a.Decompress()
	    // use raw
	}

For one-shot scans without managing a dumper:

	assets, err := taudump.ScanFile("app.exe")
	if err != nil {
	    return err
	}
	names, err := taudump.ListAssetNames("app.exe")
	if err != nil {
	    return err
	}
	_, _ = assets, names

# Extracting

Extract every asset to a directory (parallel workers, traversal-safe
output paths):

	if err := d.Extract(ctx, "out/", taudump.ExtractOptions{MaxWorkers: 4}); err != nil {
	    return err
	}

Limit extraction with include rules from github.com/woozymasta/pathrules:

	err = d.Extract(ctx, "out/", taudump.ExtractOptions{
	    Include: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "assets/**"},
	        {Action: pathrules.ActionInclude, Pattern: "*.html"},
	    },
	})
	if err != nil {
	    return err
	}

Every returned Asset owns copies of its bytes, so results remain valid
after the dumper and its memory-mapped view are closed.
*/
package taudump
