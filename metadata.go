// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

// ScanFile opens an executable, scans it for embedded assets and returns
// them without keeping a dumper around.
func ScanFile(path string) ([]Asset, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	return d.ScanAssets()
}

// ListAssetNames opens an executable and returns located asset names in
// discovery order.
func ListAssetNames(path string) ([]string, error) {
	assets, err := ScanFile(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(assets))
	for i := range assets {
		names[i] = assets[i].Name
	}

	return names, nil
}
