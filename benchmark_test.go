// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"bytes"
	"context"
	"testing"
)

var (
	// benchScanSink prevents compiler elimination in scan benchmark loops.
	benchScanSink int
)

func BenchmarkScanAssetsMachO(b *testing.B) {
	img := buildTwoAssetMachO(b, true)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d, err := NewDumperFromReaderAt(bytes.NewReader(img), int64(len(img)))
		if err != nil {
			b.Fatal(err)
		}

		assets, err := d.ScanAssets()
		if err != nil {
			b.Fatal(err)
		}

		benchScanSink = len(assets)
	}
}

func BenchmarkScanAssetsPE(b *testing.B) {
	img := buildTwoAssetPE(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d, err := NewDumperFromReaderAt(bytes.NewReader(img), int64(len(img)))
		if err != nil {
			b.Fatal(err)
		}

		assets, err := d.ScanAssets()
		if err != nil {
			b.Fatal(err)
		}

		benchScanSink = len(assets)
	}
}

func BenchmarkExtractAssets(b *testing.B) {
	img := buildTwoAssetMachO(b, true)
	d, err := NewDumperFromReaderAt(bytes.NewReader(img), int64(len(img)))
	if err != nil {
		b.Fatal(err)
	}

	assets, err := d.ScanAssets()
	if err != nil {
		b.Fatal(err)
	}

	dst := b.TempDir()
	opts := ExtractOptions{MaxWorkers: 2, FileMode: ExtractFileModeTruncate}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ExtractAssets(context.Background(), assets, dst, opts); err != nil {
			b.Fatal(err)
		}
	}
}
