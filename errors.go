// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import "errors"

// Sentinel errors for asset dump operations. Use errors.Is in callers.
var (
	// ErrUnsupportedFormat means the file is not a supported 64-bit PE or Mach-O binary.
	ErrUnsupportedFormat = errors.New("unsupported binary format")
	// ErrNoRDataSection means the PE file has no usable .rdata section.
	ErrNoRDataSection = errors.New("no .rdata section found in PE file")
	// ErrNoConstSection means the Mach-O file has no __const section in a known segment.
	ErrNoConstSection = errors.New("no __const section found in Mach-O file")
	// ErrPointerOutOfRange means a raw pointer resolved outside all known sections.
	ErrPointerOutOfRange = errors.New("pointer outside known section bounds")
	// ErrRegionOutOfBounds means a resolved name or data region exceeds file bounds.
	ErrRegionOutOfBounds = errors.New("region out of file bounds")
	// ErrInvalidAssetName means a candidate name fails the root-relative ASCII checks.
	ErrInvalidAssetName = errors.New("invalid asset name format")
	// ErrInvalidBrotliData means candidate data is not a valid brotli stream.
	ErrInvalidBrotliData = errors.New("invalid brotli data")
	// ErrScanRangeOutOfBounds means the configured scan window exceeds file length.
	ErrScanRangeOutOfBounds = errors.New("scan range exceeds file bounds")
	// ErrNilDumper means the dumper is nil or has no backing source.
	ErrNilDumper = errors.New("dumper is nil")
	// ErrClosed means the dumper or resource is already closed.
	ErrClosed = errors.New("dumper or resource already closed")
	// ErrNoAssetsFound means scanning completed without locating any asset.
	ErrNoAssetsFound = errors.New("no assets found")
	// ErrInvalidIncludeRules means one or more extract include rules are invalid.
	ErrInvalidIncludeRules = errors.New("invalid include rules")
	// ErrInvalidExtractPath means asset name is invalid as an extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrExtractPathOutsideRoot means resolved extraction path escapes destination root.
	ErrExtractPathOutsideRoot = errors.New("extract path escapes destination root")
)
