// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"github.com/woozymasta/pathrules"
)

// Internal binary layout constants.
const (
	// assetHeaderSize is the fixed on-disk asset header record size in bytes:
	// four little-endian uint64 fields (name_ptr, name_len, data_ptr, data_size).
	assetHeaderSize = 32
	// probeStride is the conservative minimal-alignment step used before the
	// first confirmed header.
	probeStride = 8
	// defaultImageBase is the conventional 64-bit Mach-O load address, used
	// when the __TEXT segment cannot be located.
	defaultImageBase = 0x100000000
	// chainedPointerTargetMask selects the low 43 bits of a chained-fixup
	// pointer, which carry the image-relative offset; higher bits are
	// fixup metadata.
	chainedPointerTargetMask = 0x7FFFFFFFFFF
)

// FixupFormat identifies the Mach-O pointer encoding scheme.
type FixupFormat uint8

// Mach-O pointer encodings.
const (
	// FixupTraditional means raw pointers store virtual addresses directly
	// (classic LC_DYLD_INFO rebase metadata).
	FixupTraditional FixupFormat = iota
	// FixupChained means raw pointers store image-relative offsets plus
	// metadata bits (LC_DYLD_CHAINED_FIXUPS).
	FixupChained
)

// String returns a readable fixup format name.
func (f FixupFormat) String() string {
	switch f {
	case FixupChained:
		return "chained"
	case FixupTraditional:
		return "traditional"
	default:
		return "unknown"
	}
}

// Section describes one candidate read-only data section of the binary.
// Built once at detection time and immutable afterwards; FileOffset+Size
// never exceeds the file length.
type Section struct {
	// VirtualAddress is the section's mapped address in process space.
	VirtualAddress uint64 `json:"virtual_address" yaml:"virtual_address"`
	// FileOffset is the section's byte offset in the on-disk file.
	FileOffset uint64 `json:"file_offset" yaml:"file_offset"`
	// Size is the section length in bytes.
	Size uint64 `json:"size" yaml:"size"`
}

// contains reports whether virtual address va falls inside the section.
func (s Section) contains(va uint64) bool {
	return va >= s.VirtualAddress && va < s.VirtualAddress+s.Size
}

// fileOffsetOf translates a contained virtual address to a file offset.
func (s Section) fileOffsetOf(va uint64) uint64 {
	return va - s.VirtualAddress + s.FileOffset
}

// ScanRange is the byte window of the file within which asset headers are probed.
type ScanRange struct {
	// Start is the window's first byte offset in the file.
	Start int64 `json:"start" yaml:"start"`
	// Length is the window size in bytes.
	Length int64 `json:"length" yaml:"length"`
}

// Asset is one located embedded asset. Name is a root-relative ASCII path
// (always starting with "/"); Data is an owned copy of the brotli-compressed
// payload, independent of the dumper's backing source.
type Asset struct {
	// Name is the asset's embedded root-relative path.
	Name string `json:"name" yaml:"name"`
	// Data is the raw compressed payload.
	Data []byte `json:"-" yaml:"-"`
}

// DumperOptions configures dumper construction behavior.
type DumperOptions struct {
	// OnAssetFound is called once per validated asset during scanning.
	OnAssetFound func(asset Asset) `json:"-" yaml:"-"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnAssetDone is called after one asset is fully written to disk.
	OnAssetDone func(asset Asset, written int64, outputPath string) `json:"-" yaml:"-"`
	// Include limits extraction to assets matching the rule set; nil means all.
	Include []pathrules.Rule `json:"include,omitempty" yaml:"include,omitempty"`
	// IncludeMatcherOptions control include rule matching.
	IncludeMatcherOptions pathrules.MatcherOptions `json:"include_matcher_options,omitzero" yaml:"include_matcher_options,omitzero"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}

	if opts.IncludeMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.IncludeMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.IncludeMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.IncludeMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
