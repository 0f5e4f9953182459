// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"debug/pe"
	"fmt"
	"io"
)

// peResolver resolves pointers for 64-bit PE images. Asset headers, names and
// payload all live in the single read-only .rdata section, so pointer lookup
// and the scan window both use that one section.
type peResolver struct {
	rdata Section
}

// newPEResolver parses a PE image and locates its .rdata section.
func newPEResolver(ra io.ReaderAt, size int64) (*peResolver, error) {
	f, err := pe.NewFile(ra)
	if err != nil {
		return nil, fmt.Errorf("%w: parse PE: %w", ErrUnsupportedFormat, err)
	}
	defer func() { _ = f.Close() }()

	opt, ok := f.OptionalHeader.(*pe.OptionalHeader64)
	if !ok {
		return nil, fmt.Errorf("%w: PE image is not 64-bit", ErrUnsupportedFormat)
	}

	var rdata *Section
	for _, s := range f.Sections {
		if s.Name != ".rdata" || !isReadOnlyData(s.Characteristics) {
			continue
		}

		if rdata != nil {
			return nil, fmt.Errorf("%w: multiple .rdata sections", ErrNoRDataSection)
		}

		sec := clampSectionToFile(Section{
			VirtualAddress: opt.ImageBase + uint64(s.VirtualAddress),
			FileOffset:     uint64(s.Offset),
			Size:           rdataSize(s),
		}, size)
		rdata = &sec
	}

	if rdata == nil || rdata.Size == 0 {
		return nil, ErrNoRDataSection
	}

	return &peResolver{rdata: *rdata}, nil
}

// isReadOnlyData reports whether section characteristics mark initialized
// read-only data.
func isReadOnlyData(characteristics uint32) bool {
	const (
		initializedData = pe.IMAGE_SCN_CNT_INITIALIZED_DATA
		memRead         = pe.IMAGE_SCN_MEM_READ
		memWrite        = pe.IMAGE_SCN_MEM_WRITE
		memExecute      = pe.IMAGE_SCN_MEM_EXECUTE
	)

	if characteristics&initializedData == 0 || characteristics&memRead == 0 {
		return false
	}

	return characteristics&(memWrite|memExecute) == 0
}

// rdataSize returns the usable section length. VirtualSize may exceed
// SizeOfRawData (zero-filled tail) or be zero in legacy images; only bytes
// backed by the on-disk file are scannable.
func rdataSize(s *pe.Section) uint64 {
	size := uint64(s.VirtualSize)
	if size == 0 || size > uint64(s.Size) {
		size = uint64(s.Size)
	}

	return size
}

// resolvePointer translates a raw virtual address against the .rdata section.
func (p *peResolver) resolvePointer(raw uint64) (int64, error) {
	if !p.rdata.contains(raw) {
		return 0, fmt.Errorf("%w: %#x outside .rdata", ErrPointerOutOfRange, raw)
	}

	return int64(p.rdata.fileOffsetOf(raw)), nil
}

// scanWindow returns the whole .rdata section as header probe range.
func (p *peResolver) scanWindow() (ScanRange, error) {
	return ScanRange{
		Start:  int64(p.rdata.FileOffset),
		Length: int64(p.rdata.Size),
	}, nil
}
