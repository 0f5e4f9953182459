// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Container format magic values.
const (
	// machoMagic64 is the 64-bit Mach-O magic (MH_MAGIC_64) in file byte order.
	machoMagic64 = 0xfeedfacf
	// machoCigam64 is MH_MAGIC_64 with swapped byte order.
	machoCigam64 = 0xcffaedfe
	// peDOSMagic is the "MZ" DOS stub signature.
	peDOSMagic = 0x5a4d
)

// resolver converts format-specific raw pointer values into file offsets and
// reports the byte window in which asset headers are expected.
//
// PE and Mach-O encode pointers differently (Mach-O additionally splits into
// chained-fixup and traditional variants); the resolver is selected once at
// detection time so no other part of the pipeline inspects the format.
type resolver interface {
	// resolvePointer converts a raw in-binary pointer value to a file offset.
	// Fails when the decoded address is not covered by any known section.
	resolvePointer(raw uint64) (int64, error)

	// scanWindow returns the file range to probe for asset headers.
	scanWindow() (ScanRange, error)
}

// detectResolver identifies the container format from raw header bytes and
// builds the matching resolver. Unsupported or non-64-bit containers are a
// fatal condition for the whole run.
func detectResolver(ra io.ReaderAt, size int64) (resolver, error) {
	var magic [4]byte
	if size < int64(len(magic)) {
		return nil, fmt.Errorf("%w: file too short for magic", ErrUnsupportedFormat)
	}
	if _, err := ra.ReadAt(magic[:], 0); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}

	switch {
	case binary.LittleEndian.Uint16(magic[:2]) == peDOSMagic:
		return newPEResolver(ra, size)
	case binary.LittleEndian.Uint32(magic[:]) == machoMagic64,
		binary.LittleEndian.Uint32(magic[:]) == machoCigam64:
		return newMachoResolver(ra, size)
	default:
		return nil, fmt.Errorf("%w: unrecognized magic %#x", ErrUnsupportedFormat, magic)
	}
}

// clampSectionToFile enforces the section invariant FileOffset+Size <= file
// length by trimming trailing bytes the on-disk image does not back.
func clampSectionToFile(s Section, fileSize int64) Section {
	if s.FileOffset >= uint64(fileSize) {
		s.Size = 0
		return s
	}

	if avail := uint64(fileSize) - s.FileOffset; s.Size > avail {
		s.Size = avail
	}

	return s
}
