// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/andybalholm/brotli"
)

// Test image builders. Fixtures are assembled by hand with encoding/binary
// so scenarios control every section address, offset and pointer value.

const (
	testMachoImageBase = 0x100000000
	testPEImageBase    = 0x140000000
)

// testSection describes one section inside a synthetic Mach-O segment.
type testSection struct {
	name   string
	addr   uint64
	offset uint32
	size   uint64
}

// testSegment describes one Mach-O segment load command with its sections.
type testSegment struct {
	name     string
	addr     uint64
	memSize  uint64
	fileOff  uint64
	fileSize uint64
	sections []testSection
}

// buildMachOImage assembles a minimal 64-bit little-endian Mach-O executable
// containing the given segments and, optionally, an LC_DYLD_CHAINED_FIXUPS
// load command. The returned buffer is fileSize bytes; callers blit section
// content at the offsets they declared.
func buildMachOImage(t testing.TB, segments []testSegment, chained bool, fileSize int) []byte {
	t.Helper()

	const (
		machHeaderSize   = 32
		segmentCmdSize   = 72
		sectionEntrySize = 80
		lcSegment64      = 0x19
	)

	sizeOfCmds := 0
	for _, seg := range segments {
		sizeOfCmds += segmentCmdSize + sectionEntrySize*len(seg.sections)
	}

	ncmds := len(segments)
	if chained {
		sizeOfCmds += 16
		ncmds++
	}

	if machHeaderSize+sizeOfCmds > fileSize {
		t.Fatalf("fileSize %d too small for %d bytes of load commands", fileSize, sizeOfCmds)
	}

	buf := make([]byte, fileSize)
	le := binary.LittleEndian

	// mach_header_64
	le.PutUint32(buf[0:], machoMagic64)
	le.PutUint32(buf[4:], 0x0100000c) // CPU_TYPE_ARM64
	le.PutUint32(buf[8:], 0)          // cpusubtype
	le.PutUint32(buf[12:], 0x2)       // MH_EXECUTE
	le.PutUint32(buf[16:], uint32(ncmds))
	le.PutUint32(buf[20:], uint32(sizeOfCmds))
	le.PutUint32(buf[24:], 0) // flags
	le.PutUint32(buf[28:], 0) // reserved

	off := machHeaderSize
	for _, seg := range segments {
		cmdSize := segmentCmdSize + sectionEntrySize*len(seg.sections)
		le.PutUint32(buf[off:], lcSegment64)
		le.PutUint32(buf[off+4:], uint32(cmdSize))
		copy(buf[off+8:off+24], seg.name)
		le.PutUint64(buf[off+24:], seg.addr)
		le.PutUint64(buf[off+32:], seg.memSize)
		le.PutUint64(buf[off+40:], seg.fileOff)
		le.PutUint64(buf[off+48:], seg.fileSize)
		le.PutUint32(buf[off+56:], 0x1) // maxprot VM_PROT_READ
		le.PutUint32(buf[off+60:], 0x1) // initprot
		le.PutUint32(buf[off+64:], uint32(len(seg.sections)))
		le.PutUint32(buf[off+68:], 0) // flags
		off += segmentCmdSize

		for _, sect := range seg.sections {
			copy(buf[off:off+16], sect.name)
			copy(buf[off+16:off+32], seg.name)
			le.PutUint64(buf[off+32:], sect.addr)
			le.PutUint64(buf[off+40:], sect.size)
			le.PutUint32(buf[off+48:], sect.offset)
			le.PutUint32(buf[off+52:], 3) // align 2^3
			off += sectionEntrySize
		}
	}

	if chained {
		le.PutUint32(buf[off:], lcDyldChainedFixups)
		le.PutUint32(buf[off+4:], 16)
		// dataoff and datasize left zero; only command presence matters.
	}

	return buf
}

// buildPEImage assembles a minimal 64-bit PE executable with the given
// sections. The returned buffer is fileSize bytes; callers blit section
// content at the raw offsets they declared.
func buildPEImage(t testing.TB, sections []peTestSection, fileSize int) []byte {
	t.Helper()

	const (
		peOffset           = 0x80
		fileHeaderSize     = 20
		optionalHeaderSize = 240
		sectionHeaderSize  = 40
	)

	headersEnd := peOffset + 4 + fileHeaderSize + optionalHeaderSize + sectionHeaderSize*len(sections)
	if headersEnd > fileSize {
		t.Fatalf("fileSize %d too small for %d bytes of PE headers", fileSize, headersEnd)
	}

	buf := make([]byte, fileSize)
	le := binary.LittleEndian

	// DOS stub
	copy(buf[0:2], "MZ")
	le.PutUint32(buf[0x3c:], peOffset)

	// PE signature + COFF file header
	copy(buf[peOffset:], "PE\x00\x00")
	fh := peOffset + 4
	le.PutUint16(buf[fh:], 0x8664) // IMAGE_FILE_MACHINE_AMD64
	le.PutUint16(buf[fh+2:], uint16(len(sections)))
	le.PutUint16(buf[fh+16:], optionalHeaderSize)
	le.PutUint16(buf[fh+18:], 0x0022) // EXECUTABLE_IMAGE | LARGE_ADDRESS_AWARE

	// Optional header (PE32+)
	oh := fh + fileHeaderSize
	le.PutUint16(buf[oh:], 0x20b) // PE32+ magic
	le.PutUint64(buf[oh+24:], testPEImageBase)
	le.PutUint32(buf[oh+32:], 0x1000) // SectionAlignment
	le.PutUint32(buf[oh+36:], 0x200)  // FileAlignment
	le.PutUint32(buf[oh+108:], 16)    // NumberOfRvaAndSizes; directories stay zero

	// Section table
	sh := oh + optionalHeaderSize
	for _, s := range sections {
		copy(buf[sh:sh+8], s.name)
		le.PutUint32(buf[sh+8:], s.virtualSize)
		le.PutUint32(buf[sh+12:], s.rva)
		le.PutUint32(buf[sh+16:], s.rawSize)
		le.PutUint32(buf[sh+20:], s.rawOff)
		le.PutUint32(buf[sh+36:], s.characteristics)
		sh += sectionHeaderSize
	}

	return buf
}

// peTestSection describes one section of a synthetic PE image.
type peTestSection struct {
	name            string
	virtualSize     uint32
	rva             uint32
	rawSize         uint32
	rawOff          uint32
	characteristics uint32
}

// rdataCharacteristics marks an initialized read-only data section.
const rdataCharacteristics = 0x40000040 // INITIALIZED_DATA | MEM_READ

// brotliCompress compresses data for fixture payloads.
func brotliCompress(t testing.TB, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}

	return buf.Bytes()
}

// putAssetHeader writes one 32-byte header record at buf[off:].
func putAssetHeader(buf []byte, off int, namePtr, nameLen, dataPtr, dataSize uint64) {
	le := binary.LittleEndian
	le.PutUint64(buf[off:], namePtr)
	le.PutUint64(buf[off+8:], nameLen)
	le.PutUint64(buf[off+16:], dataPtr)
	le.PutUint64(buf[off+24:], dataSize)
}
