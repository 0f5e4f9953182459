// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"debug/macho"
	"fmt"
	"io"
)

// lcDyldChainedFixups is the LC_DYLD_CHAINED_FIXUPS load command value,
// not exposed by debug/macho.
const lcDyldChainedFixups = 0x80000034

// machoSegmentOrder lists segments whose __const sections may hold asset
// names, payload or header tables, in collection order. The header table
// itself sits in the last collected section (see headerTableSection).
var machoSegmentOrder = [...]string{"__TEXT", "__DATA_CONST", "__DATA"}

// machoResolver resolves pointers for 64-bit Mach-O images across both the
// chained-fixups and traditional rebase pointer encodings.
type machoResolver struct {
	sections  []Section
	imageBase uint64
	fixup     FixupFormat
}

// newMachoResolver parses a Mach-O image, collects its __const sections and
// detects the pointer encoding from load commands.
func newMachoResolver(ra io.ReaderAt, size int64) (*machoResolver, error) {
	f, err := macho.NewFile(ra)
	if err != nil {
		return nil, fmt.Errorf("%w: parse Mach-O: %w", ErrUnsupportedFormat, err)
	}
	defer func() { _ = f.Close() }()

	if f.Magic != macho.Magic64 {
		return nil, fmt.Errorf("%w: Mach-O image is not 64-bit", ErrUnsupportedFormat)
	}

	sections := collectConstSections(f, size)
	if len(sections) == 0 {
		return nil, ErrNoConstSection
	}

	return &machoResolver{
		sections:  sections,
		fixup:     detectFixupFormat(f),
		imageBase: detectImageBase(f),
	}, nil
}

// collectConstSections gathers __const sections from known segments in
// fixed segment order.
func collectConstSections(f *macho.File, fileSize int64) []Section {
	sections := make([]Section, 0, len(machoSegmentOrder))
	for _, seg := range machoSegmentOrder {
		for _, s := range f.Sections {
			if s.Seg != seg || s.Name != "__const" {
				continue
			}

			sections = append(sections, clampSectionToFile(Section{
				VirtualAddress: s.Addr,
				FileOffset:     uint64(s.Offset),
				Size:           s.Size,
			}, fileSize))
		}
	}

	return sections
}

// detectFixupFormat scans load commands for LC_DYLD_CHAINED_FIXUPS.
func detectFixupFormat(f *macho.File) FixupFormat {
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) >= 4 && f.ByteOrder.Uint32(raw[:4]) == lcDyldChainedFixups {
			return FixupChained
		}
	}

	return FixupTraditional
}

// detectImageBase returns the __TEXT segment's mapped address, or the
// conventional 64-bit default when __TEXT is absent.
func detectImageBase(f *macho.File) uint64 {
	if text := f.Segment("__TEXT"); text != nil {
		return text.Addr
	}

	return defaultImageBase
}

// decodePointer converts a raw stored pointer to a virtual address.
func (m *machoResolver) decodePointer(raw uint64) uint64 {
	if m.fixup == FixupChained {
		return m.imageBase + (raw & chainedPointerTargetMask)
	}

	return raw
}

// resolvePointer decodes raw to a virtual address and translates it through
// all collected sections.
func (m *machoResolver) resolvePointer(raw uint64) (int64, error) {
	va := m.decodePointer(raw)
	for _, s := range m.sections {
		if s.contains(va) {
			return int64(s.fileOffsetOf(va)), nil
		}
	}

	return 0, fmt.Errorf("%w: virtual address %#x", ErrPointerOutOfRange, va)
}

// scanWindow returns the header table section as probe range.
func (m *machoResolver) scanWindow() (ScanRange, error) {
	s, err := m.headerTableSection()
	if err != nil {
		return ScanRange{}, err
	}

	return ScanRange{
		Start:  int64(s.FileOffset),
		Length: int64(s.Size),
	}, nil
}

// headerTableSection selects the section expected to hold the asset header
// table: the last collected __const section in segment order, i.e. the
// data-side __const (typically __DATA_CONST,__const) rather than the
// __TEXT-side one that carries names and payload.
func (m *machoResolver) headerTableSection() (Section, error) {
	if len(m.sections) == 0 {
		return Section{}, ErrNoConstSection
	}

	return m.sections[len(m.sections)-1], nil
}
