// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"golang.org/x/exp/mmap"
)

// assetHeader is the transient decoded form of one 32-byte on-disk header
// record. Decoded field-wise per candidate, never retained.
type assetHeader struct {
	namePtr  uint64
	nameLen  uint64
	dataPtr  uint64
	dataSize uint64
}

// decodeAssetHeader decodes four little-endian uint64 fields from buf.
// buf must be at least assetHeaderSize bytes.
func decodeAssetHeader(buf []byte) assetHeader {
	return assetHeader{
		namePtr:  binary.LittleEndian.Uint64(buf[0:8]),
		nameLen:  binary.LittleEndian.Uint64(buf[8:16]),
		dataPtr:  binary.LittleEndian.Uint64(buf[16:24]),
		dataSize: binary.LittleEndian.Uint64(buf[24:32]),
	}
}

// scanState tracks the adaptive stride of the header walk.
type scanState uint8

const (
	// scanProbing means no header was confirmed yet; the walk advances by a
	// conservative 8-byte alignment guess.
	scanProbing scanState = iota
	// scanAligned means at least one header matched; real header tables are
	// densely packed, so the walk advances by whole records.
	scanAligned
)

// stride returns the walk step in bytes for the current state.
func (s scanState) stride() int64 {
	if s == scanAligned {
		return assetHeaderSize
	}

	return probeStride
}

// Dumper locates and extracts embedded compressed assets from one 64-bit PE
// or Mach-O executable. The backing source is treated as an immutable
// snapshot for the dumper's lifetime; every returned Asset owns copies of
// its bytes and stays valid after Close.
type Dumper struct {
	// ra is the underlying random-access source for all reads.
	ra io.ReaderAt
	// mapped is set when Dumper owns a memory-mapped file opened via Open.
	mapped *mmap.ReaderAt
	// res is the format-specific pointer resolver fixed at construction.
	res resolver
	// opts are construction options.
	opts DumperOptions
	// size is total source size in bytes.
	size int64
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// Open memory-maps the executable at path and detects its container format.
func Open(path string) (*Dumper, error) {
	return OpenWithOptions(path, DumperOptions{})
}

// OpenWithOptions memory-maps the executable at path and detects its
// container format using explicit dumper options.
func OpenWithOptions(path string, opts DumperOptions) (*Dumper, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open executable: %w", err)
	}

	d, err := NewDumperFromReaderAtWithOptions(m, int64(m.Len()), opts)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	d.mapped = m
	return d, nil
}

// NewDumperFromReaderAt builds a dumper over an existing random-access
// source of known size.
func NewDumperFromReaderAt(ra io.ReaderAt, size int64) (*Dumper, error) {
	return NewDumperFromReaderAtWithOptions(ra, size, DumperOptions{})
}

// NewDumperFromReaderAtWithOptions builds a dumper over an existing
// random-access source of known size using explicit dumper options.
func NewDumperFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts DumperOptions) (*Dumper, error) {
	if ra == nil {
		return nil, ErrNilDumper
	}

	res, err := detectResolver(ra, size)
	if err != nil {
		return nil, err
	}

	return &Dumper{ra: ra, size: size, res: res, opts: opts}, nil
}

// Close releases the memory-mapped view if the dumper owns one.
func (d *Dumper) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true
	if d.mapped != nil {
		return d.mapped.Close()
	}

	return nil
}

// ScanAssets walks the scan window for asset headers and returns every
// validated asset in file-offset discovery order. Rejected candidates are
// silent; two scans of the same source yield identical results.
func (d *Dumper) ScanAssets() ([]Asset, error) {
	if d == nil || d.ra == nil {
		return nil, ErrNilDumper
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	window, err := d.res.scanWindow()
	if err != nil {
		return nil, err
	}

	buf, err := d.readScanWindow(window)
	if err != nil {
		return nil, err
	}

	var assets []Asset
	state := scanProbing
	for off := int64(0); off+assetHeaderSize <= int64(len(buf)); off += state.stride() {
		asset, err := d.tryParseAsset(buf[off : off+assetHeaderSize])
		if err != nil {
			// Not a header here; keep walking at the current stride.
			continue
		}

		assets = append(assets, asset)
		state = scanAligned
		if d.opts.OnAssetFound != nil {
			d.opts.OnAssetFound(asset)
		}
	}

	return assets, nil
}

// readScanWindow validates the configured window against file bounds and
// reads it into memory. A window outside the file means the resolver's own
// metadata is malformed, which is fatal for the run.
func (d *Dumper) readScanWindow(window ScanRange) ([]byte, error) {
	if window.Start < 0 || window.Length < 0 || window.Start+window.Length > d.size {
		return nil, fmt.Errorf("%w: window [%d, %d) in %d-byte file",
			ErrScanRangeOutOfBounds, window.Start, window.Start+window.Length, d.size)
	}

	buf := make([]byte, window.Length)
	if _, err := d.ra.ReadAt(buf, window.Start); err != nil {
		return nil, fmt.Errorf("read scan window: %w", err)
	}

	return buf, nil
}

// tryParseAsset decodes and validates one header candidate. Any failure
// rejects the candidate without affecting the surrounding scan.
func (d *Dumper) tryParseAsset(record []byte) (Asset, error) {
	header := decodeAssetHeader(record)

	nameOffset, err := d.res.resolvePointer(header.namePtr)
	if err != nil {
		return Asset{}, err
	}

	dataOffset, err := d.res.resolvePointer(header.dataPtr)
	if err != nil {
		return Asset{}, err
	}

	if err := d.checkRegion(nameOffset, header.nameLen); err != nil {
		return Asset{}, err
	}
	if err := d.checkRegion(dataOffset, header.dataSize); err != nil {
		return Asset{}, err
	}

	name, err := d.readAssetName(nameOffset, int64(header.nameLen))
	if err != nil {
		return Asset{}, err
	}

	data, err := d.readRegion(dataOffset, int64(header.dataSize))
	if err != nil {
		return Asset{}, err
	}

	if err := verifyBrotli(data); err != nil {
		return Asset{}, err
	}

	return Asset{Name: name, Data: data}, nil
}

// checkRegion validates that a resolved region lies fully inside the file.
// Lengths come from untrusted header fields, so arithmetic avoids overflow.
func (d *Dumper) checkRegion(offset int64, length uint64) error {
	size := uint64(d.size)
	if uint64(offset) >= size || length > size || uint64(offset) > size-length {
		return fmt.Errorf("%w: region [%#x, +%#x)", ErrRegionOutOfBounds, offset, length)
	}

	return nil
}

// readAssetName reads and validates one asset name region. Names are
// root-relative ASCII paths: non-empty, leading '/', no NUL or non-ASCII
// bytes.
func (d *Dumper) readAssetName(offset, length int64) (string, error) {
	if length == 0 {
		return "", fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}

	raw, err := d.readRegion(offset, length)
	if err != nil {
		return "", err
	}

	if raw[0] != '/' {
		return "", fmt.Errorf("%w: missing leading slash", ErrInvalidAssetName)
	}

	for _, b := range raw {
		if b == 0 || b >= 0x80 {
			return "", fmt.Errorf("%w: non-ASCII byte %#x", ErrInvalidAssetName, b)
		}
	}

	return string(raw), nil
}

// readRegion copies length bytes at offset out of the backing source.
func (d *Dumper) readRegion(offset, length int64) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := d.ra.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("read region at %#x: %w", offset, err)
	}

	return buf, nil
}

// Decompress decodes the asset's brotli payload. Kept separate from the
// scan-time validity probe: an asset may be decompressed in a later step,
// and its data is re-verified independently. Failure is local to this asset.
func (a *Asset) Decompress() ([]byte, error) {
	out, err := decompressBrotli(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decompress asset %s: %w", a.Name, err)
	}

	return out, nil
}
