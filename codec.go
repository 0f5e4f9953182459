// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// verifyBrotli runs a full brotli decode over data and discards the output.
// Used as a validity probe during scanning: arbitrary bytes overwhelmingly
// fail to decode as a valid stream, which keeps false positives rare at the
// cost of one decode per candidate.
func verifyBrotli(data []byte) error {
	r := brotli.NewReader(bytes.NewReader(data))
	if _, err := io.Copy(io.Discard, r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBrotliData, err)
	}

	return nil
}

// decompressBrotli decodes a full brotli stream into memory.
func decompressBrotli(data []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBrotliData, err)
	}

	return out, nil
}
