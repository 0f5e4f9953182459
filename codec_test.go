// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"bytes"
	"errors"
	"testing"
)

func TestBrotliRoundTrip(t *testing.T) {
	t.Parallel()

	for _, original := range [][]byte{
		[]byte("hello"),
		nil,
		bytes.Repeat([]byte("<html>static asset</html>\n"), 1024),
	} {
		compressed := brotliCompress(t, original)

		if err := verifyBrotli(compressed); err != nil {
			t.Fatalf("verifyBrotli: %v", err)
		}

		got, err := decompressBrotli(compressed)
		if err != nil {
			t.Fatalf("decompressBrotli: %v", err)
		}
		if !bytes.Equal(got, original) {
			t.Errorf("round trip produced %d bytes, want %d", len(got), len(original))
		}
	}
}

func TestVerifyBrotli_RejectsInvalidStreams(t *testing.T) {
	t.Parallel()

	truncated := brotliCompress(t, bytes.Repeat([]byte("payload"), 256))

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"plain text", []byte("definitely not brotli content at all")},
		{"truncated stream", truncated[:3]},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if err := verifyBrotli(tc.data); !errors.Is(err, ErrInvalidBrotliData) {
				t.Fatalf("verifyBrotli err = %v, want ErrInvalidBrotliData", err)
			}
			if _, err := decompressBrotli(tc.data); !errors.Is(err, ErrInvalidBrotliData) {
				t.Fatalf("decompressBrotli err = %v, want ErrInvalidBrotliData", err)
			}
		})
	}
}

func TestAssetDecompress_FailureIsLocal(t *testing.T) {
	t.Parallel()

	good := Asset{Name: "/ok.txt", Data: brotliCompress(t, []byte("ok"))}
	bad := Asset{Name: "/bad.txt", Data: []byte("garbage that is not compressed")}

	if _, err := bad.Decompress(); !errors.Is(err, ErrInvalidBrotliData) {
		t.Fatalf("bad asset err = %v, want ErrInvalidBrotliData", err)
	}

	raw, err := good.Decompress()
	if err != nil {
		t.Fatalf("good asset: %v", err)
	}
	if !bytes.Equal(raw, []byte("ok")) {
		t.Errorf("good asset decompressed to %q, want ok", raw)
	}
}
