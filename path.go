// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"strings"
)

// NormalizeAssetName converts an embedded asset name to normalized
// slash-separated root-relative form with a single leading "/". It trims
// spaces, accepts both "/" and "\", and drops empty and "." segments.
func NormalizeAssetName(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, "/")

	parts := strings.Split(raw, "/")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}

		clean = append(clean, part)
	}

	if len(clean) == 0 {
		return ""
	}

	return "/" + strings.Join(clean, "/")
}

// normalizeExtractAssetPath converts a root-relative asset name to a safe
// relative filesystem path: the leading separator is stripped, and absolute,
// traversal, NUL and drive-prefixed inputs are rejected.
func normalizeExtractAssetPath(name string) (string, error) {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return "", ErrInvalidExtractPath
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, "/")
	// Asset names are root-relative by format; only the leading separator
	// marks the asset root, anything beyond it must stay relative.
	raw = strings.TrimPrefix(raw, "/")
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, "/")
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, "/"), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether byte is ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
