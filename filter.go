// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// assetMatcher holds compiled include/exclude rules for asset selection.
type assetMatcher struct {
	matcher *pathrules.Matcher
}

// newAssetMatcher compiles asset selection path rules.
func newAssetMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*assetMatcher, error) {
	rules = normalizeAssetRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidIncludeRules, err)
	}

	return &assetMatcher{matcher: matcher}, nil
}

// normalizeAssetRules normalizes rule patterns and drops empty patterns.
func normalizeAssetRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := strings.TrimSpace(rule.Pattern)
		pattern = strings.ReplaceAll(pattern, `\`, "/")
		pattern = strings.TrimPrefix(pattern, "./")
		pattern = strings.TrimPrefix(pattern, "/")
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether asset name is included by at least one rule.
// Matching uses the name without its leading separator.
func (m *assetMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := strings.TrimPrefix(NormalizeAssetName(name), "/")
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// FilterAssetsByRules keeps assets whose names are included by the rule set.
// An empty rule set keeps everything.
func FilterAssetsByRules(assets []Asset, rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]Asset, error) {
	matcher, err := newAssetMatcher(rules, opts)
	if err != nil {
		return nil, err
	}
	if matcher == nil {
		return assets, nil
	}

	out := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		if matcher.Match(asset.Name) {
			out = append(out, asset)
		}
	}

	return out, nil
}

// FilterAssetsByPrefix keeps assets under the given root-relative prefix
// (or exact match when the prefix names a single asset).
func FilterAssetsByPrefix(assets []Asset, prefix string) []Asset {
	prefix = NormalizeAssetName(prefix)
	if prefix == "" {
		return assets
	}

	normalizedPrefix := prefix + "/"
	out := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		name := NormalizeAssetName(asset.Name)
		if name == prefix || strings.HasPrefix(name, normalizedPrefix) {
			out = append(out, asset)
		}
	}

	return out
}

// FilterAssetsByMinSize keeps assets whose compressed payload is at least
// minSize bytes.
func FilterAssetsByMinSize(assets []Asset, minSize int) []Asset {
	if minSize <= 0 {
		return assets
	}

	out := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		if len(asset.Data) >= minSize {
			out = append(out, asset)
		}
	}

	return out
}
