// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/taudump

package taudump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// extractWorkItem stores one selected asset with prepared output relative paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	asset   Asset
}

// ExtractAssets decompresses the given assets and writes them under dstDir.
// Extraction is parallelized by MaxWorkers; on failure it returns the first
// encountered error. Asset names are rewritten to safe relative paths and
// resolved outputs are kept inside dstDir.
func ExtractAssets(ctx context.Context, assets []Asset, dstDir string, opts ExtractOptions) error {
	opts.applyDefaults()

	if len(assets) == 0 {
		return nil
	}

	if opts.Include != nil {
		filtered, err := FilterAssetsByRules(assets, opts.Include, opts.IncludeMatcherOptions)
		if err != nil {
			return err
		}

		assets = filtered
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workItems, err := prepareExtractWorkItems(assets, dstRootAbs)
	if err != nil {
		return err
	}

	if len(workItems) == 0 {
		return nil
	}

	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return err
	}

	taskCh := make(chan extractWorkItem, len(workItems))
	errCh := make(chan error, len(workItems))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			for task := range taskCh {
				err := extractPreparedAsset(ctx, dstRootAbs, task, opts.FileMode, opts.OnAssetDone)
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	for _, task := range workItems {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()
			return ctx.Err()
		case taskCh <- task:
		}
	}

	close(taskCh)
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Extract scans the dumper's source and writes every located asset under
// dstDir. Scanning zero assets is reported as ErrNoAssetsFound.
func (d *Dumper) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	assets, err := d.ScanAssets()
	if err != nil {
		return err
	}

	if len(assets) == 0 {
		return ErrNoAssetsFound
	}

	return ExtractAssets(ctx, assets, dstDir, opts)
}

// prepareExtractWorkItems validates selected assets and prepares relative fs paths.
func prepareExtractWorkItems(assets []Asset, dstRootAbs string) ([]extractWorkItem, error) {
	workItems := make([]extractWorkItem, 0, len(assets))
	for _, asset := range assets {
		normalizedPath, err := normalizeExtractAssetPath(asset.Name)
		if err != nil {
			return nil, fmt.Errorf("normalize asset path %s: %w", asset.Name, err)
		}

		relPath := filepath.FromSlash(normalizedPath)
		// Traversal guard: the resolved output must stay under the root even
		// after normalization.
		outPath := filepath.Join(dstRootAbs, relPath)
		if outPath != dstRootAbs && !strings.HasPrefix(outPath, dstRootAbs+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: %s", ErrExtractPathOutsideRoot, asset.Name)
		}

		relDir := filepath.Dir(relPath)
		if relDir == "." || relDir == "" {
			relDir = ""
		}

		workItems = append(workItems, extractWorkItem{
			asset:   asset,
			relPath: relPath,
			relDir:  relDir,
		})
	}

	return workItems, nil
}

// prepareExtractDirs creates all unique parent directories needed by work items.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		key := strings.ToLower(dirPath)
		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedAsset decompresses and writes one prepared work item.
func extractPreparedAsset(
	ctx context.Context,
	dstRootAbs string,
	task extractWorkItem,
	fileMode ExtractFileMode,
	onAssetDone func(asset Asset, written int64, outputPath string),
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	decompressed, err := task.asset.Decompress()
	if err != nil {
		return err
	}

	outPath := filepath.Join(dstRootAbs, task.relPath)
	file, err := openExtractFile(outPath, fileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", task.asset.Name, err)
	}

	written, writeErr := file.Write(decompressed)
	closeErr := file.Close()
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", task.asset.Name, writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.asset.Name, closeErr)
	}

	if onAssetDone != nil {
		onAssetDone(task.asset, int64(written), outPath)
	}

	return nil
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return file, nil
		}

		if !os.IsExist(err) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}
