// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package destination places retrieved content under an output root.
package destination

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// DefaultMaxBytes is the size ceiling used when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// 📝 Options configures a Writer
type Options struct {
	OutputRoot string
	// MaxBytes is the largest accepted content; zero or less disables the check.
	MaxBytes  int64
	Overwrite bool
	Simulate  bool
}

// 📦 Result describes where content went
type Result struct {
	Path      string
	Wrote     bool
	Simulated bool
}

// 💾 Writer places content under a fixed output root
type Writer struct {
	root string
	opts Options
}

// 🏭 New creates a new writer rooted at opts.OutputRoot
func New(opts Options) (*Writer, error) {
	root, err := filepath.Abs(opts.OutputRoot)
	if err != nil {
		return nil, errors.Errorf("resolving output root: %w", err)
	}
	return &Writer{root: root, opts: opts}, nil
}

// Root is the absolute output root.
func (w *Writer) Root() string {
	return w.root
}

// 🎯 Resolve computes the absolute destination for req and checks that it
// stays inside the output root. It never touches the filesystem beyond
// reading existing symlinks.
func (w *Writer) Resolve(req remote.Request) (string, error) {
	var dest string
	switch {
	case req.Dest != "" && filepath.IsAbs(req.Dest):
		dest = filepath.Clean(req.Dest)
	case req.Dest != "":
		dest = filepath.Join(w.root, req.Dest)
	default:
		dest = filepath.Join(w.root, req.DestPath)
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", errors.Errorf("resolving destination: %w", err)
	}

	realRoot, err := resolveExistingPath(w.root)
	if err != nil {
		return "", errors.Errorf("resolving output root: %w", err)
	}
	realDest, err := resolveExistingPath(dest)
	if err != nil {
		return "", errors.Errorf("resolving destination: %w", err)
	}

	if !within(realRoot, realDest) {
		return "", &fetcherr.DestOutOfBoundsError{Dest: dest, Root: w.root}
	}
	return dest, nil
}

// 📥 Write places content at the destination for req.
//
// An existing destination is left alone unless Overwrite is set; that is a
// skip, not a failure. In simulate mode nothing is created.
func (w *Writer) Write(ctx context.Context, req remote.Request, content []byte) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	dest, err := w.Resolve(req)
	if err != nil {
		return nil, err
	}

	if size := int64(len(content)); w.opts.MaxBytes > 0 && size > w.opts.MaxBytes {
		return nil, &fetcherr.FileTooLargeError{Path: req.FilePath, Size: size, Limit: w.opts.MaxBytes}
	}

	if !w.opts.Overwrite {
		exists, err := fileExists(dest)
		if err != nil {
			return nil, err
		}
		if exists {
			logger.Warn().Str("dest", dest).Msg("destination exists, skipping (use --overwrite to replace)")
			return &Result{Path: dest}, nil
		}
	}

	logger.Info().
		Str("repo", req.RedactedRepo()).
		Str("ref", req.Ref).
		Str("path", req.FilePath).
		Str("dest", dest).
		Bool("simulate", w.opts.Simulate).
		Msg("placing file")

	if w.opts.Simulate {
		return &Result{Path: dest, Simulated: true}, nil
	}

	if err := WriteFileAtomic(dest, content, 0o644); err != nil {
		return nil, err
	}
	return &Result{Path: dest, Wrote: true}, nil
}

// 💾 WriteFileAtomic creates the parent directories of path and replaces
// path with content through a temp file in the same directory.
func WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return errors.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

func within(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

// resolveExistingPath resolves symlinks in the longest existing prefix of
// path and appends the rest unchanged.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
