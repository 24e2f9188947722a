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

package destination_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/git-fetch-file/pkg/destination"
	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/remote"
	"github.com/walteh/git-fetch-file/pkg/testutils"
)

func request(t *testing.T, input, dest string) remote.Request {
	t.Helper()
	req, err := remote.Parse(input)
	require.NoError(t, err)
	req.Dest = dest
	return *req
}

// listTree returns every path below root, relative to it.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(root, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != root {
			rel, _ := filepath.Rel(root, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dest     string
		wantPath string
	}{
		{name: "mirrors_repo_path", input: "repo@main:docs/guide/intro.md", wantPath: "docs/guide/intro.md"},
		{name: "top_level_file", input: "repo@main:LICENSE", wantPath: "LICENSE"},
		{name: "relative_override", input: "repo@main:docs/a.md", dest: "vendor/a.md", wantPath: "vendor/a.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			w, err := destination.New(destination.Options{OutputRoot: root, MaxBytes: destination.DefaultMaxBytes})
			require.NoError(t, err)

			res, err := w.Write(testutils.Context(t), request(t, tt.input, tt.dest), []byte("content"))
			require.NoError(t, err, "write should succeed")

			want := filepath.Join(root, filepath.FromSlash(tt.wantPath))
			assert.Equal(t, want, res.Path)
			assert.True(t, res.Wrote)
			assert.False(t, res.Simulated)

			got, err := os.ReadFile(want)
			require.NoError(t, err)
			assert.Equal(t, "content", string(got))
		})
	}
}

func TestWriteAbsoluteOverrideInsideRoot(t *testing.T) {
	root := t.TempDir()
	w, err := destination.New(destination.Options{OutputRoot: root})
	require.NoError(t, err)

	abs := filepath.Join(root, "abs", "file.txt")
	res, err := w.Write(testutils.Context(t), request(t, "repo@main:x.txt", abs), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, abs, res.Path)
	assert.FileExists(t, abs)
}

func TestWriteSkipsExisting(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0o644))

	w, err := destination.New(destination.Options{OutputRoot: root})
	require.NoError(t, err)

	res, err := w.Write(testutils.Context(t), request(t, "repo@main:a.txt", ""), []byte("new"))
	require.NoError(t, err, "an existing file is not an error")
	assert.False(t, res.Wrote)
	assert.Equal(t, existing, res.Path)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got), "content should be untouched")
}

func TestWriteOverwrite(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0o644))

	w, err := destination.New(destination.Options{OutputRoot: root, Overwrite: true})
	require.NoError(t, err)

	res, err := w.Write(testutils.Context(t), request(t, "repo@main:a.txt", ""), []byte("new"))
	require.NoError(t, err)
	assert.True(t, res.Wrote)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	assert.Equal(t, []string{"a.txt"}, listTree(t, root), "no temp files left behind")
}

func TestWriteSimulate(t *testing.T) {
	root := t.TempDir()
	w, err := destination.New(destination.Options{OutputRoot: root, Simulate: true})
	require.NoError(t, err)

	res, err := w.Write(testutils.Context(t), request(t, "repo@main:deep/dir/a.txt", ""), []byte("x"))
	require.NoError(t, err)

	assert.True(t, res.Simulated)
	assert.False(t, res.Wrote)
	assert.Equal(t, filepath.Join(root, "deep", "dir", "a.txt"), res.Path)
	assert.Empty(t, listTree(t, root), "simulate must not create anything")
}

func TestWriteSizeCeiling(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		max     int64
		wantErr bool
	}{
		{name: "below", size: 99, max: 100},
		{name: "exactly_at_limit", size: 100, max: 100},
		{name: "one_over", size: 101, max: 100, wantErr: true},
		{name: "no_limit", size: 4096, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			w, err := destination.New(destination.Options{OutputRoot: root, MaxBytes: tt.max})
			require.NoError(t, err)

			res, err := w.Write(testutils.Context(t), request(t, "repo@main:big.bin", ""), make([]byte, tt.size))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.True(t, res.Wrote)
				return
			}

			require.Error(t, err)
			assert.Equal(t, fetcherr.CodeFileTooLarge, fetcherr.CodeOf(err))
			assert.Contains(t, err.Error(), "--max-bytes", "message should say how to raise the limit")

			var tooLarge *fetcherr.FileTooLargeError
			require.ErrorAs(t, err, &tooLarge)
			assert.Equal(t, int64(tt.size), tooLarge.Size)
			assert.Equal(t, tt.max, tooLarge.Limit)
			assert.Empty(t, listTree(t, root), "nothing written on failure")
		})
	}
}

func TestWriteContainment(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "out")
	require.NoError(t, os.Mkdir(root, 0o755))

	tests := []struct {
		name string
		dest string
	}{
		{name: "relative_escape", dest: "../escaped.txt"},
		{name: "deep_relative_escape", dest: "a/../../../escaped.txt"},
		{name: "absolute_outside", dest: filepath.Join(parent, "escaped.txt")},
		{name: "sibling_with_common_prefix", dest: filepath.Join(parent, "out2", "escaped.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := destination.New(destination.Options{OutputRoot: root, Overwrite: true})
			require.NoError(t, err)

			_, err = w.Write(testutils.Context(t), request(t, "repo@main:a.txt", tt.dest), []byte("x"))
			require.Error(t, err)
			assert.Equal(t, fetcherr.CodeDestOutOfBounds, fetcherr.CodeOf(err))

			assert.Equal(t, []string{"out"}, listTree(t, parent), "no filesystem mutation on violation")
		})
	}
}

func TestWriteContainmentThroughSymlink(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "out")
	outside := filepath.Join(parent, "elsewhere")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.Mkdir(outside, 0o755))
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	w, err := destination.New(destination.Options{OutputRoot: root})
	require.NoError(t, err)

	_, err = w.Write(testutils.Context(t), request(t, "repo@main:link/a.txt", ""), []byte("x"))
	require.Error(t, err)
	assert.Equal(t, fetcherr.CodeDestOutOfBounds, fetcherr.CodeOf(err))
	assert.NoFileExists(t, filepath.Join(outside, "a.txt"))
}

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a", "b", "c.json")

	require.NoError(t, destination.WriteFileAtomic(path, []byte("{}\n"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
