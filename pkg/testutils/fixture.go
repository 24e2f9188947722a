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

// Package testutils builds throwaway repositories and mocks shared by the
// package tests.
package testutils

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// 📦 FixtureRepo is a non-bare repository on local disk usable as a fetch source
type FixtureRepo struct {
	Dir  string
	repo *git.Repository
}

// 🏭 NewFixtureRepo creates a repository on branch main with files committed
// as the first commit.
func NewFixtureRepo(t testing.TB, files map[string]string) *FixtureRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err, "initializing fixture repository")

	f := &FixtureRepo{Dir: dir, repo: repo}
	f.Commit(t, "initial commit", files)
	return f
}

// URL is the file:// location to hand to a fetch. Shallow fetches are
// ignored for plain local paths, so tests always go through a transport.
func (f *FixtureRepo) URL() string {
	return "file://" + filepath.ToSlash(f.Dir)
}

// Ref renders a reference to path at ref in this repository.
func (f *FixtureRepo) Ref(ref, path string) string {
	if ref == "" {
		return f.URL() + ":" + path
	}
	return f.URL() + "@" + ref + ":" + path
}

// 📝 Commit writes files into the worktree and commits them, returning the hash
func (f *FixtureRepo) Commit(t testing.TB, msg string, files map[string]string) string {
	t.Helper()

	wt, err := f.repo.Worktree()
	require.NoError(t, err, "getting worktree")

	for name, content := range files {
		full := filepath.Join(f.Dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755), "creating directory for %s", name)
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644), "writing %s", name)
		_, err = wt.Add(name)
		require.NoError(t, err, "adding %s", name)
	}

	hash, err := wt.Commit(msg, &git.CommitOptions{
		AllowEmptyCommits: len(files) == 0,
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "committing %q", msg)
	return hash.String()
}

// 🏷️ Tag creates a lightweight tag at the current head
func (f *FixtureRepo) Tag(t testing.TB, name string) string {
	t.Helper()

	head, err := f.repo.Head()
	require.NoError(t, err, "resolving head")

	_, err = f.repo.CreateTag(name, head.Hash(), nil)
	require.NoError(t, err, "creating tag %s", name)
	return head.Hash().String()
}

// AnnotatedTag creates a tag object at the current head.
func (f *FixtureRepo) AnnotatedTag(t testing.TB, name, msg string) string {
	t.Helper()

	head, err := f.repo.Head()
	require.NoError(t, err, "resolving head")

	_, err = f.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: msg,
		Tagger: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "creating annotated tag %s", name)
	return head.Hash().String()
}

// 🌿 Branch creates a branch at the current head without switching to it
func (f *FixtureRepo) Branch(t testing.TB, name string) string {
	t.Helper()

	head, err := f.repo.Head()
	require.NoError(t, err, "resolving head")

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	require.NoError(t, f.repo.Storer.SetReference(ref), "creating branch %s", name)
	return head.Hash().String()
}

// Head returns the hash main points at.
func (f *FixtureRepo) Head(t testing.TB) string {
	t.Helper()

	head, err := f.repo.Head()
	require.NoError(t, err, "resolving head")
	return head.Hash().String()
}

// RequireBinary skips the test when name is not on PATH.
func RequireBinary(t testing.TB, name string) string {
	t.Helper()

	p, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not found on PATH: %v", name, err)
	}
	return p
}

// 🔧 Context returns a context carrying a zerolog logger bound to t
func Context(t testing.TB) context.Context {
	t.Helper()

	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}
