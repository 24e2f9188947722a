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

// Package manifest keeps the provenance record of fetched files: a JSON
// array that only ever grows by appending.
package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/destination"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// DefaultFileName is the manifest file name inside the output root.
const DefaultFileName = ".git-fetch-file.json"

const (
	lockTimeout  = 10 * time.Second
	lockInterval = 50 * time.Millisecond
)

// 📦 Entry is one recorded fetch
type Entry struct {
	Repo      string `json:"repo"`
	Ref       string `json:"ref"`
	FilePath  string `json:"filePath"`
	DestPath  string `json:"destPath"`
	CommitSha string `json:"commitSha"`
	Comment   string `json:"comment,omitempty"`
}

// EntryFor builds the manifest entry for a fetched request. The repo is
// stored redacted so credentials never reach disk.
func EntryFor(req remote.Request) Entry {
	return Entry{
		Repo:      req.RedactedRepo(),
		Ref:       req.Ref,
		FilePath:  req.FilePath,
		DestPath:  req.DestPath,
		CommitSha: req.CommitSha,
	}
}

// 💾 Store reads and appends to one manifest file
type Store struct {
	path string
	mu   sync.Mutex
}

// 🏭 New creates a store for the manifest at path
func New(path string) *Store {
	return &Store{path: path}
}

// Path is the manifest file location.
func (s *Store) Path() string {
	return s.path
}

// 📂 Load returns every entry in file order. A missing, unreadable or
// malformed manifest reads as empty.
func (s *Store) Load(ctx context.Context) []Entry {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("manifest", s.path).Msg("unreadable manifest, treating as empty")
		}
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn().Err(err).Str("manifest", s.path).Msg("malformed manifest, treating as empty")
		return []Entry{}
	}
	if entries == nil {
		return []Entry{}
	}
	return entries
}

// 📝 Append adds e to the end of the manifest and rewrites the file.
//
// The read-modify-write holds both an in-process mutex and a lock file
// next to the manifest, so concurrent runs never lose each other's entries.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Errorf("creating manifest directory: %w", err)
	}

	fileLock := flock.New(s.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockInterval)
	if err != nil {
		return errors.Errorf("acquiring manifest lock: %w", err)
	}
	if !locked {
		return errors.Errorf("acquiring manifest lock: timeout after %v", lockTimeout)
	}
	defer func() { _ = fileLock.Unlock() }()

	entries := append(s.Load(ctx), e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	if err := destination.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return errors.Errorf("writing manifest: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("manifest", s.path).
		Str("path", e.FilePath).
		Str("commit", e.CommitSha).
		Int("entries", len(entries)).
		Msg("recorded fetch")
	return nil
}

// List is Load for callers that only display the manifest.
func (s *Store) List(ctx context.Context) []Entry {
	return s.Load(ctx)
}

// 🔍 Filter keeps the entries whose file path matches a doublestar pattern.
// An empty pattern keeps everything.
func Filter(entries []Entry, pattern string) ([]Entry, error) {
	if pattern == "" {
		return entries, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid match pattern %q", pattern)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		ok, err := doublestar.Match(pattern, e.FilePath)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}
