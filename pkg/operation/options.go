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

package operation

import (
	"path/filepath"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/destination"
	"github.com/walteh/git-fetch-file/pkg/manifest"
	"github.com/walteh/git-fetch-file/pkg/provider/gitexec"
)

// 🔧 Options is the whole configuration of a run, built once by the caller
type Options struct {
	// OutputRoot is where fetched files land
	OutputRoot string
	// ManifestPath defaults to <OutputRoot>/.git-fetch-file.json
	ManifestPath string
	// MaxBytes is the largest file accepted
	MaxBytes int64

	// Timeout bounds each git invocation
	Timeout time.Duration
	// Retries is the number of extra attempts per git step
	Retries int
	// Backoff is the first wait between attempts; it doubles each time
	Backoff time.Duration

	Simulate     bool
	Overwrite    bool
	SkipManifest bool
	Quiet        bool
	Verbose      bool

	// Jobs is the number of references fetched at once
	Jobs int
	// Backend names the provider.Git implementation
	Backend string
	// GitBinary is the git executable for the exec backend
	GitBinary string
	// ScratchDir is where per-item scratch directories are made; empty
	// means the system temp dir
	ScratchDir string
}

// 🏭 DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		OutputRoot: ".",
		MaxBytes:   destination.DefaultMaxBytes,
		Timeout:    60 * time.Second,
		Retries:    2,
		Backoff:    500 * time.Millisecond,
		Jobs:       1,
		Backend:    gitexec.Name,
	}
}

// ResolvedManifestPath is ManifestPath, or the default file inside OutputRoot.
func (o Options) ResolvedManifestPath() string {
	if o.ManifestPath != "" {
		return o.ManifestPath
	}
	return filepath.Join(o.OutputRoot, manifest.DefaultFileName)
}

// recordsManifest reports whether successful writes are appended.
func (o Options) recordsManifest() bool {
	return !o.Simulate && !o.SkipManifest
}

// ✅ Validate rejects settings no run could honor
func (o Options) Validate() error {
	switch {
	case o.OutputRoot == "":
		return errors.New("output root is required")
	case o.MaxBytes <= 0:
		return errors.Errorf("max bytes must be positive, got %d", o.MaxBytes)
	case o.Timeout <= 0:
		return errors.Errorf("timeout must be positive, got %s", o.Timeout)
	case o.Retries < 0:
		return errors.Errorf("retries must not be negative, got %d", o.Retries)
	case o.Backoff < 0:
		return errors.Errorf("backoff must not be negative, got %s", o.Backoff)
	case o.Jobs < 1:
		return errors.Errorf("jobs must be at least 1, got %d", o.Jobs)
	case o.Quiet && o.Verbose:
		return errors.New("quiet and verbose are mutually exclusive")
	}
	return nil
}
