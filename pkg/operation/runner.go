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
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/git-fetch-file/pkg/config"
	"github.com/walteh/git-fetch-file/pkg/destination"
	"github.com/walteh/git-fetch-file/pkg/log"
	"github.com/walteh/git-fetch-file/pkg/manifest"
	"github.com/walteh/git-fetch-file/pkg/provider"
	"github.com/walteh/git-fetch-file/pkg/remote"

	// backends register themselves by name
	_ "github.com/walteh/git-fetch-file/pkg/provider/gitexec"
	_ "github.com/walteh/git-fetch-file/pkg/provider/gogit"
)

// 🏃 Runner fetches a list of references
type Runner struct {
	opts    Options
	engine  *provider.Engine
	writer  *destination.Writer
	store   *manifest.Store
	console *log.Logger
}

// 🏗️ NewRunner creates a runner using the backend named in opts. Per-item
// lines go to the console logger carried by ctx, if any.
func NewRunner(ctx context.Context, opts Options) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}
	git, err := provider.New(ctx, opts.Backend, provider.FactoryOptions{GitBinary: opts.GitBinary})
	if err != nil {
		return nil, err
	}
	return NewRunnerWithGit(ctx, opts, git)
}

// 🏗️ NewRunnerWithGit creates a runner over an explicit backend
func NewRunnerWithGit(ctx context.Context, opts Options, git provider.Git) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}

	writer, err := destination.New(destination.Options{
		OutputRoot: opts.OutputRoot,
		MaxBytes:   opts.MaxBytes,
		Overwrite:  opts.Overwrite,
		Simulate:   opts.Simulate,
	})
	if err != nil {
		return nil, err
	}

	retrier := provider.NewRetrier(provider.RetryOptions{
		Timeout: opts.Timeout,
		Retries: opts.Retries,
		Backoff: opts.Backoff,
	})

	return &Runner{
		opts:    opts,
		engine:  provider.NewEngine(git, retrier),
		writer:  writer,
		store:   manifest.New(opts.ResolvedManifestPath()),
		console: log.FromContext(ctx),
	}, nil
}

// 🏃 Run fetches every entry and returns one result per entry, in order.
// A failing entry never stops the others.
func (r *Runner) Run(ctx context.Context, entries []config.Entry) *Report {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().
		Int("entries", len(entries)).
		Int("jobs", r.opts.Jobs).
		Str("output", r.writer.Root()).
		Bool("simulate", r.opts.Simulate).
		Msg("starting run")

	rec := newRecorder(r.store)
	defer rec.close()

	results := make([]FetchResult, len(entries))

	// a plain group: one failure must not cancel the rest
	var g errgroup.Group
	g.SetLimit(r.opts.Jobs)
	for i, entry := range entries {
		g.Go(func() error {
			results[i] = r.fetch(ctx, entry, rec)
			r.show(results[i])
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Results: results}
	logger.Debug().Int("failed", report.FailedCount()).Int("total", len(results)).Msg("run complete")
	return report
}

func (r *Runner) show(res FetchResult) {
	if r.opts.Quiet && res.Success {
		return
	}
	r.console.LogFetch(res.operation())
}

// 📥 fetch runs parse, retrieve, write and record for one entry inside its
// own scratch directory.
func (r *Runner) fetch(ctx context.Context, entry config.Entry, rec *recorder) (res FetchResult) {
	scratch, err := os.MkdirTemp(r.opts.ScratchDir, "git-fetch-file-*")
	if err != nil {
		return failure(entry.Input, errors.Errorf("creating scratch directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("scratch", scratch).Msg("removing scratch directory")
		}
	}()

	defer func() {
		if p := recover(); p != nil {
			res = failure(entry.Input, errors.Errorf("panic while fetching: %v", p))
		}
	}()

	req, err := remote.Parse(entry.Input)
	if err != nil {
		return failure(entry.Input, err)
	}
	req.Dest = entry.Dest

	got, err := r.engine.Retrieve(ctx, *req, scratch)
	if err != nil {
		return failure(entry.Input, err)
	}
	req.CommitSha = got.Commit

	placed, err := r.writer.Write(ctx, *req, got.Content)
	if err != nil {
		return failure(entry.Input, err)
	}

	if placed.Wrote && r.opts.recordsManifest() {
		if err := rec.record(ctx, manifest.EntryFor(*req)); err != nil {
			return failure(entry.Input, errors.Errorf("recording manifest entry: %w", err))
		}
	}

	shown := *req
	shown.Repo = req.RedactedRepo()

	return FetchResult{
		Input:     remote.Redact(entry.Input),
		Success:   true,
		DestFile:  placed.Path,
		Remote:    &shown,
		Wrote:     placed.Wrote,
		Simulated: placed.Simulated,
	}
}
