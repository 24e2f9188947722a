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

package provider

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// RemoteName is the name the engine registers the source repository under.
const RemoteName = "origin"

// 📦 Retrieved is the outcome of one successful retrieval
type Retrieved struct {
	Content []byte
	Commit  string
}

// 🎯 Engine sequences the shallow-retrieval primitives of a Git backend
type Engine struct {
	git     Git
	retrier *Retrier
}

// 🏭 NewEngine creates a new engine
func NewEngine(git Git, retrier *Retrier) *Engine {
	return &Engine{git: git, retrier: retrier}
}

// 📥 Retrieve fetches req.FilePath at req.Ref from req.Repo into scratch and
// returns its bytes along with the commit the ref resolved to.
//
// scratch must be an empty directory private to this call.
func (e *Engine) Retrieve(ctx context.Context, req remote.Request, scratch string) (*Retrieved, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("repo", req.RedactedRepo()).
		Str("ref", req.Ref).
		Str("path", req.FilePath).
		Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Str("scratch", scratch).Msg("initializing scratch repository")
	if err := Do(ctx, e.retrier, "init", func(ctx context.Context) error {
		return e.git.Init(ctx, scratch)
	}); err != nil {
		return nil, err
	}

	if err := Do(ctx, e.retrier, "remote add", func(ctx context.Context) error {
		return e.git.AddRemote(ctx, scratch, RemoteName, req.Repo)
	}); err != nil {
		return nil, err
	}

	logger.Debug().Msg("fetching ref")
	if err := Do(ctx, e.retrier, "fetch", func(ctx context.Context) error {
		return e.git.Fetch(ctx, scratch, RemoteName, req.Ref)
	}); err != nil {
		return nil, err
	}

	commit, err := Run(ctx, e.retrier, "rev-parse", func(ctx context.Context) (string, error) {
		return e.git.ResolveHead(ctx, scratch)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("commit", commit).Msg("resolved ref")

	content, err := Run(ctx, e.retrier, "cat-file", func(ctx context.Context) ([]byte, error) {
		return e.git.ReadBlob(ctx, scratch, commit, req.FilePath)
	})
	if err != nil {
		if errors.Is(err, ErrPathNotFound) {
			return nil, &fetcherr.SourceFileNotFoundError{
				Repo: req.RedactedRepo(),
				Ref:  req.Ref,
				Path: req.FilePath,
				Err:  err,
			}
		}
		return nil, err
	}

	logger.Debug().Int("bytes", len(content)).Msg("read blob")
	return &Retrieved{Content: content, Commit: commit}, nil
}
