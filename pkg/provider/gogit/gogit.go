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

// Package gogit implements provider.Git in-process with go-git.
//
// Refs are resolved as a branch first and then as a tag. Bare commit ids
// are not fetchable through this backend; use the exec backend for those.
package gogit

import (
	"context"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/provider"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// Name is the key this backend registers under.
const Name = "go-git"

// fetchedRef plays the part of FETCH_HEAD; go-git has no such file.
const fetchedRef = plumbing.ReferenceName("refs/git-fetch-file/fetched")

func init() {
	provider.Register(Name, func(ctx context.Context, opts provider.FactoryOptions) (provider.Git, error) {
		return New(), nil
	})
}

var _ provider.Git = (*Git)(nil)

// 🔧 Git runs every primitive through go-git
type Git struct{}

// 🏭 New creates a new go-git backend
func New() *Git {
	return &Git{}
}

func (g *Git) Init(ctx context.Context, dir string) error {
	if _, err := git.PlainInit(dir, true); err != nil {
		return errors.Errorf("initializing repository: %w", err)
	}
	return nil
}

func (g *Git) AddRemote(ctx context.Context, dir, name, url string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Errorf("opening repository: %w", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		return errors.Errorf("adding remote %s: %s", name, remote.Redact(err.Error()))
	}
	return nil
}

func (g *Git) Fetch(ctx context.Context, dir, remoteName, ref string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Errorf("opening repository: %w", err)
	}

	var lastErr error
	for _, src := range candidateRefs(ref) {
		spec := config.RefSpec("+" + src.String() + ":" + fetchedRef.String())
		zerolog.Ctx(ctx).Debug().Str("refspec", spec.String()).Msg("go-git fetch")

		err := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: remoteName,
			RefSpecs:   []config.RefSpec{spec},
			Depth:      1,
			Tags:       git.NoTags,
			Force:      true,
		})
		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}

		var noMatch git.NoMatchingRefSpecError
		if !errors.As(err, &noMatch) {
			return errors.Errorf("fetching %s: %s", ref, remote.Redact(err.Error()))
		}
		lastErr = err
	}
	return errors.Errorf("couldn't find remote ref %s: %s", ref, remote.Redact(lastErr.Error()))
}

// candidateRefs lists the full names ref may stand for, most likely first.
func candidateRefs(ref string) []plumbing.ReferenceName {
	if strings.HasPrefix(ref, "refs/") {
		return []plumbing.ReferenceName{plumbing.ReferenceName(ref)}
	}
	return []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewTagReferenceName(ref),
	}
}

func (g *Git) ResolveHead(ctx context.Context, dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", errors.Errorf("opening repository: %w", err)
	}

	ref, err := repo.Reference(fetchedRef, true)
	if err != nil {
		return "", errors.Errorf("resolving fetched head: %w", err)
	}

	hash := ref.Hash()
	// annotated tags point at a tag object, peel it
	if tag, err := repo.TagObject(hash); err == nil {
		commit, err := tag.Commit()
		if err != nil {
			return "", errors.Errorf("peeling tag %s: %w", tag.Name, err)
		}
		hash = commit.Hash
	}
	return hash.String(), nil
}

func (g *Git) ReadBlob(ctx context.Context, dir, commitID, path string) ([]byte, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, errors.Errorf("opening repository: %w", err)
	}

	commit, err := repo.CommitObject(plumbing.NewHash(commitID))
	if err != nil {
		return nil, errors.Errorf("loading commit %s: %w", commitID, err)
	}

	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, errors.Errorf("%s at %s: %w", path, commitID, provider.ErrPathNotFound)
		}
		return nil, errors.Errorf("reading %s at %s: %w", path, commitID, err)
	}

	r, err := file.Reader()
	if err != nil {
		return nil, errors.Errorf("opening blob %s: %w", file.Hash, err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading blob %s: %w", file.Hash, err)
	}
	return content, nil
}
