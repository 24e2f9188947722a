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

// Package gitexec implements provider.Git by running the git executable.
package gitexec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/provider"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// Name is the key this backend registers under.
const Name = "exec"

func init() {
	provider.Register(Name, func(ctx context.Context, opts provider.FactoryOptions) (provider.Git, error) {
		return New(opts.GitBinary)
	})
}

// waitDelay bounds how long run waits for output pipes after a kill
const waitDelay = time.Second

var _ provider.Git = (*Git)(nil)

// 🔧 Git shells out to a git binary
type Git struct {
	bin string
}

// 🏭 New resolves bin on PATH ("git" when empty) and returns a backend using it
func New(bin string) (*Git, error) {
	if bin == "" {
		bin = "git"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, errors.Errorf("looking up git executable %q: %w", bin, err)
	}
	return &Git{bin: resolved}, nil
}

func (g *Git) Init(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "init", "-q")
	return err
}

func (g *Git) AddRemote(ctx context.Context, dir, name, url string) error {
	_, err := g.run(ctx, dir, "remote", "add", name, url)
	return err
}

func (g *Git) Fetch(ctx context.Context, dir, remoteName, ref string) error {
	_, err := g.run(ctx, dir, "fetch", "--depth", "1", "--no-tags", remoteName, ref)
	return err
}

func (g *Git) ResolveHead(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "FETCH_HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *Git) ReadBlob(ctx context.Context, dir, commit, path string) ([]byte, error) {
	out, err := g.run(ctx, dir, "cat-file", "blob", commit+":"+path)
	if err != nil {
		var cmdErr *commandError
		if errors.As(err, &cmdErr) && isNotFound(cmdErr.stderr, commit+":"+path) {
			return nil, errors.Errorf("%s at %s: %w", path, commit, provider.ErrPathNotFound)
		}
		return nil, err
	}
	return out, nil
}

// commandError carries redacted stderr of a failed invocation.
type commandError struct {
	args   string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	if e.stderr == "" {
		return "git " + e.args + ": " + e.err.Error()
	}
	return "git " + e.args + ": " + e.err.Error() + ": " + e.stderr
}

func (e *commandError) Unwrap() error { return e.err }

// run executes git with dir as its working directory and returns stdout.
func (g *Git) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	redactedArgs := remote.Redact(strings.Join(args, " "))
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Str("args", redactedArgs).Msg("running git")

	cmd := exec.CommandContext(ctx, g.bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	// helpers like git-remote-https and ssh share our pipes, so the whole
	// process group goes down on cancel
	killProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Errorf("%s: %w", err.Error(), ctxErr)
		}
		return nil, &commandError{
			args:   redactedArgs,
			stderr: remote.Redact(strings.TrimSpace(stderr.String())),
			err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// isNotFound reports whether stderr from "cat-file blob <object>" says the
// path is missing from the commit's tree, as opposed to any other failure.
func isNotFound(stderr, object string) bool {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "path '") && strings.Contains(lower, "' does not exist in"):
		return true
	case strings.Contains(lower, "path '") && strings.Contains(lower, "' exists on disk, but not in"):
		return true
	case object != "" && strings.Contains(lower, "not a valid object name "+strings.ToLower(object)):
		return true
	}
	return false
}
