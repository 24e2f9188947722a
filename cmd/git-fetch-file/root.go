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

package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/config"
	"github.com/walteh/git-fetch-file/pkg/log"
	"github.com/walteh/git-fetch-file/pkg/operation"
	"github.com/walteh/git-fetch-file/pkg/provider"
)

// envDefaults maps flags to the environment variables that supply their
// default. A flag given on the command line always wins.
var envDefaults = []struct {
	flag string
	env  string
}{
	{"output", "GIT_FETCH_FILE_OUTPUT"},
	{"manifest", "GIT_FETCH_FILE_MANIFEST"},
	{"max-bytes", "GIT_FETCH_FILE_MAX_BYTES"},
	{"timeout", "GIT_FETCH_FILE_TIMEOUT"},
	{"retries", "GIT_FETCH_FILE_RETRIES"},
	{"backoff", "GIT_FETCH_FILE_BACKOFF"},
}

// rootFlags holds everything the command line can set
type rootFlags struct {
	opts       operation.Options
	configFile string
	envFile    string
	jsonOutput bool

	stdout io.Writer
	stderr io.Writer
}

func newRootFlags(stdout, stderr io.Writer) *rootFlags {
	return &rootFlags{
		opts:   operation.DefaultOptions(),
		stdout: stdout,
		stderr: stderr,
	}
}

// 🌳 newRootCmd builds the command tree
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return newRootFlags(stdout, stderr).command()
}

func (f *rootFlags) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git-fetch-file [flags] [repo[@ref]:path ...]",
		Short: "Fetch single files from git repositories at a pinned revision",
		Long: `git-fetch-file retrieves one file per reference from a remote git
repository without cloning it, writes it under the output directory and
records where it came from in a manifest.

A reference has the form repo[@ref]:path. The ref defaults to main.
References can also be listed in a JSON, YAML or HCL file given with --config.`,
		Example: `  git-fetch-file https://github.com/org/repo.git@v1.2.0:LICENSE
  git-fetch-file --output vendor --config refs.yaml
  git-fetch-file --simulate --json git@github.com:org/repo.git:docs/guide.md`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return f.applyEnvDefaults(cmd.Flags())
		},
		RunE: f.runFetch,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.opts.OutputRoot, "output", "o", f.opts.OutputRoot, "directory fetched files are written under")
	pf.StringVar(&f.opts.ManifestPath, "manifest", "", "manifest file (default <output>/.git-fetch-file.json)")
	pf.BoolVar(&f.jsonOutput, "json", false, "print results as JSON on stdout")
	pf.StringVar(&f.envFile, "env-file", "", "read GIT_FETCH_FILE_* defaults from this dotenv file")

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "JSON, YAML or HCL file listing references")
	fl.Int64Var(&f.opts.MaxBytes, "max-bytes", f.opts.MaxBytes, "largest file accepted, in bytes")
	fl.DurationVar(&f.opts.Timeout, "timeout", f.opts.Timeout, "timeout for each git invocation")
	fl.IntVar(&f.opts.Retries, "retries", f.opts.Retries, "extra attempts for each failing git step")
	fl.DurationVar(&f.opts.Backoff, "backoff", f.opts.Backoff, "first wait between attempts, doubled each time")
	fl.BoolVar(&f.opts.Simulate, "simulate", false, "resolve and report without writing anything")
	fl.BoolVar(&f.opts.Overwrite, "overwrite", false, "replace files that already exist")
	fl.BoolVar(&f.opts.SkipManifest, "skip-manifest", false, "do not record fetches in the manifest")
	fl.BoolVarP(&f.opts.Quiet, "quiet", "q", false, "only report failures")
	fl.BoolVarP(&f.opts.Verbose, "verbose", "v", false, "log every git invocation")
	fl.IntVarP(&f.opts.Jobs, "jobs", "j", f.opts.Jobs, "references fetched at once")
	fl.StringVar(&f.opts.Backend, "backend", f.opts.Backend, "git backend, one of "+backendList())
	fl.StringVar(&f.opts.GitBinary, "git", "", "git executable used by the exec backend")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	cmd.AddCommand(
		newManifestCmd(f),
		newVersionCmd(f),
	)

	return cmd
}

func backendList() string {
	return strings.Join(provider.Names(), "|")
}

// 🌱 applyEnvDefaults fills unset flags from the environment, then from
// --env-file. Process variables take precedence over the file.
func (f *rootFlags) applyEnvDefaults(flags *pflag.FlagSet) error {
	fileEnv := map[string]string{}
	if f.envFile != "" {
		read, err := godotenv.Read(f.envFile)
		if err != nil {
			return usageError(errors.Errorf("reading env file %s: %w", f.envFile, err))
		}
		fileEnv = read
	}

	for _, d := range envDefaults {
		fl := flags.Lookup(d.flag)
		if fl == nil || fl.Changed {
			continue
		}
		value, ok := os.LookupEnv(d.env)
		if !ok {
			value, ok = fileEnv[d.env]
		}
		if !ok || value == "" {
			continue
		}
		if err := fl.Value.Set(value); err != nil {
			return usageError(errors.Errorf("invalid %s=%q: %w", d.env, value, err))
		}
	}
	return nil
}

// logger builds the stderr zerolog sink at the level the flags ask for.
func (f *rootFlags) logger() zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case f.opts.Verbose:
		level = zerolog.DebugLevel
	case f.opts.Quiet:
		level = zerolog.WarnLevel
	}
	return log.NewZerolog(f.stderr, level)
}

// console is where per-item lines and the summary go. With --json stdout
// belongs to the JSON document.
func (f *rootFlags) console(zlog zerolog.Logger) *log.Logger {
	if f.jsonOutput {
		return log.New(f.stderr, zlog)
	}
	return log.New(f.stdout, zlog)
}

// entries loads --config, then appends the positional references.
func (f *rootFlags) entries(ctx context.Context, args []string) ([]config.Entry, error) {
	var out []config.Entry
	if f.configFile != "" {
		loaded, err := config.LoadConfig(ctx, f.configFile)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded...)
	}
	for _, arg := range args {
		out = append(out, config.Entry{Input: arg})
	}
	if len(out) == 0 {
		return nil, errors.New("no references given: pass repo[@ref]:path arguments or --config")
	}
	return out, nil
}

// 🚀 runFetch is the root command
func (f *rootFlags) runFetch(cmd *cobra.Command, args []string) error {
	zlog := f.logger()
	console := f.console(zlog)
	ctx := log.NewContext(zlog.WithContext(cmd.Context()), console)

	entries, err := f.entries(ctx, args)
	if err != nil {
		return usageError(err)
	}

	runner, err := operation.NewRunner(ctx, f.opts)
	if err != nil {
		return usageError(err)
	}

	if f.opts.Simulate && !f.opts.Quiet {
		console.Warning("simulate: nothing will be written to " + f.opts.OutputRoot)
	}

	report := runner.Run(ctx, entries)

	if f.jsonOutput {
		enc := json.NewEncoder(f.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Errorf("encoding results: %w", err)
		}
	} else if !f.opts.Quiet || report.Failed() {
		console.Summary(report.Operations())
	}

	if report.Failed() {
		return &exitError{code: exitFailed, silent: true}
	}
	return nil
}
