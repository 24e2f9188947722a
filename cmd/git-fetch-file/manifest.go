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
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/manifest"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// 📜 newManifestCmd groups commands that read the manifest
func newManifestCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect the fetch manifest",
	}
	cmd.AddCommand(newManifestListCmd(f))
	return cmd
}

func newManifestListCmd(f *rootFlags) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded fetches",
		Long: `List prints every entry of the manifest in the order it was recorded.
With --match only entries whose file path matches the glob are shown;
"**" crosses directories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			zlog := f.logger()
			ctx := zlog.WithContext(cmd.Context())

			store := manifest.New(f.opts.ResolvedManifestPath())
			entries, err := manifest.Filter(store.List(ctx), match)
			if err != nil {
				return usageError(err)
			}

			for i := range entries {
				entries[i].Repo = remote.Redact(entries[i].Repo)
			}

			if f.jsonOutput {
				enc := json.NewEncoder(f.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(entries); err != nil {
					return errors.Errorf("encoding manifest entries: %w", err)
				}
				return nil
			}

			if len(entries) == 0 {
				f.console(zlog).Infof("no entries in %s", store.Path())
				return nil
			}

			data := pterm.TableData{{"file", "repo", "ref", "commit", "dest"}}
			for _, e := range entries {
				commit := e.CommitSha
				if len(commit) > 12 {
					commit = commit[:12]
				}
				data = append(data, []string{e.FilePath, e.Repo, e.Ref, commit, e.DestPath})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering manifest table: %w", err)
			}
			fmt.Fprintln(f.stdout, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "only show entries whose file path matches this glob")
	return cmd
}
