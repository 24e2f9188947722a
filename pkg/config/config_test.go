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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing source file")
	return path
}

func TestLoadConfig(t *testing.T) {
	want := []Entry{
		{Input: "https://example.com/a.git@v1:LICENSE"},
		{Input: "https://example.com/b.git@main:docs/README.md", Dest: "third_party/README.md"},
		{Input: "https://example.com/c.git@dev:x.txt"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "refs.json",
			content: `[
  "https://example.com/a.git@v1:LICENSE",
  {"repo": "https://example.com/b.git", "path": "docs/README.md", "dest": "third_party/README.md"},
  {"repo": "https://example.com/c.git", "ref": "dev", "path": "x.txt"}
]`,
		},
		{
			name: "json_unknown_extension",
			file: "refs.list",
			content: `["https://example.com/a.git@v1:LICENSE",
{"repo": "https://example.com/b.git", "path": "docs/README.md", "dest": "third_party/README.md"},
{"repo": "https://example.com/c.git", "ref": "dev", "path": "x.txt"}]`,
		},
		{
			name: "yaml",
			file: "refs.yaml",
			content: `- https://example.com/a.git@v1:LICENSE
- repo: https://example.com/b.git
  path: docs/README.md
  dest: third_party/README.md
- repo: https://example.com/c.git
  ref: dev
  path: x.txt
`,
		},
		{
			name: "yml",
			file: "refs.yml",
			content: `- "https://example.com/a.git@v1:LICENSE"
- {repo: "https://example.com/b.git", path: docs/README.md, dest: third_party/README.md}
- {repo: "https://example.com/c.git", ref: dev, path: x.txt}
`,
		},
		{
			name: "hcl",
			file: "refs.hcl",
			content: `refs = ["https://example.com/a.git@v1:LICENSE"]

fetch {
  repo = "https://example.com/b.git"
  ref  = default_ref
  path = "docs/README.md"
  dest = "third_party/README.md"
}

fetch {
  repo = "https://example.com/c.git"
  ref  = "dev"
  path = "x.txt"
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestLogger(t)
			path := writeSource(t, tt.file, tt.content)

			got, err := LoadConfig(ctx, path)
			require.NoError(t, err, "loading should succeed")
			assert.Equal(t, want, got, "entries should be normalized in file order")
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode fetcherr.Code
	}{
		{name: "json_syntax", file: "a.json", content: `["x", `, wantCode: fetcherr.CodeConfigParseError},
		{name: "json_object_top_level", file: "a.json", content: `{"repo": "x"}`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "json_number_entry", file: "a.json", content: `["repo@main:a", 42]`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "json_array_entry", file: "a.json", content: `[["nested"]]`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "json_unknown_field", file: "a.json", content: `[{"repo": "r", "path": "p", "branch": "x"}]`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "json_missing_path", file: "a.json", content: `[{"repo": "r"}]`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "json_missing_repo", file: "a.json", content: `[{"path": "p"}]`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "json_wrong_field_type", file: "a.json", content: `[{"repo": "r", "path": 3}]`, wantCode: fetcherr.CodeConfigInvalid},
		{name: "yaml_syntax", file: "a.yaml", content: "- [unclosed\n", wantCode: fetcherr.CodeConfigParseError},
		{name: "yaml_mapping_top_level", file: "a.yaml", content: "repo: x\n", wantCode: fetcherr.CodeConfigInvalid},
		{name: "yaml_empty", file: "a.yaml", content: "", wantCode: fetcherr.CodeConfigInvalid},
		{name: "yaml_number_entry", file: "a.yaml", content: "- 12\n", wantCode: fetcherr.CodeConfigInvalid},
		{name: "yaml_unknown_field", file: "a.yaml", content: "- repo: r\n  path: p\n  extra: 1\n", wantCode: fetcherr.CodeConfigInvalid},
		{name: "hcl_syntax", file: "a.hcl", content: "fetch {\n", wantCode: fetcherr.CodeConfigParseError},
		{name: "hcl_missing_path", file: "a.hcl", content: "fetch {\n  repo = \"r\"\n}\n", wantCode: fetcherr.CodeConfigInvalid},
		{name: "hcl_unknown_block", file: "a.hcl", content: "copy {\n}\n", wantCode: fetcherr.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestLogger(t)
			path := writeSource(t, tt.file, tt.content)

			got, err := LoadConfig(ctx, path)
			require.Error(t, err, "loading should fail")
			assert.Nil(t, got)
			assert.Equal(t, tt.wantCode, fetcherr.CodeOf(err), "error code should match: %v", err)
		})
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	ctx := setupTestLogger(t)

	_, err := LoadConfig(ctx, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, fetcherr.CodeConfigNotFound, fetcherr.CodeOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigEmptyList(t *testing.T) {
	ctx := setupTestLogger(t)

	got, err := LoadConfig(ctx, writeSource(t, "a.json", "[]"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConfigInvalidNamesEntry(t *testing.T) {
	ctx := setupTestLogger(t)

	_, err := LoadConfig(ctx, writeSource(t, "a.json", `["ok@main:a", {"repo": "r"}]`))
	require.Error(t, err)

	var invalid *fetcherr.ConfigInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index, "the second entry is the bad one")
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("x.json", []Item{
		{Raw: "anything goes here"},
		{Object: &Object{Repo: "r", Path: "p"}},
		{Object: &Object{Repo: "r", Ref: "v2", Path: "a/b", Dest: "/abs/out"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Input: "anything goes here"},
		{Input: "r@main:p"},
		{Input: "r@v2:a/b", Dest: "/abs/out"},
	}, got)
}
