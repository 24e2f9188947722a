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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses an optional refs list followed by fetch blocks.
//
//	refs = ["https://example.com/repo.git@v1:LICENSE"]
//
//	fetch {
//	  repo = "https://example.com/repo.git"
//	  ref  = "v1"
//	  path = "docs/README.md"
//	  dest = "third_party/README.md"
//	}
//
// Items from refs come first, then the blocks in file order.
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) ([]Item, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, &fetcherr.ConfigParseError{Path: filename, Err: errors.New(diags.Error())}
	}

	// default_ref lets files spell out the fallback explicitly
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_ref": cty.StringVal(remote.DefaultRef),
		},
	}

	// Define HCL schema
	type hclSource struct {
		Refs    []string `hcl:"refs,optional"`
		Fetches []struct {
			Repo string `hcl:"repo"`
			Ref  string `hcl:"ref,optional"`
			Path string `hcl:"path"`
			Dest string `hcl:"dest,optional"`
		} `hcl:"fetch,block"`
	}

	var src hclSource
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &src)
	if diags.HasErrors() {
		return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: -1, Reason: diags.Error()}
	}

	items := make([]Item, 0, len(src.Refs)+len(src.Fetches))
	for _, raw := range src.Refs {
		items = append(items, Item{Raw: raw})
	}
	for _, f := range src.Fetches {
		items = append(items, Item{Object: &Object{
			Repo: f.Repo,
			Ref:  f.Ref,
			Path: f.Path,
			Dest: f.Dest,
		}})
	}
	return items, nil
}
