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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

var objectKeys = map[string]bool{"repo": true, "ref": true, "path": true, "dest": true}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

// 📝 Parse parses a YAML sequence of strings and mappings
func (p *YAMLParser) Parse(ctx context.Context, filename string, data []byte) ([]Item, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &fetcherr.ConfigParseError{Path: filename, Err: err}
	}

	// an empty document has no content node
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: -1, Reason: "top level must be a sequence"}
	}

	seq := doc.Content[0]
	items := make([]Item, 0, len(seq.Content))
	for i, node := range seq.Content {
		switch {
		case node.Kind == yaml.ScalarNode && node.Tag == "!!str":
			items = append(items, Item{Raw: node.Value})
		case node.Kind == yaml.MappingNode:
			for k := 0; k < len(node.Content); k += 2 {
				if key := node.Content[k].Value; !objectKeys[key] {
					return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: fmt.Sprintf("unknown field %q (line %d)", key, node.Content[k].Line)}
				}
			}
			var obj Object
			if err := node.Decode(&obj); err != nil {
				return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: err.Error()}
			}
			items = append(items, Item{Object: &obj})
		default:
			return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: fmt.Sprintf("entry must be a string or a mapping (line %d)", node.Line)}
		}
	}
	return items, nil
}
