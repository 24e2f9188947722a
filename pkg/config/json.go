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
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
)

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse parses a JSON array of strings and objects
func (p *JSONParser) Parse(ctx context.Context, filename string, data []byte) ([]Item, error) {
	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &fetcherr.ConfigParseError{Path: filename, Err: err}
	}
	if _, ok := top.([]any); !ok {
		return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: -1, Reason: "top level must be an array"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &fetcherr.ConfigParseError{Path: filename, Err: err}
	}

	items := make([]Item, 0, len(raw))
	for i, msg := range raw {
		msg = bytes.TrimSpace(msg)
		switch {
		case len(msg) > 0 && msg[0] == '"':
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return nil, &fetcherr.ConfigParseError{Path: filename, Err: err}
			}
			items = append(items, Item{Raw: s})
		case len(msg) > 0 && msg[0] == '{':
			var obj Object
			dec := json.NewDecoder(bytes.NewReader(msg))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&obj); err != nil {
				return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: err.Error()}
			}
			items = append(items, Item{Object: &obj})
		default:
			return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: "entry must be a string or an object"}
		}
	}
	return items, nil
}
