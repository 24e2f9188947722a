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
	"sync"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// 🔌 Parser is the interface for structured source parsers
type Parser interface {
	// 📝 Parse decodes data into items. Syntax problems are
	// *fetcherr.ConfigParseError, shape problems *fetcherr.ConfigInvalidError.
	Parse(ctx context.Context, filename string, data []byte) ([]Item, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers   []Parser
	parsersMu sync.RWMutex
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file, falling
// back to JSON for unknown extensions
func GetParser(filename string) Parser {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return &JSONParser{}
}

// 📦 Item is one element of a structured source. Exactly one of Raw and
// Object is set.
type Item struct {
	Raw    string
	Object *Object
}

// 📦 Object is the long form of a reference
type Object struct {
	Repo string `json:"repo" yaml:"repo"`
	Ref  string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Path string `json:"path" yaml:"path"`
	Dest string `json:"dest,omitempty" yaml:"dest,omitempty"`
}

// 🎯 Entry is a normalized item: a raw reference and an optional destination
type Entry struct {
	Input string
	Dest  string
}

// Normalize turns items into entries. Object items become repo@ref:path
// with ref defaulting to main; a missing repo or path is CONFIG_INVALID.
func Normalize(filename string, items []Item) ([]Entry, error) {
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		switch {
		case item.Object != nil:
			obj := item.Object
			if strings.TrimSpace(obj.Repo) == "" {
				return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: `object entry needs a non-empty "repo"`}
			}
			if strings.TrimSpace(obj.Path) == "" {
				return nil, &fetcherr.ConfigInvalidError{Path: filename, Index: i, Reason: `object entry needs a non-empty "path"`}
			}
			ref := obj.Ref
			if ref == "" {
				ref = remote.DefaultRef
			}
			entries = append(entries, Entry{
				Input: obj.Repo + "@" + ref + ":" + obj.Path,
				Dest:  obj.Dest,
			})
		default:
			entries = append(entries, Entry{Input: item.Raw})
		}
	}
	return entries, nil
}
