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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
)

// LoadConfig reads the structured source at path and returns its entries
// in file order.
// The format is determined by the file extension:
// - .yaml or .yml for YAML
// - .hcl for HCL
// - anything else is read as JSON
func LoadConfig(ctx context.Context, path string) ([]Entry, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fetcherr.ConfigNotFoundError{Path: path, Err: err}
		}
		return nil, &fetcherr.ConfigParseError{Path: path, Err: errors.Errorf("reading config file: %w", err)}
	}

	p := GetParser(path)
	logger.Debug().Str("path", path).Str("parser", parserName(p)).Msg("loading structured source")

	items, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}

	entries, err := Normalize(path, items)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Int("entries", len(entries)).Msg("loaded structured source")
	return entries, nil
}

func parserName(p Parser) string {
	switch p.(type) {
	case *YAMLParser:
		return "yaml"
	case *HCLParser:
		return "hcl"
	default:
		return "json"
	}
}
