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

package provider

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ErrPathNotFound is returned by Git.ReadBlob when the commit exists but the
// path is not part of its tree. Backends wrap it so callers can errors.Is it.
var ErrPathNotFound = errors.Base("path not found in tree")

// 🔌 Git is the set of shallow-retrieval primitives a backend must provide.
// Every method works inside dir, a scratch directory owned by the caller.
type Git interface {
	// 📂 Init creates an empty repository in dir
	Init(ctx context.Context, dir string) error

	// 🔗 AddRemote registers url under name
	AddRemote(ctx context.Context, dir, name, url string) error

	// 📥 Fetch retrieves exactly ref from remote with a history depth of one
	Fetch(ctx context.Context, dir, remote, ref string) error

	// 🎯 ResolveHead returns the commit id of the last fetched head
	ResolveHead(ctx context.Context, dir string) (string, error)

	// 📄 ReadBlob returns the bytes of path at commit without a checkout
	ReadBlob(ctx context.Context, dir, commit, path string) ([]byte, error)
}

// FactoryOptions configures a backend at construction time.
type FactoryOptions struct {
	// GitBinary is the executable used by backends that shell out. Empty
	// means "git" from PATH.
	GitBinary string
}

// 🏭 Factory creates a new backend
type Factory func(ctx context.Context, opts FactoryOptions) (Git, error)

var (
	// 🗺️ backends is a map of backend names to factories
	backends   = make(map[string]Factory)
	backendsMu sync.RWMutex
)

// 📝 Register registers a backend factory
func Register(name string, factory Factory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = factory
}

// 🎯 Get returns a backend factory by name, or nil
func Get(name string) Factory {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backends[name]
}

// Names lists the registered backends in sorted order.
func Names() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 🏭 New builds the named backend
func New(ctx context.Context, name string, opts FactoryOptions) (Git, error) {
	factory := Get(name)
	if factory == nil {
		return nil, errors.Errorf("unknown git backend %q (available: %v)", name, Names())
	}
	g, err := factory(ctx, opts)
	if err != nil {
		return nil, errors.Errorf("creating %s backend: %w", name, err)
	}
	return g, nil
}
