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

package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/walteh/git-fetch-file/pkg/provider"
)

var _ provider.Git = (*MockGit)(nil)

// 🔧 MockGit is a mock implementation of the provider.Git interface
type MockGit struct {
	mock.Mock
}

func (m *MockGit) Init(ctx context.Context, dir string) error {
	result := m.Called(ctx, dir)
	return result.Error(0)
}

func (m *MockGit) AddRemote(ctx context.Context, dir, name, url string) error {
	result := m.Called(ctx, dir, name, url)
	return result.Error(0)
}

func (m *MockGit) Fetch(ctx context.Context, dir, remote, ref string) error {
	result := m.Called(ctx, dir, remote, ref)
	return result.Error(0)
}

func (m *MockGit) ResolveHead(ctx context.Context, dir string) (string, error) {
	result := m.Called(ctx, dir)
	return result.String(0), result.Error(1)
}

func (m *MockGit) ReadBlob(ctx context.Context, dir, commit, path string) ([]byte, error) {
	result := m.Called(ctx, dir, commit, path)
	content, _ := result.Get(0).([]byte)
	return content, result.Error(1)
}

// ExpectHappyPath wires every primitive to succeed for one retrieval.
func (m *MockGit) ExpectHappyPath(repo, ref, path, commit string, content []byte) {
	m.On("Init", mock.Anything, mock.Anything).Return(nil)
	m.On("AddRemote", mock.Anything, mock.Anything, provider.RemoteName, repo).Return(nil)
	m.On("Fetch", mock.Anything, mock.Anything, provider.RemoteName, ref).Return(nil)
	m.On("ResolveHead", mock.Anything, mock.Anything).Return(commit, nil)
	m.On("ReadBlob", mock.Anything, mock.Anything, commit, path).Return(content, nil)
}
