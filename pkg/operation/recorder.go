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

package operation

import (
	"context"

	"github.com/walteh/git-fetch-file/pkg/manifest"
)

type recordRequest struct {
	ctx    context.Context
	entry  manifest.Entry
	result chan error
}

// recorder is the single goroutine allowed to append to the manifest
// during a run.
type recorder struct {
	store *manifest.Store
	reqs  chan recordRequest
	done  chan struct{}
}

func newRecorder(store *manifest.Store) *recorder {
	rec := &recorder{
		store: store,
		reqs:  make(chan recordRequest),
		done:  make(chan struct{}),
	}
	go rec.loop()
	return rec
}

func (rec *recorder) loop() {
	defer close(rec.done)
	for req := range rec.reqs {
		req.result <- rec.store.Append(req.ctx, req.entry)
	}
}

// record hands e to the writer goroutine and waits for the append.
func (rec *recorder) record(ctx context.Context, e manifest.Entry) error {
	result := make(chan error, 1)
	select {
	case rec.reqs <- recordRequest{ctx: ctx, entry: e, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-result
}

// close stops the writer once every caller of record has returned.
func (rec *recorder) close() {
	close(rec.reqs)
	<-rec.done
}
