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
	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/log"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// 📦 FetchResult is the outcome of one reference. Inputs and repos are
// stored redacted.
type FetchResult struct {
	Input        string          `json:"input"`
	Success      bool            `json:"success"`
	DestFile     string          `json:"destFile,omitempty"`
	Remote       *remote.Request `json:"remote,omitempty"`
	Wrote        bool            `json:"wrote"`
	Simulated    bool            `json:"simulated,omitempty"`
	ErrorCode    fetcherr.Code   `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

func failure(input string, err error) FetchResult {
	return FetchResult{
		Input:        remote.Redact(input),
		ErrorCode:    fetcherr.CodeOf(err),
		ErrorMessage: remote.Redact(err.Error()),
	}
}

// 📊 Report holds one result per input, in input order
type Report struct {
	Results []FetchResult `json:"results"`
}

// Failed reports whether any item failed.
func (r *Report) Failed() bool {
	return r.FailedCount() > 0
}

// FailedCount is the number of failed items.
func (r *Report) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success {
			n++
		}
	}
	return n
}

// Operations converts the results for console display.
func (r *Report) Operations() []log.FetchOperation {
	ops := make([]log.FetchOperation, 0, len(r.Results))
	for _, res := range r.Results {
		ops = append(ops, res.operation())
	}
	return ops
}

func (res FetchResult) operation() log.FetchOperation {
	op := log.FetchOperation{
		Input:     res.Input,
		Dest:      res.DestFile,
		Wrote:     res.Wrote,
		Simulated: res.Simulated,
		Code:      string(res.ErrorCode),
		Err:       res.ErrorMessage,
	}
	if res.Remote != nil {
		op.Commit = res.Remote.CommitSha
	}
	return op
}
