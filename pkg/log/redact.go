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

package log

import (
	"io"

	"github.com/walteh/git-fetch-file/pkg/remote"
)

// RedactingWriter scrubs URL credentials from every write before passing
// it on. Callers must hand it whole lines, which both zerolog and the
// console logger do.
type RedactingWriter struct {
	out io.Writer
}

// NewRedactingWriter wraps w. Wrapping twice is harmless.
func NewRedactingWriter(w io.Writer) *RedactingWriter {
	if rw, ok := w.(*RedactingWriter); ok {
		return rw
	}
	return &RedactingWriter{out: w}
}

func (w *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(w.out, remote.Redact(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
