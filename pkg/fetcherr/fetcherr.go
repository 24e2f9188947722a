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

// Package fetcherr holds the closed set of failures a fetch can report.
// Every variant is its own type carrying only the fields it needs, and
// every variant maps to exactly one Code.
package fetcherr

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Code is the stable taxonomy key surfaced in results
type Code string

const (
	CodeInvalidRefFormat   Code = "INVALID_REF_FORMAT"
	CodeInvalidPath        Code = "INVALID_PATH"
	CodeSourceFileNotFound Code = "SOURCE_FILE_NOT_FOUND"
	CodeFileTooLarge       Code = "FILE_TOO_LARGE"
	CodeDestOutOfBounds    Code = "DEST_OUT_OF_BOUNDS"
	CodeGitCommandFailed   Code = "GIT_COMMAND_FAILED"
	CodeConfigNotFound     Code = "CONFIG_NOT_FOUND"
	CodeConfigParseError   Code = "CONFIG_PARSE_ERROR"
	CodeConfigInvalid      Code = "CONFIG_INVALID"
	CodeUnknown            Code = "UNKNOWN_ERROR"
)

// Coded is implemented by every error in this package.
type Coded interface {
	error
	Code() Code
}

// CodeOf walks the wrap chain of err and returns the first taxonomy code it
// finds. Anything uncategorized is CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return CodeUnknown
}

// InvalidRefFormatError means the input lacks the repo@ref:path structure.
type InvalidRefFormatError struct {
	Input  string
	Reason string
}

func (e *InvalidRefFormatError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s (expected repo[@ref]:path)", e.Input, e.Reason)
}

func (e *InvalidRefFormatError) Code() Code { return CodeInvalidRefFormat }

// InvalidPathError means the embedded file path is unsafe.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func (e *InvalidPathError) Code() Code { return CodeInvalidPath }

// SourceFileNotFoundError means the path is absent at the resolved revision.
// Repo must already be redacted by the caller.
type SourceFileNotFoundError struct {
	Repo string
	Ref  string
	Path string
	Err  error
}

func (e *SourceFileNotFoundError) Error() string {
	return fmt.Sprintf("file %q not found in %s at ref %q", e.Path, e.Repo, e.Ref)
}

func (e *SourceFileNotFoundError) Code() Code    { return CodeSourceFileNotFound }
func (e *SourceFileNotFoundError) Unwrap() error { return e.Err }

// FileTooLargeError means the content exceeds the configured ceiling.
type FileTooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file %q is %d bytes, exceeding the limit of %d bytes (raise it with --max-bytes)", e.Path, e.Size, e.Limit)
}

func (e *FileTooLargeError) Code() Code { return CodeFileTooLarge }

// DestOutOfBoundsError means the computed destination escapes the output root.
type DestOutOfBoundsError struct {
	Dest string
	Root string
}

func (e *DestOutOfBoundsError) Error() string {
	return fmt.Sprintf("destination %q is outside the output root %q", e.Dest, e.Root)
}

func (e *DestOutOfBoundsError) Code() Code { return CodeDestOutOfBounds }

// GitCommandError means every attempt of a version-control step failed.
type GitCommandError struct {
	Step     string
	Attempts int
	Err      error
}

func (e *GitCommandError) Error() string {
	return fmt.Sprintf("git %s failed after %d attempt(s): %v", e.Step, e.Attempts, e.Err)
}

func (e *GitCommandError) Code() Code    { return CodeGitCommandFailed }
func (e *GitCommandError) Unwrap() error { return e.Err }

// ConfigNotFoundError means the structured source file does not exist.
type ConfigNotFoundError struct {
	Path string
	Err  error
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", e.Path)
}

func (e *ConfigNotFoundError) Code() Code    { return CodeConfigNotFound }
func (e *ConfigNotFoundError) Unwrap() error { return e.Err }

// ConfigParseError means the structured source file is not well formed.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("parsing config file %q: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Code() Code    { return CodeConfigParseError }
func (e *ConfigParseError) Unwrap() error { return e.Err }

// ConfigInvalidError means an entry matches neither accepted shape.
type ConfigInvalidError struct {
	Path   string
	Index  int
	Reason string
}

// Index is negative when the problem is not tied to one entry.
func (e *ConfigInvalidError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("config file %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("config file %q: entry %d: %s", e.Path, e.Index, e.Reason)
}

func (e *ConfigInvalidError) Code() Code { return CodeConfigInvalid }
