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
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/git-fetch-file/pkg/remote"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for the destination
	statusWidth  = 12 // Width for status text
	summaryTitle = "git-fetch-file"
)

// 🎯 FetchOperation is one fetched reference as shown to the user
type FetchOperation struct {
	Input     string // raw reference, redacted on output
	Dest      string // destination file
	Commit    string // resolved commit
	Wrote     bool   // content reached disk
	Simulated bool   // simulate mode, nothing written
	Code      string // error code on failure
	Err       string // error message on failure
}

// 🎯 Logger prints user-facing lines to a console and mirrors them to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger; console output is always redacted
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: NewRedactingWriter(console),
	}
}

// NewZerolog builds the structured logger every package pulls from context.
func NewZerolog(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: NewRedactingWriter(w), NoColor: color.NoColor}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or one that discards everything
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, zerolog.Nop())
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 FormatFetchOperation formats one fetch for display
func FormatFetchOperation(op FetchOperation) string {
	var symbol, status string
	switch {
	case op.Code != "":
		symbol, status = color.RedString("✗"), color.RedString("%-*s", statusWidth, op.Code)
	case op.Simulated:
		symbol, status = color.CyanString("•"), color.CyanString("%-*s", statusWidth, "simulated")
	case op.Wrote:
		symbol, status = color.GreenString("✓"), color.GreenString("%-*s", statusWidth, "written")
	default:
		symbol, status = color.HiBlackString("-"), color.YellowString("%-*s", statusWidth, "skipped")
	}

	name := op.Dest
	if name == "" {
		name = remote.Redact(op.Input)
	}

	line := fmt.Sprintf("%s%s %-*s %s", strings.Repeat(" ", fileIndent), symbol, nameWidth, name, status)
	switch {
	case op.Err != "":
		line += " " + color.New(color.Faint).Sprint(remote.Redact(op.Err))
	case op.Commit != "":
		line += " " + color.New(color.Faint).Sprint(shortCommit(op.Commit))
	}
	return line
}

func shortCommit(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

// 📝 LogFetch prints one fetch line and records it in zerolog
func (l *Logger) LogFetch(op FetchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, FormatFetchOperation(op))

	ev := l.zlog.Debug()
	if op.Code != "" {
		ev = l.zlog.Error().Str("code", op.Code).Str("error", remote.Redact(op.Err))
	}
	ev.Str("input", remote.Redact(op.Input)).
		Str("dest", op.Dest).
		Str("commit", op.Commit).
		Bool("wrote", op.Wrote).
		Bool("simulated", op.Simulated).
		Msg("fetch result")
}

// 📊 Summary prints a table of every fetch plus a closing status line
func (l *Logger) Summary(ops []FetchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"reference", "status", "detail"}}
	failed := 0
	for _, op := range ops {
		status, detail := "written", shortCommit(op.Commit)
		switch {
		case op.Code != "":
			failed++
			status, detail = op.Code, op.Err
		case op.Simulated:
			status = "simulated"
		case !op.Wrote:
			status = "skipped"
		}
		data = append(data, []string{remote.Redact(op.Input), status, remote.Redact(detail)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		l.zlog.Warn().Err(err).Msg("rendering summary table")
	} else {
		fmt.Fprintln(l.console, table)
	}

	if failed > 0 {
		fmt.Fprintf(l.console, "❌ %s\n", color.RedString("%s: %d of %d fetches failed", summaryTitle, failed, len(ops)))
		return
	}
	fmt.Fprintf(l.console, "✅ %s\n", color.GreenString("%s: %d fetches complete", summaryTitle, len(ops)))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}
