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
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/git-fetch-file/pkg/fetcherr"
	"github.com/walteh/git-fetch-file/pkg/remote"
)

// RetryOptions controls how each git step is attempted.
type RetryOptions struct {
	// Timeout bounds a single attempt. Zero means no per-attempt limit.
	Timeout time.Duration
	// Retries is the number of extra attempts after the first.
	Retries int
	// Backoff is the wait after the first failure; it doubles each time.
	Backoff time.Duration
	// OnRetry, when set, is called before every wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Retrier runs git steps under RetryOptions.
type Retrier struct {
	opts RetryOptions
}

// 🏭 NewRetrier creates a new retrier
func NewRetrier(opts RetryOptions) *Retrier {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Retrier{opts: opts}
}

// Options returns the retrier's configuration.
func (r *Retrier) Options() RetryOptions {
	return r.opts
}

// newBackOff returns a schedule of exactly Backoff * 2^i.
func (r *Retrier) newBackOff() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     r.opts.Backoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
	}
	b.Reset()
	return b
}

// 🔁 Run executes fn until it succeeds, the attempts are used up, or the
// failure is one retrying cannot fix. Exhaustion yields a
// *fetcherr.GitCommandError wrapping the last error.
func Run[T any](ctx context.Context, r *Retrier, step string, fn func(ctx context.Context) (T, error)) (T, error) {
	logger := zerolog.Ctx(ctx)
	maxTries := r.opts.Retries + 1
	attempt := 0

	op := func() (T, error) {
		attempt++

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.opts.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		}
		defer cancel()

		res, err := fn(attemptCtx)
		if err == nil {
			return res, nil
		}

		switch {
		case ctx.Err() != nil:
			return res, backoff.Permanent(ctx.Err())
		case errors.Is(err, ErrPathNotFound):
			return res, backoff.Permanent(err)
		case attemptCtx.Err() != nil:
			err = errors.Errorf("timed out after %s: %w", r.opts.Timeout, err)
		}
		return res, err
	}

	notify := func(err error, delay time.Duration) {
		logger.Warn().
			Str("step", step).
			Int("attempt", attempt).
			Int("max_attempts", maxTries).
			Dur("delay", delay).
			Str("error", remote.Redact(err.Error())).
			Msgf("git %s attempt %d/%d failed, retrying in %s", step, attempt, maxTries, delay)
		if r.opts.OnRetry != nil {
			r.opts.OnRetry(attempt, delay, err)
		}
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return res, nil
	}

	if errors.Is(err, ErrPathNotFound) {
		return res, err
	}
	return res, &fetcherr.GitCommandError{Step: step, Attempts: attempt, Err: err}
}

// Do is Run for steps that produce no value.
func Do(ctx context.Context, r *Retrier, step string, fn func(ctx context.Context) error) error {
	_, err := Run(ctx, r, step, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
