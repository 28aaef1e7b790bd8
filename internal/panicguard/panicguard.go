// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package panicguard contains a panic-recovery wrapper for the callbacks the
// orchestrator invokes on values it does not own: the embedder's session
// provider callbacks. The pluggable request function is not guarded. A
// panic inside a guarded callback must
// not take down a host process running many concurrent flows against
// unrelated sessions; it is recovered, logged, and turned into an error the
// orchestrator's outer recovery can reason about like any other
// failure.
package panicguard

import (
	"fmt"
	"runtime/debug"
)

// config holds the resolved configuration for Guard.
type config struct {
	logFn func(msg string, args ...any)
}

// Option configures Guard.
type Option func(*config)

// WithLogger sets the function used to report recovered panics. When a
// panic is recovered and a logger is configured, Guard logs the panic value,
// the operation name, and the stack trace.
func WithLogger(logFn func(msg string, args ...any)) Option {
	return func(c *config) {
		c.logFn = logFn
	}
}

// Guard invokes fn and converts any panic into an error instead of letting
// it propagate. op names the operation being guarded (e.g.
// "provider.saveTokens") for diagnostics.
//
// By default panics are recovered silently. Use [WithLogger] to enable
// logging of recovered panics.
func Guard(op string, fn func() error, opts ...Option) (err error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	defer func() {
		if v := recover(); v != nil {
			if cfg.logFn != nil {
				cfg.logFn("recovered panic in %s: %v\n%s", op, v, debug.Stack())
			}
			err = fmt.Errorf("panic in %s: %v", op, v)
		}
	}()

	return fn()
}
