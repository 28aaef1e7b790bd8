// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the pluggable HTTP boundary the orchestrator
// and flow primitives issue requests through, and implements the two
// operations that compose raw requests into typed results: the metadata
// fetcher and the client-auth selector.
//
// Nothing here depends on net/http's client: the embedder supplies a
// RequestFunc, which lets this library run unmodified against an
// in-process fake transport, a browser fetch() shim, or a real
// *http.Client, and lets a single function value distinguish a transport
// failure (a CORS-style failure, in browser terms) from an
// HTTP-level error response.
package transport

import (
	"context"
	"net/http"
)

// Request is the single shape every HTTP exchange in this library issues.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is the result of a successfully completed HTTP round trip. A
// non-2xx StatusCode is not itself an error: callers interpret the status
// per the calling operation's rules.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// RequestFunc is the pluggable transport this library consumes. An error
// returned from RequestFunc is treated as a transport-layer failure (spec's
// "CORS-style" failure) distinct from any HTTP status the server itself
// returned; the caller never sees an HTTP response in that case.
type RequestFunc func(ctx context.Context, req *Request) (*Response, error)
