// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-authcore/oauth"
)

// fakeFetch serves canned responses by URL and records every request.
// URLs in failing get a transport-layer error on every attempt.
type fakeFetch struct {
	responses map[string]*Response
	failing   map[string]error
	requests  []*Request
}

func newFakeFetch() *fakeFetch {
	return &fakeFetch{
		responses: map[string]*Response{},
		failing:   map[string]error{},
	}
}

func (f *fakeFetch) on(url string, status int, body string) {
	f.responses[url] = &Response{StatusCode: status, Body: []byte(body)}
}

func (f *fakeFetch) fail(url string, err error) {
	f.failing[url] = err
}

func (f *fakeFetch) roundTrip(_ context.Context, req *Request) (*Response, error) {
	f.requests = append(f.requests, req)
	if err, ok := f.failing[req.URL]; ok {
		return nil, err
	}
	if resp, ok := f.responses[req.URL]; ok {
		return resp, nil
	}
	return &Response{StatusCode: http.StatusNotFound}, nil
}

const validASMetadata = `{
	"issuer": "https://srv.example",
	"authorization_endpoint": "https://srv.example/authorize",
	"token_endpoint": "https://srv.example/token"
}`

func TestFetchProtectedResourceMetadata_PathAwareThenRootFallback(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.on("https://srv.example/.well-known/oauth-protected-resource", http.StatusOK,
		`{"resource":"https://srv.example","authorization_servers":["https://as.example"]}`)

	meta, err := FetchProtectedResourceMetadata(context.Background(), f.roundTrip, "https://srv.example/mcp", FetchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"https://as.example"}, meta.AuthorizationServers)

	require.Equal(t, "https://srv.example/.well-known/oauth-protected-resource/mcp", f.requests[0].URL)
	require.Equal(t, "https://srv.example/.well-known/oauth-protected-resource", f.requests[1].URL)
}

func TestFetchProtectedResourceMetadata_AllNotFound(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	_, err := FetchProtectedResourceMetadata(context.Background(), f.roundTrip, "https://srv.example/mcp", FetchOptions{})
	require.ErrorIs(t, err, oauth.ErrProtectedResourceNotImplemented)
}

func TestFetchProtectedResourceMetadata_AllTransportFailures(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.fail("https://srv.example/.well-known/oauth-protected-resource/mcp", errors.New("connection refused"))
	f.fail("https://srv.example/.well-known/oauth-protected-resource", errors.New("connection refused"))

	_, err := FetchProtectedResourceMetadata(context.Background(), f.roundTrip, "https://srv.example/mcp", FetchOptions{})
	var terr *oauth.TransportError
	require.ErrorAs(t, err, &terr)
}

func TestFetchProtectedResourceMetadata_OtherStatusIsFatal(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.on("https://srv.example/.well-known/oauth-protected-resource/mcp", http.StatusInternalServerError, "boom")

	_, err := FetchProtectedResourceMetadata(context.Background(), f.roundTrip, "https://srv.example/mcp", FetchOptions{})
	var serr *oauth.ServerError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusInternalServerError, serr.StatusCode)
}

func TestFetchProtectedResourceMetadata_SendsProtocolVersionHeader(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.on("https://srv.example/.well-known/oauth-protected-resource", http.StatusOK, `{"resource":"https://srv.example"}`)

	_, err := FetchProtectedResourceMetadata(context.Background(), f.roundTrip, "https://srv.example", FetchOptions{ProtocolVersion: "2025-03-26"})
	require.NoError(t, err)
	require.Equal(t, "2025-03-26", f.requests[0].Headers.Get(oauth.MCPProtocolVersionHeader))
}

func TestFetchAuthorizationServerMetadata_ClientErrorContinues(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.on("https://srv.example/.well-known/oauth-authorization-server/tenant", http.StatusForbidden, "")
	f.on("https://srv.example/.well-known/oauth-authorization-server", http.StatusOK, validASMetadata)

	doc, err := FetchAuthorizationServerMetadata(context.Background(), f.roundTrip, "https://srv.example/tenant", FetchOptions{})
	require.NoError(t, err)
	require.Equal(t, "https://srv.example/token", doc.TokenEndpoint)

	// Any 4xx, not only 404, moves on to the next candidate.
	require.Equal(t, "https://srv.example/.well-known/oauth-authorization-server/tenant", f.requests[0].URL)
	require.Equal(t, "https://srv.example/.well-known/oauth-authorization-server", f.requests[1].URL)
}

func TestFetchAuthorizationServerMetadata_AllCandidatesMissYieldsAbsent(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	doc, err := FetchAuthorizationServerMetadata(context.Background(), f.roundTrip, "https://srv.example", FetchOptions{})
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestFetchAuthorizationServerMetadata_TransportFailureNamesCandidate(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.fail("https://srv.example/.well-known/oauth-authorization-server", errors.New("connection reset"))

	_, err := FetchAuthorizationServerMetadata(context.Background(), f.roundTrip, "https://srv.example", FetchOptions{})
	var terr *oauth.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "https://srv.example/.well-known/oauth-authorization-server", terr.Candidate)
}

func TestFetchAuthorizationServerMetadata_ServerErrorIsFatal(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.on("https://srv.example/.well-known/oauth-authorization-server", http.StatusBadGateway, "bad gateway")

	_, err := FetchAuthorizationServerMetadata(context.Background(), f.roundTrip, "https://srv.example", FetchOptions{})
	var serr *oauth.ServerError
	require.ErrorAs(t, err, &serr)
}

func TestFetchAuthorizationServerMetadata_OIDCRequiresS256(t *testing.T) {
	t.Parallel()

	f := newFakeFetch()
	f.on("https://srv.example/.well-known/openid-configuration", http.StatusOK, `{
		"issuer": "https://srv.example",
		"authorization_endpoint": "https://srv.example/authorize",
		"token_endpoint": "https://srv.example/token",
		"code_challenge_methods_supported": ["plain"]
	}`)

	_, err := FetchAuthorizationServerMetadata(context.Background(), f.roundTrip, "https://srv.example", FetchOptions{})
	var incompatible *oauth.IncompatibleError
	require.ErrorAs(t, err, &incompatible)
}

func TestFetchAuthorizationServerMetadata_OAuthDocumentNeedsNoS256(t *testing.T) {
	t.Parallel()

	// The S256 requirement applies to OIDC candidates only.
	f := newFakeFetch()
	f.on("https://srv.example/.well-known/oauth-authorization-server", http.StatusOK, validASMetadata)

	doc, err := FetchAuthorizationServerMetadata(context.Background(), f.roundTrip, "https://srv.example", FetchOptions{})
	require.NoError(t, err)
	require.NotNil(t, doc)
}

func TestGetWithCORSRetry_RetriesWithoutHeaders(t *testing.T) {
	t.Parallel()

	var calls []*Request
	fn := func(_ context.Context, req *Request) (*Response, error) {
		calls = append(calls, req)
		if len(req.Headers) > 0 {
			return nil, errors.New("cors rejection")
		}
		return &Response{StatusCode: http.StatusOK, Body: []byte(`{"resource":"https://srv.example"}`)}, nil
	}

	meta, err := FetchProtectedResourceMetadata(context.Background(), fn, "https://srv.example", FetchOptions{})
	require.NoError(t, err)
	require.Equal(t, "https://srv.example", meta.Resource)

	require.Len(t, calls, 2)
	require.NotEmpty(t, calls[0].Headers)
	require.Empty(t, calls[1].Headers)
}
