// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-authcore/oauth"
)

// FetchOptions configures the metadata-fetcher operations. ProtocolVersion
// is sent on every request as the MCP-Protocol-Version header;
// callers that have no protocol version of their own should leave it at
// oauth.DefaultMCPProtocolVersion.
type FetchOptions struct {
	ProtocolVersion string
}

func (o FetchOptions) protocolVersion() string {
	if o.ProtocolVersion != "" {
		return o.ProtocolVersion
	}
	return oauth.DefaultMCPProtocolVersion
}

// FetchProtectedResourceMetadata fetches the RFC 9728 Protected Resource
// Metadata document for serverURL. It tries the path-aware candidate
// first and falls back to the origin-root candidate when the
// first is absent (no response, or HTTP 404 and the server URL has a
// non-root path).
//
// It returns oauth.ErrProtectedResourceNotImplemented when both candidates
// yield 404, a *oauth.TransportError when both yield a transport-layer
// failure, and a *oauth.ServerError for any other non-2xx response.
func FetchProtectedResourceMetadata(ctx context.Context, fn RequestFunc, serverURL string, opts FetchOptions) (*oauth.ProtectedResourceMetadata, error) {
	candidates, err := oauth.BuildProtectedResourceDiscoveryURLs(serverURL)
	if err != nil {
		return nil, err
	}

	var lastTransportErr error
	sawTransportFailure := false

	for i, candidate := range candidates {
		isLast := i == len(candidates)-1

		resp, terr := getWithCORSRetry(ctx, fn, candidate, opts.protocolVersion())
		if terr != nil {
			sawTransportFailure = true
			lastTransportErr = terr
			if isLast {
				break
			}
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			if isLast {
				return nil, oauth.ErrProtectedResourceNotImplemented
			}
			continue
		}

		if !statusOK(resp.StatusCode) {
			return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
		}

		var meta oauth.ProtectedResourceMetadata
		if err := json.Unmarshal(resp.Body, &meta); err != nil {
			return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
		}
		return &meta, nil
	}

	if sawTransportFailure {
		return nil, &oauth.TransportError{Candidate: candidates[len(candidates)-1], Err: lastTransportErr}
	}
	return nil, oauth.ErrProtectedResourceNotImplemented
}

// FetchProtectedResourceMetadataAt fetches the RFC 9728 Protected Resource
// Metadata document directly from resourceMetadataURL, bypassing the
// well-known URL builder. The orchestrator uses this when the caller
// extracted a resource_metadata URL from a 401 challenge's WWW-Authenticate
// header and wants to fetch
// exactly that location instead of deriving candidates from the server URL.
func FetchProtectedResourceMetadataAt(ctx context.Context, fn RequestFunc, resourceMetadataURL string, opts FetchOptions) (*oauth.ProtectedResourceMetadata, error) {
	resp, terr := getWithCORSRetry(ctx, fn, resourceMetadataURL, opts.protocolVersion())
	if terr != nil {
		return nil, &oauth.TransportError{Candidate: resourceMetadataURL, Err: terr}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, oauth.ErrProtectedResourceNotImplemented
	}
	if !statusOK(resp.StatusCode) {
		return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
	}

	var meta oauth.ProtectedResourceMetadata
	if err := json.Unmarshal(resp.Body, &meta); err != nil {
		return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
	}
	return &meta, nil
}

// FetchAuthorizationServerMetadata fetches authorization server metadata
// for serverURL, walking the well-known discovery URL list in priority
// order. It returns nil, nil when no candidate yields a usable document and
// every candidate was a 4xx (the orchestrator falls back to conventional
// endpoints in that case); it returns an error for a transport failure, a
// fatal non-4xx status, or an OIDC document missing S256 support.
func FetchAuthorizationServerMetadata(ctx context.Context, fn RequestFunc, serverURL string, opts FetchOptions) (*oauth.OIDCDiscoveryDocument, error) {
	candidates, err := oauth.BuildAuthServerDiscoveryURLs(serverURL)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		resp, terr := getWithCORSRetry(ctx, fn, candidate.URL, opts.protocolVersion())
		if terr != nil {
			return nil, &oauth.TransportError{Candidate: candidate.URL, Err: terr}
		}

		if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
			continue
		}
		if !statusOK(resp.StatusCode) {
			return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
		}

		var doc oauth.OIDCDiscoveryDocument
		if err := json.Unmarshal(resp.Body, &doc); err != nil {
			return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
		}

		isOIDC := candidate.Kind == oauth.DiscoveryKindOIDC
		if isOIDC && !doc.SupportsPKCE() {
			return nil, &oauth.IncompatibleError{Reason: "OIDC discovery document does not advertise S256 in code_challenge_methods_supported"}
		}
		return &doc, nil
	}

	return nil, nil
}

// getWithCORSRetry issues a GET to rawURL with the MCP-Protocol-Version
// header set. If the transport fails, it retries once with no headers at
// all, in case a custom header tripped a CORS-style rejection in the
// embedder's transport; a second failure is returned to
// the caller as a plain error, for it to wrap with the candidate URL.
func getWithCORSRetry(ctx context.Context, fn RequestFunc, rawURL, protocolVersion string) (*Response, error) {
	req := &Request{
		Method: http.MethodGet,
		URL:    rawURL,
		Headers: http.Header{
			oauth.MCPProtocolVersionHeader: []string{protocolVersion},
			"Accept":                       []string{"application/json"},
		},
	}

	resp, err := fn(ctx, req)
	if err == nil {
		return resp, nil
	}

	retryReq := &Request{Method: http.MethodGet, URL: rawURL}
	resp, retryErr := fn(ctx, retryReq)
	if retryErr != nil {
		return nil, fmt.Errorf("no response from %s: %w", rawURL, retryErr)
	}
	return resp, nil
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
