// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package flow implements the individual RFC-specified HTTP exchanges that
// make up the authorization lifecycle: starting an
// authorization request, exchanging an authorization code, refreshing a
// token pair, and dynamically registering a client. The orchestrator
// (package client) composes these into the single Auth() entry point; each
// function here is independently usable by a caller that wants to drive
// the flow itself.
package flow

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/transport"
)

// Authenticator fully overrides the client-auth selector for a
// single token-endpoint request. The orchestrator builds one from a
// session provider's optional ClientAuthenticator capability; callers
// driving a flow function directly may pass nil to use the default
// selector in package transport.
type Authenticator func(ctx context.Context, headers http.Header, form url.Values, tokenURL string, metadata *oauth.OIDCDiscoveryDocument) error

// applyClientAuth delegates to authenticator when supplied, otherwise
// chooses and applies one of basic/post/none via the transport package's
// selector. A supplied authenticator always takes precedence; the two are
// never combined.
func applyClientAuth(
	ctx context.Context,
	authenticator Authenticator,
	info oauth.ClientInformation,
	serverSupported []string,
	headers http.Header,
	form url.Values,
	tokenURL string,
	metadata *oauth.OIDCDiscoveryDocument,
) error {
	if authenticator != nil {
		return authenticator(ctx, headers, form, tokenURL, metadata)
	}
	method := transport.SelectClientAuthMethod(info, serverSupported)
	return transport.ApplyClientAuth(method, info, headers, form)
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

