// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/transport"
)

// RefreshAuthorizationParams configures RefreshAuthorization.
type RefreshAuthorizationParams struct {
	Metadata      *oauth.OIDCDiscoveryDocument
	ClientInfo    oauth.ClientInformation
	RefreshToken  string
	Resource      string
	Authenticator Authenticator
}

// RefreshAuthorization redeems a refresh token for a new token pair. When
// the authorization server's response omits refresh_token, the
// returned tokens carry forward the refresh token that was presented, so a
// server that rotates tokens only sometimes never strands the session.
func RefreshAuthorization(ctx context.Context, fn transport.RequestFunc, serverURL string, p RefreshAuthorizationParams) (*oauth.OAuthTokens, error) {
	tokenURL := strings.TrimSuffix(serverURL, "/") + "/token"
	var authMethods []string
	if p.Metadata != nil {
		if len(p.Metadata.GrantTypesSupported) > 0 && !p.Metadata.SupportsGrantType(oauth.GrantTypeRefreshToken) {
			return nil, &oauth.IncompatibleError{Reason: "authorization server does not advertise the refresh_token grant type"}
		}
		if p.Metadata.TokenEndpoint != "" {
			tokenURL = p.Metadata.TokenEndpoint
		}
		authMethods = p.Metadata.TokenEndpointAuthMethodsSupported
	}

	form := url.Values{}
	form.Set("grant_type", oauth.GrantTypeRefreshToken)
	form.Set("refresh_token", p.RefreshToken)
	if p.Resource != "" {
		form.Set("resource", p.Resource)
	}

	headers := http.Header{}
	if err := applyClientAuth(ctx, p.Authenticator, p.ClientInfo, authMethods, headers, form, tokenURL, p.Metadata); err != nil {
		return nil, err
	}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Accept", "application/json")

	tokens, err := postForToken(ctx, fn, tokenURL, headers, form)
	if err != nil {
		return nil, err
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = p.RefreshToken
	}
	return tokens, nil
}
