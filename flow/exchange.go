// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/transport"
)

// ExchangeAuthorizationParams configures ExchangeAuthorization.
type ExchangeAuthorizationParams struct {
	Metadata      *oauth.OIDCDiscoveryDocument
	ClientInfo    oauth.ClientInformation
	RedirectURL   string
	Code          string
	CodeVerifier  string
	Resource      string
	Authenticator Authenticator
}

// ExchangeAuthorization redeems an authorization code for a token pair.
// The target is metadata.token_endpoint when metadata is
// present, otherwise {serverURL}/token.
func ExchangeAuthorization(ctx context.Context, fn transport.RequestFunc, serverURL string, p ExchangeAuthorizationParams) (*oauth.OAuthTokens, error) {
	tokenURL := strings.TrimSuffix(serverURL, "/") + "/token"
	var authMethods []string
	if p.Metadata != nil {
		if len(p.Metadata.GrantTypesSupported) > 0 && !p.Metadata.SupportsGrantType(oauth.GrantTypeAuthorizationCode) {
			return nil, &oauth.IncompatibleError{Reason: "authorization server does not advertise the authorization_code grant type"}
		}
		if p.Metadata.TokenEndpoint != "" {
			tokenURL = p.Metadata.TokenEndpoint
		}
		authMethods = p.Metadata.TokenEndpointAuthMethodsSupported
	}

	form := url.Values{}
	form.Set("grant_type", oauth.GrantTypeAuthorizationCode)
	form.Set("code", p.Code)
	form.Set("code_verifier", p.CodeVerifier)
	form.Set("redirect_uri", p.RedirectURL)
	if p.Resource != "" {
		form.Set("resource", p.Resource)
	}

	headers := http.Header{}
	if err := applyClientAuth(ctx, p.Authenticator, p.ClientInfo, authMethods, headers, form, tokenURL, p.Metadata); err != nil {
		return nil, err
	}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Accept", "application/json")

	return postForToken(ctx, fn, tokenURL, headers, form)
}

func postForToken(ctx context.Context, fn transport.RequestFunc, tokenURL string, headers http.Header, form url.Values) (*oauth.OAuthTokens, error) {
	req := &transport.Request{
		Method:  http.MethodPost,
		URL:     tokenURL,
		Headers: headers,
		Body:    []byte(form.Encode()),
	}

	resp, err := fn(ctx, req)
	if err != nil {
		return nil, &oauth.TransportError{Candidate: tokenURL, Err: err}
	}
	if !statusOK(resp.StatusCode) {
		return nil, oauth.ParseErrorResponse(resp.StatusCode, resp.Body)
	}

	var tokens oauth.OAuthTokens
	if err := json.Unmarshal(resp.Body, &tokens); err != nil {
		return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
	}
	return &tokens, nil
}
