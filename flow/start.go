// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"net/url"
	"strings"

	"github.com/stacklok/toolhive-authcore/oauth"
)

// StartAuthorizationParams configures StartAuthorization.
type StartAuthorizationParams struct {
	// Metadata is the discovered authorization server metadata, or nil
	// when discovery yielded nothing and conventional endpoints apply.
	Metadata *oauth.OIDCDiscoveryDocument

	ClientInfo  oauth.ClientInformation
	RedirectURL string
	Scope       string
	State       string
	Resource    string

	// Policy controls which redirect URI schemes StartAuthorization
	// accepts for RedirectURL before emitting the authorization URL.
	// The zero value is oauth.RedirectURIPolicyStrict.
	Policy oauth.RedirectURIPolicy
}

// StartAuthorizationResult is the outcome of StartAuthorization: the URL to
// send the user agent to, and the PKCE verifier the caller must persist
// across the redirect boundary for the subsequent code exchange.
type StartAuthorizationResult struct {
	AuthorizationURL string
	CodeVerifier     string
}

// StartAuthorization builds the PKCE-secured authorization request.
// It performs no I/O: the authorization endpoint is either taken
// from metadata or derived as {serverURL}/authorize, and the URL is
// returned for the caller (the orchestrator, or the session provider's
// redirect hook) to send the user agent to.
func StartAuthorization(serverURL string, p StartAuthorizationParams) (*StartAuthorizationResult, error) {
	if err := oauth.ValidateRedirectURI(p.RedirectURL, p.Policy); err != nil {
		return nil, err
	}

	authEndpoint := strings.TrimSuffix(serverURL, "/") + "/authorize"
	if p.Metadata != nil {
		if len(p.Metadata.ResponseTypesSupported) > 0 && !p.Metadata.SupportsResponseType(oauth.ResponseTypeCode) {
			return nil, &oauth.IncompatibleError{Reason: "authorization server does not advertise the \"code\" response type"}
		}
		if len(p.Metadata.CodeChallengeMethodsSupported) > 0 && !p.Metadata.SupportsPKCE() {
			return nil, &oauth.IncompatibleError{Reason: "authorization server does not advertise S256 PKCE support"}
		}
		if p.Metadata.AuthorizationEndpoint != "" {
			authEndpoint = p.Metadata.AuthorizationEndpoint
		}
	}

	pkce, err := oauth.GeneratePKCEParams()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(authEndpoint)
	b.WriteByte('?')
	first := true
	add := func(key, value string) {
		if !first {
			b.WriteByte('&')
		}
		first = false
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	add("response_type", oauth.ResponseTypeCode)
	add("client_id", p.ClientInfo.ClientID)
	add("code_challenge", pkce.CodeChallenge)
	add("code_challenge_method", oauth.PKCEMethodS256)
	add("redirect_uri", p.RedirectURL)
	if p.State != "" {
		add("state", p.State)
	}
	if p.Scope != "" {
		add("scope", p.Scope)
	}
	if p.Resource != "" {
		add("resource", p.Resource)
	}
	if scopeHasToken(p.Scope, oauth.ScopeOfflineAccess) {
		add("prompt", "consent")
	}

	return &StartAuthorizationResult{
		AuthorizationURL: b.String(),
		CodeVerifier:     pkce.CodeVerifier,
	}, nil
}

// scopeHasToken reports whether scope, a space-delimited scope list,
// contains token as one of its members.
func scopeHasToken(scope, token string) bool {
	for _, s := range strings.Fields(scope) {
		if s == token {
			return true
		}
	}
	return false
}
