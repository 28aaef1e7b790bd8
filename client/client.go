// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client implements the top-level orchestrator for the OAuth 2.1
// authorization lifecycle: protected-resource discovery (RFC 9728),
// authorization-server discovery (RFC 8414 / OIDC Discovery 1.0), dynamic
// client registration (RFC 7591), the PKCE-secured authorization-code flow
// with resource indicators (RFC 8707), token refresh, and recovery from
// server-side credential invalidation.
//
// The single entry point is Auth. It consumes a session provider (package
// provider) that owns all persisted state, and a transport.RequestFunc that
// performs every HTTP exchange, and returns either an Authorized result or
// a Redirect result after triggering the provider's redirect hook.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-authcore/flow"
	"github.com/stacklok/toolhive-authcore/internal/obslog"
	"github.com/stacklok/toolhive-authcore/internal/panicguard"
	validation "github.com/stacklok/toolhive-authcore/internal/validation/http"
	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/provider"
	"github.com/stacklok/toolhive-authcore/transport"
)

// Options configures a single Auth invocation.
type Options struct {
	// ServerURL is the resource server the client wants to authorize
	// against. Required.
	ServerURL string

	// AuthorizationCode is the code delivered to the redirect URL after a
	// previous Redirect result. Empty on a first invocation.
	AuthorizationCode string

	// Scope is the space-delimited scope list to request, if any.
	Scope string

	// ResourceMetadataURL, when set, is fetched directly instead of
	// deriving protected-resource candidates from ServerURL. Callers
	// typically obtain it from a 401 challenge via
	// ExtractResourceMetadataURL.
	ResourceMetadataURL string

	// ProtocolVersion is sent as the MCP-Protocol-Version header on every
	// discovery request. Defaults to oauth.DefaultMCPProtocolVersion.
	ProtocolVersion string

	// RedirectURIPolicy controls which redirect URI schemes are accepted
	// before registration and before an authorization URL is emitted. The
	// zero value is oauth.RedirectURIPolicyStrict.
	RedirectURIPolicy oauth.RedirectURIPolicy
}

// ResultKind distinguishes the two ways an Auth invocation can conclude.
type ResultKind string

const (
	// ResultAuthorized means tokens are persisted and the session is ready
	// to issue authenticated requests.
	ResultAuthorized ResultKind = "AUTHORIZED"

	// ResultRedirect means the user agent has been sent to the
	// authorization endpoint and the embedder should re-invoke Auth with
	// the authorization code once the redirect completes.
	ResultRedirect ResultKind = "REDIRECT"
)

// Result is the outcome of an Auth invocation.
type Result struct {
	Kind ResultKind

	// AuthorizationURL is the URL the user agent was redirected to. Set
	// only when Kind is ResultRedirect.
	AuthorizationURL string
}

// ExtractResourceMetadataURL parses the WWW-Authenticate header of a 401
// response for an RFC 9728 resource_metadata challenge parameter. It
// returns "" when the header is absent, uses a scheme other than Bearer,
// or carries no resource_metadata parameter. The result is suitable for
// Options.ResourceMetadataURL on the subsequent Auth call.
func ExtractResourceMetadataURL(headers http.Header) string {
	return oauth.ExtractResourceMetadataURL(headers.Get("WWW-Authenticate"))
}

// Auth runs the full authorization lifecycle against opts.ServerURL. It
// loads existing session artifacts from p, performs discovery, and then
// either exchanges a pending authorization code, refreshes existing
// tokens, or starts a new authorization and triggers p's redirect hook.
//
// If the flow fails with invalid_client or unauthorized_client, persisted
// credentials are invalidated (scope "all") and the flow is retried once;
// invalid_grant invalidates scope "tokens" and retries once. Any other
// error propagates to the caller unchanged.
func Auth(ctx context.Context, fn transport.RequestFunc, p provider.SessionProvider, opts Options) (*Result, error) {
	if opts.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if opts.ProtocolVersion != "" {
		if err := validation.ValidateHeaderValue(opts.ProtocolVersion); err != nil {
			return nil, fmt.Errorf("invalid protocol version: %w", err)
		}
	}

	result, err := authOnce(ctx, fn, p, opts)
	if err == nil {
		return result, nil
	}

	var oe *oauth.OAuthError
	if !errors.As(err, &oe) {
		return nil, err
	}

	var scope oauth.InvalidateScope
	switch oe.Code {
	case oauth.CodeInvalidClient, oauth.CodeUnauthorizedClient:
		scope = oauth.InvalidateAll
	case oauth.CodeInvalidGrant:
		scope = oauth.InvalidateTokens
	default:
		return nil, err
	}

	obslog.Warnf("recoverable oauth error %q from %s: invalidating %q credentials and retrying", oe.Code, opts.ServerURL, scope)
	if err := invalidateCredentials(ctx, p, scope); err != nil {
		return nil, err
	}
	return authOnce(ctx, fn, p, opts)
}

// authOnce performs one pass of the authorization state machine, with no
// recovery.
func authOnce(ctx context.Context, fn transport.RequestFunc, p provider.SessionProvider, opts Options) (*Result, error) {
	fetchOpts := transport.FetchOptions{ProtocolVersion: opts.ProtocolVersion}

	resourceMeta := discoverProtectedResource(ctx, fn, opts, fetchOpts)
	authServerURL := opts.ServerURL
	if resourceMeta != nil && len(resourceMeta.AuthorizationServers) > 0 {
		authServerURL = resourceMeta.AuthorizationServers[0]
		obslog.Debugf("protected resource metadata selected authorization server %s", authServerURL)
	}

	resource, err := SelectResourceURL(ctx, p, opts.ServerURL, resourceMeta)
	if err != nil {
		return nil, err
	}

	metadata, err := transport.FetchAuthorizationServerMetadata(ctx, fn, authServerURL, fetchOpts)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		obslog.Debugf("no authorization server metadata for %s, using conventional endpoints", authServerURL)
	}

	info, err := loadOrRegisterClient(ctx, fn, p, opts, authServerURL, metadata)
	if err != nil {
		return nil, err
	}

	authenticator := clientAuthenticator(p)

	if opts.AuthorizationCode != "" {
		return exchangeCode(ctx, fn, p, opts, authServerURL, metadata, *info, resource, authenticator)
	}

	tokens, err := p.Tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	if tokens != nil && tokens.RefreshToken != "" {
		result, err := refreshTokens(ctx, fn, p, authServerURL, metadata, *info, tokens.RefreshToken, resource, authenticator)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		// Refresh failed recoverably; fall through to a new authorization.
	}

	return startNewAuthorization(ctx, fn, p, opts, authServerURL, metadata, *info, resource)
}

// discoverProtectedResource attempts RFC 9728 discovery. Failure and
// absence are equivalent at this stage: the caller proceeds with the
// server URL itself as the authorization server.
func discoverProtectedResource(ctx context.Context, fn transport.RequestFunc, opts Options, fetchOpts transport.FetchOptions) *oauth.ProtectedResourceMetadata {
	var meta *oauth.ProtectedResourceMetadata
	var err error
	if opts.ResourceMetadataURL != "" {
		meta, err = transport.FetchProtectedResourceMetadataAt(ctx, fn, opts.ResourceMetadataURL, fetchOpts)
	} else {
		meta, err = transport.FetchProtectedResourceMetadata(ctx, fn, opts.ServerURL, fetchOpts)
	}
	if err != nil {
		obslog.Debugf("protected resource metadata unavailable for %s: %v", opts.ServerURL, err)
		return nil
	}
	return meta
}

// loadOrRegisterClient loads persisted client information, performing
// dynamic registration when none exists yet.
func loadOrRegisterClient(
	ctx context.Context,
	fn transport.RequestFunc,
	p provider.SessionProvider,
	opts Options,
	authServerURL string,
	metadata *oauth.OIDCDiscoveryDocument,
) (*oauth.ClientInformation, error) {
	info, err := p.ClientInformation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load client information: %w", err)
	}
	if info != nil {
		return info, nil
	}

	if opts.AuthorizationCode != "" {
		return nil, &oauth.StateMissingError{Reason: "an authorization code was supplied but no client information is on record"}
	}

	registrar, ok := p.(provider.ClientRegistrar)
	if !ok {
		return nil, &oauth.UnsupportedError{Capability: "saveClientInformation"}
	}

	full, err := flow.RegisterClient(ctx, fn, authServerURL, flow.RegisterClientParams{
		Metadata:       metadata,
		ClientMetadata: p.ClientMetadata(),
		Policy:         opts.RedirectURIPolicy,
	})
	if err != nil {
		return nil, err
	}
	obslog.Infof("registered client %q with %s", full.ClientID, authServerURL)

	if err := guardProvider("saveClientInformation", func() error {
		return registrar.SaveClientInformation(ctx, *full)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist client information: %w", err)
	}
	return &full.ClientInformation, nil
}

// exchangeCode redeems the pending authorization code and persists the
// resulting tokens.
func exchangeCode(
	ctx context.Context,
	fn transport.RequestFunc,
	p provider.SessionProvider,
	opts Options,
	authServerURL string,
	metadata *oauth.OIDCDiscoveryDocument,
	info oauth.ClientInformation,
	resource string,
	authenticator flow.Authenticator,
) (*Result, error) {
	verifier, err := p.CodeVerifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load code verifier: %w", err)
	}
	if verifier == "" {
		return nil, &oauth.StateMissingError{Reason: "an authorization code was supplied but no code verifier is on record"}
	}

	tokens, err := flow.ExchangeAuthorization(ctx, fn, authServerURL, flow.ExchangeAuthorizationParams{
		Metadata:      metadata,
		ClientInfo:    info,
		RedirectURL:   p.RedirectURL(),
		Code:          opts.AuthorizationCode,
		CodeVerifier:  verifier,
		Resource:      resource,
		Authenticator: authenticator,
	})
	if err != nil {
		return nil, err
	}

	if err := guardProvider("saveTokens", func() error {
		return p.SaveTokens(ctx, *tokens)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}
	return &Result{Kind: ResultAuthorized}, nil
}

// refreshTokens attempts a refresh. It returns a non-nil result on
// success, and (nil, nil) when the failure was a server-side fault worth
// abandoning the refresh over, so the caller falls through to a new
// authorization. Every other error propagates: OAuth-taxonomy errors so
// the outer recovery can act on invalid_grant, and transport or
// capability failures because a new authorization against the same
// server would hit them too.
func refreshTokens(
	ctx context.Context,
	fn transport.RequestFunc,
	p provider.SessionProvider,
	authServerURL string,
	metadata *oauth.OIDCDiscoveryDocument,
	info oauth.ClientInformation,
	refreshToken string,
	resource string,
	authenticator flow.Authenticator,
) (*Result, error) {
	tokens, err := flow.RefreshAuthorization(ctx, fn, authServerURL, flow.RefreshAuthorizationParams{
		Metadata:      metadata,
		ClientInfo:    info,
		RefreshToken:  refreshToken,
		Resource:      resource,
		Authenticator: authenticator,
	})
	if err != nil {
		var se *oauth.ServerError
		if !errors.As(err, &se) {
			return nil, err
		}
		obslog.Warnf("token refresh against %s failed, starting a new authorization: %v", authServerURL, err)
		return nil, nil
	}

	if err := guardProvider("saveTokens", func() error {
		return p.SaveTokens(ctx, *tokens)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}
	return &Result{Kind: ResultAuthorized}, nil
}

// startNewAuthorization builds a fresh PKCE authorization request,
// persists the verifier, and triggers the provider's redirect hook. The
// verifier is persisted before the redirect so the code exchange on the
// next invocation can find it.
func startNewAuthorization(
	ctx context.Context,
	fn transport.RequestFunc,
	p provider.SessionProvider,
	opts Options,
	authServerURL string,
	metadata *oauth.OIDCDiscoveryDocument,
	info oauth.ClientInformation,
	resource string,
) (*Result, error) {
	state, err := flowState(ctx, p)
	if err != nil {
		return nil, err
	}

	start, err := flow.StartAuthorization(authServerURL, flow.StartAuthorizationParams{
		Metadata:    metadata,
		ClientInfo:  info,
		RedirectURL: p.RedirectURL(),
		Scope:       opts.Scope,
		State:       state,
		Resource:    resource,
		Policy:      opts.RedirectURIPolicy,
	})
	if err != nil {
		return nil, err
	}

	if err := guardProvider("saveCodeVerifier", func() error {
		return p.SaveCodeVerifier(ctx, start.CodeVerifier)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist code verifier: %w", err)
	}

	if err := guardProvider("redirectToAuthorization", func() error {
		return p.RedirectToAuthorization(ctx, start.AuthorizationURL)
	}); err != nil {
		return nil, fmt.Errorf("redirect to authorization failed: %w", err)
	}

	return &Result{Kind: ResultRedirect, AuthorizationURL: start.AuthorizationURL}, nil
}

// flowState obtains the state token for a new authorization: the
// provider's own when it supplies one, a freshly minted one otherwise.
func flowState(ctx context.Context, p provider.SessionProvider) (string, error) {
	if src, ok := p.(provider.StateSource); ok {
		state, err := src.State(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to obtain state token: %w", err)
		}
		if state != "" {
			return state, nil
		}
	}
	return oauth.GenerateState()
}

// clientAuthenticator adapts the provider's optional custom-authentication
// capability into the flow package's Authenticator shape. A nil return
// means the default selector applies.
func clientAuthenticator(p provider.SessionProvider) flow.Authenticator {
	ca, ok := p.(provider.ClientAuthenticator)
	if !ok {
		return nil
	}
	return ca.AddClientAuthentication
}

// invalidateCredentials asks the provider to discard persisted artifacts.
// A provider without the capability keeps its state; the retry then runs
// against unchanged artifacts and surfaces the original error on its
// second failure.
func invalidateCredentials(ctx context.Context, p provider.SessionProvider, scope oauth.InvalidateScope) error {
	inv, ok := p.(provider.CredentialInvalidator)
	if !ok {
		obslog.Debugf("provider cannot invalidate credentials, retrying with existing state")
		return nil
	}
	return guardProvider("invalidateCredentials", func() error {
		return inv.InvalidateCredentials(ctx, scope)
	})
}

// guardProvider runs a provider callback with panic recovery, so a
// misbehaving embedder callback surfaces as an ordinary error instead of
// unwinding through the orchestrator.
func guardProvider(op string, fn func() error) error {
	return panicguard.Guard("provider."+op, fn, panicguard.WithLogger(obslog.Errorf))
}
