// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package provider defines the session provider capability set the
// orchestrator (package client) consumes to load and persist OAuth session
// artifacts. A provider owns all mutable state the core touches;
// the core itself holds none.
//
// SessionProvider models the capabilities every embedder must supply.
// Capabilities that are optional — dynamic-registration persistence, a
// per-flow state token, a custom client authenticator, a
// resource-URL validator, and credential invalidation — are expressed as
// separate interfaces an embedder's provider value may additionally
// implement; the orchestrator queries for them with a type assertion
// rather than requiring stub implementations.
package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stacklok/toolhive-authcore/oauth"
)

// SessionProvider is the capability set every embedder must implement.
// All methods may be backed by remote storage; the orchestrator always
// awaits them as if they were asynchronous, so a synchronous in-memory
// implementation and a network-backed one are equally valid.
type SessionProvider interface {
	// RedirectURL is the absolute URL registered with the authorization
	// server as this client's redirect_uri.
	RedirectURL() string

	// ClientMetadata is the RFC 7591 registration request body submitted
	// on dynamic registration.
	ClientMetadata() oauth.ClientMetadata

	// ClientInformation loads the persisted client identity, or nil if
	// none has been registered yet.
	ClientInformation(ctx context.Context) (*oauth.ClientInformation, error)

	// Tokens loads the current token pair, or nil if none is held.
	Tokens(ctx context.Context) (*oauth.OAuthTokens, error)

	// SaveTokens persists tokens after a successful exchange or refresh.
	SaveTokens(ctx context.Context, tokens oauth.OAuthTokens) error

	// CodeVerifier loads the PKCE verifier persisted for the pending
	// redirect, or "" if none is pending.
	CodeVerifier(ctx context.Context) (string, error)

	// SaveCodeVerifier persists the verifier before the redirect is
	// triggered.
	SaveCodeVerifier(ctx context.Context, verifier string) error

	// RedirectToAuthorization triggers the user-agent redirect to
	// authorizationURL. The core does not inspect the return value beyond
	// its error.
	RedirectToAuthorization(ctx context.Context, authorizationURL string) error
}

// ClientRegistrar is the optional capability a provider implements to
// persist the result of dynamic client registration.
// A provider lacking it can only be used with a
// pre-registered client; the orchestrator fails with *oauth.UnsupportedError
// if registration is attempted against a provider missing this capability.
type ClientRegistrar interface {
	SaveClientInformation(ctx context.Context, info oauth.ClientInformationFull) error
}

// StateSource is the optional capability a provider implements to supply a
// per-flow opaque state token. When absent, or when it returns "", the
// orchestrator mints one itself via oauth.GenerateState.
type StateSource interface {
	State(ctx context.Context) (string, error)
}

// ClientAuthenticator is the optional capability a provider implements
// to fully override the client-auth selector. When present, the
// orchestrator delegates entirely to it for every token-endpoint request
// and never invokes the transport package's selector.
type ClientAuthenticator interface {
	AddClientAuthentication(
		ctx context.Context,
		headers http.Header,
		form url.Values,
		tokenURL string,
		metadata *oauth.OIDCDiscoveryDocument,
	) error
}

// ResourceValidator is the optional capability a provider implements to
// fully override resource-indicator selection.
// resource is the protected-resource metadata's resource field, or "" when
// no protected-resource metadata was obtained; serverURL is passed in
// canonical form. Its result is authoritative: the orchestrator performs
// none of its own origin or prefix checks when this capability is present,
// and a nil *url.URL, nil error result means "no resource indicator for
// this request".
type ResourceValidator interface {
	ValidateResourceURL(ctx context.Context, serverURL string, resource string) (*url.URL, error)
}

// CredentialInvalidator is the optional capability a provider implements
// to discard persisted session artifacts, consumed by the orchestrator's
// outer recovery after a recoverable OAuth-taxonomy error.
type CredentialInvalidator interface {
	InvalidateCredentials(ctx context.Context, scope oauth.InvalidateScope) error
}
