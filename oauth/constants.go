// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

// Well-known endpoint paths as defined by RFC 8414, OpenID Connect Discovery 1.0, and RFC 9728.
const (
	// WellKnownOIDCPath is the standard OIDC discovery endpoint path
	// per OpenID Connect Discovery 1.0 specification.
	WellKnownOIDCPath = "/.well-known/openid-configuration"

	// WellKnownOAuthServerPath is the standard OAuth authorization server metadata endpoint path
	// per RFC 8414 (OAuth 2.0 Authorization Server Metadata).
	WellKnownOAuthServerPath = "/.well-known/oauth-authorization-server"

	// WellKnownOAuthResourcePath is the RFC 9728 standard path for OAuth Protected Resource metadata.
	// Per RFC 9728 Section 3, this endpoint and any subpaths under it should be accessible
	// without authentication to enable OIDC/OAuth discovery.
	WellKnownOAuthResourcePath = "/.well-known/oauth-protected-resource"
)

// Grant types as defined by RFC 6749.
const (
	// GrantTypeAuthorizationCode is the authorization code grant type (RFC 6749 Section 4.1).
	GrantTypeAuthorizationCode = "authorization_code"

	// GrantTypeRefreshToken is the refresh token grant type (RFC 6749 Section 6).
	GrantTypeRefreshToken = "refresh_token"
)

// Response types as defined by RFC 6749.
const (
	// ResponseTypeCode is the authorization code response type (RFC 6749 Section 4.1.1).
	ResponseTypeCode = "code"
)

// Token endpoint authentication methods as defined by RFC 7591.
// TokenEndpointAuthMethod identifies which of the three client
// authentication mechanisms a token request uses.
type TokenEndpointAuthMethod string

const (
	// TokenEndpointAuthMethodNone indicates no client authentication (public clients).
	// Typically used with PKCE for native/mobile applications.
	TokenEndpointAuthMethodNone TokenEndpointAuthMethod = "none"

	// TokenEndpointAuthMethodBasic sends client credentials in the
	// Authorization: Basic header (RFC 6749 Section 2.3.1).
	TokenEndpointAuthMethodBasic TokenEndpointAuthMethod = "client_secret_basic"

	// TokenEndpointAuthMethodPost sends client credentials in the
	// form-encoded request body (RFC 6749 Section 2.3.1).
	TokenEndpointAuthMethodPost TokenEndpointAuthMethod = "client_secret_post"
)

// PKCE (Proof Key for Code Exchange) methods as defined by RFC 7636.
const (
	// PKCEMethodS256 uses SHA-256 hash of the code verifier (recommended).
	PKCEMethodS256 = "S256"
)

// ScopeOfflineAccess is the scope token (OIDC Core 1.0 Section 11) whose
// presence in a requested scope list signals that the authorization request
// should include prompt=consent, so the authorization server issues a
// refresh token even to a returning user.
const ScopeOfflineAccess = "offline_access"

// MCPProtocolVersionHeader is the header the core attaches to every
// discovery request so authorization servers that vary their metadata by
// protocol version can respond accordingly.
const MCPProtocolVersionHeader = "MCP-Protocol-Version"

// DefaultMCPProtocolVersion is used for MCPProtocolVersionHeader when the
// caller does not supply one.
const DefaultMCPProtocolVersion = "2025-06-18"

// InvalidateScope identifies which class of persisted session artifacts a
// provider's invalidateCredentials capability should discard.
type InvalidateScope string

// Invalidation scopes consumed by the orchestrator's outer recovery
// and exposed to providers.
const (
	// InvalidateAll discards client information, tokens, and the PKCE verifier.
	InvalidateAll InvalidateScope = "all"
	// InvalidateClient discards only the registered client information.
	InvalidateClient InvalidateScope = "client"
	// InvalidateTokens discards only the access/refresh token pair.
	InvalidateTokens InvalidateScope = "tokens"
	// InvalidateVerifier discards only the pending PKCE code verifier.
	InvalidateVerifier InvalidateScope = "verifier"
)
