// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

// AuthorizationServerMetadata is the RFC 8414 OAuth 2.0 Authorization
// Server Metadata document, the base both discovery formats share. Only
// the fields this client consumes are modeled; unknown fields in a
// server's document are ignored on unmarshal.
type AuthorizationServerMetadata struct {
	// Issuer is the authorization server's issuer identifier.
	Issuer string `json:"issuer"`

	// AuthorizationEndpoint is where the authorization request is sent.
	// When absent, callers fall back to {serverURL}/authorize.
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// TokenEndpoint is where codes and refresh tokens are redeemed.
	// When absent, callers fall back to {serverURL}/token.
	TokenEndpoint string `json:"token_endpoint"`

	// JWKSURI locates the server's signing keys. This client never
	// fetches it, but OIDC documents require it to validate.
	JWKSURI string `json:"jwks_uri"`

	// RegistrationEndpoint is the RFC 7591 dynamic registration endpoint.
	// A server that advertises metadata without one has not opted into
	// dynamic registration.
	RegistrationEndpoint string `json:"registration_endpoint,omitempty"`

	// IntrospectionEndpoint is the RFC 7662 token introspection endpoint.
	IntrospectionEndpoint string `json:"introspection_endpoint,omitempty"`

	// UserinfoEndpoint is the OIDC UserInfo endpoint.
	UserinfoEndpoint string `json:"userinfo_endpoint"`

	// ResponseTypesSupported lists the response types the server accepts.
	// This client requires "code" when the list is advertised.
	ResponseTypesSupported []string `json:"response_types_supported,omitempty"`

	// GrantTypesSupported lists the grant types the server accepts.
	GrantTypesSupported []string `json:"grant_types_supported,omitempty"`

	// CodeChallengeMethodsSupported lists the PKCE transforms the server
	// accepts. This client requires S256 when the list is advertised.
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`

	// TokenEndpointAuthMethodsSupported drives the client-auth selection
	// for token requests.
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`

	// ScopesSupported lists the scope values the server understands.
	ScopesSupported []string `json:"scopes_supported,omitempty"`
}

// OIDCDiscoveryDocument is the union of RFC 8414 metadata and the OpenID
// Connect Discovery 1.0 document. Both discovery formats unmarshal into
// it; the OIDC-only fields stay empty for a plain OAuth document.
type OIDCDiscoveryDocument struct {
	AuthorizationServerMetadata

	// SubjectTypesSupported lists the OIDC subject identifier types.
	SubjectTypesSupported []string `json:"subject_types_supported,omitempty"`

	// IDTokenSigningAlgValuesSupported lists the JWS algorithms accepted
	// for ID tokens.
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported,omitempty"`

	// ClaimsSupported lists the claims the server can return.
	ClaimsSupported []string `json:"claims_supported,omitempty"`
}

// Validate checks the document carries the fields its format requires.
// OIDC documents must additionally name a JWKS URI and their supported
// response types.
func (d *OIDCDiscoveryDocument) Validate(isOIDC bool) error {
	if d.Issuer == "" {
		return ErrMissingIssuer
	}
	if d.AuthorizationEndpoint == "" {
		return ErrMissingAuthorizationEndpoint
	}
	if d.TokenEndpoint == "" {
		return ErrMissingTokenEndpoint
	}
	if isOIDC && d.JWKSURI == "" {
		return ErrMissingJWKSURI
	}
	if isOIDC && len(d.ResponseTypesSupported) == 0 {
		return ErrMissingResponseTypesSupported
	}
	return nil
}

// SupportsPKCE reports whether the server advertises the S256 code
// challenge method, the only PKCE transform this client uses.
func (d *OIDCDiscoveryDocument) SupportsPKCE() bool {
	return contains(d.CodeChallengeMethodsSupported, PKCEMethodS256)
}

// SupportsGrantType reports whether grantType appears in the server's
// advertised grant types.
func (d *OIDCDiscoveryDocument) SupportsGrantType(grantType string) bool {
	return contains(d.GrantTypesSupported, grantType)
}

// SupportsResponseType reports whether responseType appears in the
// server's advertised response types.
func (d *OIDCDiscoveryDocument) SupportsResponseType(responseType string) bool {
	return contains(d.ResponseTypesSupported, responseType)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
