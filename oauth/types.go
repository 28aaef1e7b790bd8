// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "encoding/json"

// OAuthErrorResponse is the RFC 6749 Section 5.2 error response body
// returned by an authorization or token endpoint.
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

func (r *OAuthErrorResponse) unmarshal(body []byte) error {
	return json.Unmarshal(body, r)
}

// ClientMetadata is the RFC 7591 Section 2 client metadata a caller submits
// when registering a new OAuth client, or records having submitted.
type ClientMetadata struct {
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	ClientURI               string   `json:"client_uri,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
	SoftwareID              string   `json:"software_id,omitempty"`
	SoftwareVersion         string   `json:"software_version,omitempty"`
}

// ClientInformation is the subset of an RFC 7591 Section 3.2.1 client
// information response a session provider persists and later supplies back
// to the orchestrator: the assigned identifier, optional secret, and the
// metadata that was registered.
type ClientInformation struct {
	ClientMetadata
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// ClientInformationFull additionally carries the registration-management
// fields RFC 7591 Section 3.2.1 defines when the authorization server
// returns them: a registration access token and client-configuration
// endpoint, and the issuance/expiry timestamps for the client secret.
type ClientInformationFull struct {
	ClientInformation
	ClientIDIssuedAt        int64  `json:"client_id_issued_at,omitempty"`
	ClientSecretExpiresAt   int64  `json:"client_secret_expires_at,omitempty"`
	RegistrationAccessToken string `json:"registration_access_token,omitempty"`
	RegistrationClientURI   string `json:"registration_client_uri,omitempty"`
}

// OAuthTokens is the RFC 6749 Section 5.1 token response, as persisted by a
// session provider across the life of a session.
type OAuthTokens struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// ProtectedResourceMetadata is the RFC 9728 Section 2 protected resource
// metadata document, fetched from a resource server's
// /.well-known/oauth-protected-resource endpoint to discover which
// authorization servers protect it.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
	JWKSURI                string   `json:"jwks_uri,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	ResourceName           string   `json:"resource_name,omitempty"`
	ResourceDocumentation  string   `json:"resource_documentation,omitempty"`
}
