// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oauth provides the RFC-defined data model, constants, error
// taxonomy, and stateless helpers shared by the OAuth 2.1 client core: PKCE
// (RFC 7636), the well-known discovery URL builder (RFC 8414 / OIDC
// Discovery 1.0 / RFC 9728), WWW-Authenticate challenge parsing, and
// redirect URI validation (RFC 6749 / RFC 8252).
//
// Nothing in this package performs I/O. The HTTP exchanges that consume
// these types live in the transport and flow packages; this package only
// describes the wire shapes and the rules for deriving one value from
// another.
//
// # Discovery Documents
//
// The package provides types for OAuth 2.0 Authorization Server Metadata
// (RFC 8414) and OpenID Connect Discovery 1.0:
//
//	doc := oauth.OIDCDiscoveryDocument{
//		AuthorizationServerMetadata: oauth.AuthorizationServerMetadata{
//			Issuer:                "https://auth.example.com",
//			AuthorizationEndpoint: "https://auth.example.com/authorize",
//			TokenEndpoint:         "https://auth.example.com/token",
//		},
//	}
//	if err := doc.Validate(true); err != nil {
//		// Handle validation error
//	}
//
// # Redirect URI Validation
//
// The package provides RFC-compliant redirect URI validation with
// configurable policies for security:
//
//	// Strict policy: only https and http-loopback
//	err := oauth.ValidateRedirectURI("https://example.com/callback", oauth.RedirectURIPolicyStrict)
//
//	// Allow private-use schemes for native apps
//	err := oauth.ValidateRedirectURI("myapp://callback", oauth.RedirectURIPolicyAllowPrivateSchemes)
//
// # Stability
//
// This package is Beta stability. The API may have minor changes before
// reaching stable status in v1.0.0.
package oauth
