// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "errors"

// Sentinel errors returned by OIDCDiscoveryDocument.Validate when a
// discovery document lacks a field its format requires.
var (
	// ErrMissingIssuer is returned when the issuer field is absent.
	ErrMissingIssuer = errors.New("missing issuer")

	// ErrMissingAuthorizationEndpoint is returned when
	// authorization_endpoint is absent.
	ErrMissingAuthorizationEndpoint = errors.New("missing authorization_endpoint")

	// ErrMissingTokenEndpoint is returned when token_endpoint is absent.
	ErrMissingTokenEndpoint = errors.New("missing token_endpoint")

	// ErrMissingJWKSURI is returned when an OIDC document omits jwks_uri.
	ErrMissingJWKSURI = errors.New("missing jwks_uri")

	// ErrMissingResponseTypesSupported is returned when an OIDC document
	// omits response_types_supported.
	ErrMissingResponseTypesSupported = errors.New("missing response_types_supported")
)

// ErrProtectedResourceNotImplemented is returned by the metadata fetcher
// (transport package) when every protected-resource metadata candidate URL
// responds 404. The orchestrator treats this identically to a
// transport-level absence: proceed with the server URL itself as the
// authorization server.
var ErrProtectedResourceNotImplemented = errors.New("protected resource metadata not implemented")
