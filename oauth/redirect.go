// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ory/fosite"
)

// MaxRedirectURILength caps how long a single redirect URI may be before
// validation rejects it.
const MaxRedirectURILength = 2048

// RedirectURIPolicy selects which URI schemes a redirect URI may use.
// Registration and authorization-URL construction both validate redirect
// URIs against a policy before anything goes on the wire.
type RedirectURIPolicy int

const (
	// RedirectURIPolicyStrict accepts https and loopback http only,
	// following RFC 8252 Section 8.4. This is the default and the right
	// choice for dynamically registered clients.
	RedirectURIPolicyStrict RedirectURIPolicy = iota

	// RedirectURIPolicyAllowPrivateSchemes additionally accepts
	// private-use schemes (e.g. cursor://, vscode://) per RFC 8252
	// Section 7.1, for native applications whose redirect URIs were
	// configured by an administrator rather than registered dynamically.
	RedirectURIPolicyAllowPrivateSchemes
)

// ValidateRedirectURI checks uri against RFC 6749 Section 3.1.2 and the
// scheme rules of the given policy: the URI must be absolute, must not
// carry a fragment, and must use a scheme the policy accepts.
func ValidateRedirectURI(uri string, policy RedirectURIPolicy) error {
	if len(uri) > MaxRedirectURILength {
		return fmt.Errorf("redirect_uri too long (maximum %d characters)", MaxRedirectURILength)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid redirect_uri format: %w", err)
	}
	if !fosite.IsValidRedirectURI(parsed) {
		return fmt.Errorf("redirect_uri must be an absolute URI without a fragment")
	}

	switch policy {
	case RedirectURIPolicyStrict:
		if !fosite.IsRedirectURISecureStrict(context.Background(), parsed) {
			return fmt.Errorf("redirect_uri must use http (for loopback) or https scheme")
		}
	case RedirectURIPolicyAllowPrivateSchemes:
		if !fosite.IsRedirectURISecure(context.Background(), parsed) {
			return fmt.Errorf("redirect_uri must use a secure scheme (https, http for loopback, or a private-use scheme)")
		}
	default:
		return fmt.Errorf("unknown redirect URI policy: %d", policy)
	}
	return nil
}
