// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"net/url"
	"strings"
)

// DiscoveryKind identifies which metadata format a discovery candidate URL
// is expected to return.
type DiscoveryKind string

// Discovery kinds produced by BuildAuthServerDiscoveryURLs.
const (
	DiscoveryKindOAuth DiscoveryKind = "oauth"
	DiscoveryKindOIDC  DiscoveryKind = "oidc"
)

// DiscoveryCandidate is one well-known URL to probe, paired with the
// metadata format expected in its response.
type DiscoveryCandidate struct {
	URL  string
	Kind DiscoveryKind
}

// BuildAuthServerDiscoveryURLs returns the ordered list of well-known
// metadata URLs to probe for serverURL. The list is pure: it
// performs no I/O and the metadata fetcher (transport package) is
// responsible for walking it in order.
//
// When serverURL has no path component, two candidates are emitted: the
// RFC 8414 OAuth Authorization Server Metadata document, then the OIDC
// Discovery 1.0 document, both at the origin.
//
// When serverURL has a path P (trailing slash stripped), four candidates
// are emitted in priority order: the path-aware OAuth document, the
// origin-root OAuth document, the RFC 8414-style path-aware OIDC document,
// and finally the OIDC-1.0-style path-suffixed document.
func BuildAuthServerDiscoveryURLs(serverURL string) ([]DiscoveryCandidate, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrMissingIssuer
	}

	origin := &url.URL{Scheme: u.Scheme, Host: u.Host}
	p := strings.TrimSuffix(u.Path, "/")

	if p == "" {
		return []DiscoveryCandidate{
			{URL: withPath(origin, WellKnownOAuthServerPath), Kind: DiscoveryKindOAuth},
			{URL: withPath(origin, WellKnownOIDCPath), Kind: DiscoveryKindOIDC},
		}, nil
	}

	return []DiscoveryCandidate{
		{URL: withPath(origin, WellKnownOAuthServerPath+p), Kind: DiscoveryKindOAuth},
		{URL: withPath(origin, WellKnownOAuthServerPath), Kind: DiscoveryKindOAuth},
		{URL: withPath(origin, WellKnownOIDCPath+p), Kind: DiscoveryKindOIDC},
		{URL: withPath(origin, p+WellKnownOIDCPath), Kind: DiscoveryKindOIDC},
	}, nil
}

// BuildProtectedResourceDiscoveryURLs returns the two well-known candidate
// URLs the protected-resource fetcher (transport package) tries in order: the
// path-aware document, then the origin-root document. When serverURL has
// no path component the two candidates coincide and a single entry is
// returned.
func BuildProtectedResourceDiscoveryURLs(serverURL string) ([]string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrMissingIssuer
	}

	origin := &url.URL{Scheme: u.Scheme, Host: u.Host}
	p := strings.TrimSuffix(u.Path, "/")

	root := withPath(origin, WellKnownOAuthResourcePath)
	if p == "" {
		return []string{root}, nil
	}
	return []string{withPath(origin, WellKnownOAuthResourcePath+p), root}, nil
}

func withPath(origin *url.URL, path string) string {
	u := *origin
	u.Path = path
	return u.String()
}
