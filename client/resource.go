// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	validation "github.com/stacklok/toolhive-authcore/internal/validation/http"
	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/provider"
)

// SelectResourceURL resolves the RFC 8707 resource indicator for a flow
// against serverURL. The provider's ValidateResourceURL capability, when
// present, is authoritative; otherwise the protected-resource metadata's
// resource field is used after checking it covers the canonicalized
// server URL. An empty result means the token request carries no resource
// parameter.
func SelectResourceURL(ctx context.Context, p provider.SessionProvider, serverURL string, meta *oauth.ProtectedResourceMetadata) (string, error) {
	canonical, err := canonicalizeResourceURI(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}

	if v, ok := p.(provider.ResourceValidator); ok {
		resource := ""
		if meta != nil {
			resource = meta.Resource
		}
		u, err := v.ValidateResourceURL(ctx, canonical, resource)
		if err != nil {
			return "", err
		}
		if u == nil {
			return "", nil
		}
		return u.String(), nil
	}

	if meta == nil || meta.Resource == "" {
		return "", nil
	}

	allowed, err := resourceAllowsServer(meta.Resource, canonical)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", &oauth.ResourceMismatchError{ServerURL: canonical, Resource: meta.Resource}
	}
	return meta.Resource, nil
}

// canonicalizeResourceURI canonicalizes a server URL into resource
// indicator form: fragment stripped, scheme and host lower-cased, path and
// query preserved.
func canonicalizeResourceURI(rawURL string) (string, error) {
	return validation.CanonicalResourceURI(rawURL)
}

// resourceAllowsServer reports whether the declared resource covers
// serverURL: same origin, and the resource's path is a segment-wise prefix
// of the server's path. A resource at the origin root covers every path
// on that origin.
func resourceAllowsServer(resource, serverURL string) (bool, error) {
	ru, err := url.Parse(resource)
	if err != nil {
		return false, fmt.Errorf("invalid resource %q in protected resource metadata: %w", resource, err)
	}
	su, err := url.Parse(serverURL)
	if err != nil {
		return false, err
	}

	if !strings.EqualFold(ru.Scheme, su.Scheme) || !strings.EqualFold(ru.Host, su.Host) {
		return false, nil
	}

	resourceSegs := pathSegments(ru.Path)
	serverSegs := pathSegments(su.Path)
	if len(resourceSegs) > len(serverSegs) {
		return false, nil
	}
	for i, seg := range resourceSegs {
		if serverSegs[i] != seg {
			return false, nil
		}
	}
	return true, nil
}

func pathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
