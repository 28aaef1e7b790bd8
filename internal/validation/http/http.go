// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package http validates the HTTP-adjacent inputs this library places on
// the wire: header values attached to outgoing discovery and token
// requests, and RFC 8707 resource indicator URIs, which it also brings
// into the canonical form the resource-selection rules compare against.
package http

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Size caps for header fields. Values beyond these are far outside what
// any authorization server emits and are rejected outright.
const (
	maxHeaderNameLen  = 256
	maxHeaderValueLen = 8192
)

// ValidateHeaderName reports whether name is usable as an HTTP header
// field name per RFC 7230: a non-empty token with no control characters.
func ValidateHeaderName(name string) error {
	if name == "" {
		return fmt.Errorf("header name is empty")
	}
	if len(name) > maxHeaderNameLen {
		return fmt.Errorf("header name longer than %d bytes", maxHeaderNameLen)
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("header name %q is not an RFC 7230 token", name)
	}
	return nil
}

// ValidateHeaderValue reports whether value is usable as an HTTP header
// field value per RFC 7230, rejecting CRLF sequences and other control
// characters that would allow header injection.
func ValidateHeaderValue(value string) error {
	if value == "" {
		return fmt.Errorf("header value is empty")
	}
	if len(value) > maxHeaderValueLen {
		return fmt.Errorf("header value longer than %d bytes", maxHeaderValueLen)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("header value contains control characters")
	}
	return nil
}

// CanonicalResourceURI brings rawURI into RFC 8707 canonical resource
// indicator form: scheme and host lower-cased, fragment dropped, path and
// query preserved. It rejects anything that cannot serve as a resource
// indicator at all — a relative reference or a URI with no host.
func CanonicalResourceURI(rawURI string) (string, error) {
	if rawURI == "" {
		return "", fmt.Errorf("resource URI is empty")
	}

	parsed, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("resource URI does not parse: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("resource URI %q is not absolute", rawURI)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	return parsed.String(), nil
}
