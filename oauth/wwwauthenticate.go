// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "strings"

// ExtractResourceMetadataURL extracts the resource_metadata parameter value
// from a WWW-Authenticate header produced by a 401 response (RFC 9728 Section 5.1).
// It recognizes only the Bearer challenge scheme and looks for the
// resource_metadata parameter anywhere in the parameter list.
//
// This deliberately does not implement a full RFC 7235 challenge parser:
// it splits the header on the first space to separate the scheme from the
// parameters, then scans the comma-separated parameter list for
// resource_metadata="...". Headers using auth-param syntax this simple
// split cannot handle (nested commas inside a quoted value, multiple
// challenges in one header) are not expected from a well-behaved resource
// server advertising RFC 9728 metadata, and are out of scope here.
func ExtractResourceMetadataURL(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	scheme, params, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	for _, part := range strings.Split(params, ",") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "resource_metadata") {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"`)
	}

	return ""
}
