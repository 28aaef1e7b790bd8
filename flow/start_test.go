// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-authcore/oauth"
)

func TestStartAuthorization_NoMetadataFallsBackToConventionalEndpoint(t *testing.T) {
	t.Parallel()

	result, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		ClientInfo:  oauth.ClientInformation{ClientID: "abc123"},
		RedirectURL: "https://client.example/callback",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.AuthorizationURL, "https://srv.example/authorize?"))
	require.Contains(t, result.AuthorizationURL, "response_type=code")
	require.Contains(t, result.AuthorizationURL, "client_id=abc123")
	require.Contains(t, result.AuthorizationURL, "code_challenge_method=S256")
	require.NotEmpty(t, result.CodeVerifier)
}

func TestStartAuthorization_QueryParameterOrder(t *testing.T) {
	t.Parallel()

	result, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		ClientInfo:  oauth.ClientInformation{ClientID: "abc123"},
		RedirectURL: "https://client.example/callback",
		State:       "xyz",
		Scope:       "read write",
		Resource:    "https://srv.example/mcp",
	})
	require.NoError(t, err)

	query := strings.SplitN(result.AuthorizationURL, "?", 2)[1]
	keys := make([]string, 0, 8)
	for _, pair := range strings.Split(query, "&") {
		keys = append(keys, strings.SplitN(pair, "=", 2)[0])
	}
	require.Equal(t, []string{
		"response_type", "client_id", "code_challenge", "code_challenge_method",
		"redirect_uri", "state", "scope", "resource",
	}, keys)
}

func TestStartAuthorization_OfflineAccessScopeAddsPromptConsent(t *testing.T) {
	t.Parallel()

	result, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		ClientInfo:  oauth.ClientInformation{ClientID: "abc123"},
		RedirectURL: "https://client.example/callback",
		Scope:       "openid offline_access",
	})
	require.NoError(t, err)
	require.Contains(t, result.AuthorizationURL, "prompt=consent")
}

func TestStartAuthorization_MetadataEndpointPreferred(t *testing.T) {
	t.Parallel()

	result, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		Metadata: &oauth.OIDCDiscoveryDocument{
			AuthorizationServerMetadata: oauth.AuthorizationServerMetadata{
				AuthorizationEndpoint:         "https://as.example/oauth2/authorize",
				ResponseTypesSupported:        []string{oauth.ResponseTypeCode},
				CodeChallengeMethodsSupported: []string{oauth.PKCEMethodS256},
			},
		},
		ClientInfo:  oauth.ClientInformation{ClientID: "abc123"},
		RedirectURL: "https://client.example/callback",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.AuthorizationURL, "https://as.example/oauth2/authorize?"))
}

func TestStartAuthorization_RejectsMissingCodeResponseType(t *testing.T) {
	t.Parallel()

	_, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		Metadata: &oauth.OIDCDiscoveryDocument{
			AuthorizationServerMetadata: oauth.AuthorizationServerMetadata{
				AuthorizationEndpoint:  "https://as.example/authorize",
				ResponseTypesSupported: []string{"token"},
			},
		},
		ClientInfo:  oauth.ClientInformation{ClientID: "abc"},
		RedirectURL: "https://client.example/callback",
	})
	var incompatible *oauth.IncompatibleError
	require.ErrorAs(t, err, &incompatible)
}

func TestStartAuthorization_RejectsMissingS256(t *testing.T) {
	t.Parallel()

	_, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		Metadata: &oauth.OIDCDiscoveryDocument{
			AuthorizationServerMetadata: oauth.AuthorizationServerMetadata{
				AuthorizationEndpoint:         "https://as.example/authorize",
				CodeChallengeMethodsSupported: []string{"plain"},
			},
		},
		ClientInfo:  oauth.ClientInformation{ClientID: "abc"},
		RedirectURL: "https://client.example/callback",
	})
	var incompatible *oauth.IncompatibleError
	require.ErrorAs(t, err, &incompatible)
}

func TestStartAuthorization_RejectsInsecureRedirectURI(t *testing.T) {
	t.Parallel()

	_, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		ClientInfo:  oauth.ClientInformation{ClientID: "abc"},
		RedirectURL: "http://example.com/callback",
	})
	require.Error(t, err)
}

func TestStartAuthorization_PKCERoundTrips(t *testing.T) {
	t.Parallel()

	result, err := StartAuthorization("https://srv.example", StartAuthorizationParams{
		ClientInfo:  oauth.ClientInformation{ClientID: "abc"},
		RedirectURL: "https://client.example/callback",
	})
	require.NoError(t, err)

	query := strings.SplitN(result.AuthorizationURL, "?", 2)[1]
	var challenge string
	for _, pair := range strings.Split(query, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == "code_challenge" {
			challenge = v
		}
	}
	require.True(t, oauth.VerifyPKCE(result.CodeVerifier, challenge))
}
