// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/stacklok/toolhive-authcore/oauth"
)

// SelectClientAuthMethod chooses one of client_secret_basic, client_secret_post,
// or none for a pending token-endpoint request (RFC 6749 Section 2.3),
// given the server's advertised token_endpoint_auth_methods_supported (which
// may be empty when metadata was never discovered).
func SelectClientAuthMethod(info oauth.ClientInformation, serverSupported []string) oauth.TokenEndpointAuthMethod {
	hasSecret := info.ClientSecret != ""

	if len(serverSupported) == 0 {
		if hasSecret {
			return oauth.TokenEndpointAuthMethodPost
		}
		return oauth.TokenEndpointAuthMethodNone
	}

	if contains(serverSupported, string(oauth.TokenEndpointAuthMethodBasic)) && hasSecret {
		return oauth.TokenEndpointAuthMethodBasic
	}
	if contains(serverSupported, string(oauth.TokenEndpointAuthMethodPost)) && hasSecret {
		return oauth.TokenEndpointAuthMethodPost
	}
	if contains(serverSupported, string(oauth.TokenEndpointAuthMethodNone)) {
		return oauth.TokenEndpointAuthMethodNone
	}

	if hasSecret {
		return oauth.TokenEndpointAuthMethodPost
	}
	return oauth.TokenEndpointAuthMethodNone
}

// ApplyClientAuth applies the chosen method to an outgoing token request:
// basic sets the Authorization header, post and none set client_id (and,
// for post, client_secret) in the form body. It fails with
// *oauth.MissingSecretError when basic was selected but info carries no
// secret, an invariant the selector itself never produces but a custom
// provider-supplied method might.
func ApplyClientAuth(method oauth.TokenEndpointAuthMethod, info oauth.ClientInformation, headers http.Header, form url.Values) error {
	switch method {
	case oauth.TokenEndpointAuthMethodBasic:
		if info.ClientSecret == "" {
			return &oauth.MissingSecretError{ClientID: info.ClientID}
		}
		creds := info.ClientID + ":" + info.ClientSecret
		headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
		return nil
	case oauth.TokenEndpointAuthMethodPost:
		form.Set("client_id", info.ClientID)
		if info.ClientSecret != "" {
			form.Set("client_secret", info.ClientSecret)
		}
		return nil
	case oauth.TokenEndpointAuthMethodNone:
		form.Set("client_id", info.ClientID)
		return nil
	default:
		form.Set("client_id", info.ClientID)
		return nil
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
