// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/transport"
)

// RegisterClientParams configures RegisterClient.
type RegisterClientParams struct {
	Metadata       *oauth.OIDCDiscoveryDocument
	ClientMetadata oauth.ClientMetadata

	// Policy controls which redirect URI schemes are accepted in
	// ClientMetadata.RedirectURIs before the registration request is
	// sent. The zero value is oauth.RedirectURIPolicyStrict.
	Policy oauth.RedirectURIPolicy
}

// RegisterClient performs RFC 7591 dynamic client registration.
// The target is metadata.registration_endpoint when metadata is
// present, otherwise {serverURL}/register; it fails with
// *oauth.UnsupportedError when metadata is present but carries no
// registration_endpoint, since a server that completed discovery and
// declined to advertise one has not opted into dynamic registration.
func RegisterClient(ctx context.Context, fn transport.RequestFunc, serverURL string, p RegisterClientParams) (*oauth.ClientInformationFull, error) {
	registrationURL := strings.TrimSuffix(serverURL, "/") + "/register"
	if p.Metadata != nil {
		if p.Metadata.RegistrationEndpoint == "" {
			return nil, &oauth.UnsupportedError{Capability: "registration_endpoint"}
		}
		registrationURL = p.Metadata.RegistrationEndpoint
	}

	for _, uri := range p.ClientMetadata.RedirectURIs {
		if err := oauth.ValidateRedirectURI(uri, p.Policy); err != nil {
			return nil, fmt.Errorf("invalid redirect_uris in client metadata: %w", err)
		}
	}

	body, err := json.Marshal(p.ClientMetadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client metadata: %w", err)
	}

	req := &transport.Request{
		Method: http.MethodPost,
		URL:    registrationURL,
		Headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		Body: body,
	}

	resp, err := fn(ctx, req)
	if err != nil {
		return nil, &oauth.TransportError{Candidate: registrationURL, Err: err}
	}
	if !statusOK(resp.StatusCode) {
		return nil, oauth.ParseErrorResponse(resp.StatusCode, resp.Body)
	}

	var info oauth.ClientInformationFull
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
	}
	if info.ClientID == "" {
		return nil, oauth.NewServerError(resp.StatusCode, string(resp.Body))
	}
	return &info, nil
}
