// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-authcore/oauth"
	"github.com/stacklok/toolhive-authcore/transport"
)

func TestRefreshAuthorization_CarriesForwardOmittedRefreshToken(t *testing.T) {
	t.Parallel()

	var captured *transport.Request
	fn := func(_ context.Context, req *transport.Request) (*transport.Response, error) {
		captured = req
		return &transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"access_token":"A2","token_type":"Bearer"}`)}, nil
	}

	tokens, err := RefreshAuthorization(context.Background(), fn, "https://srv.example", RefreshAuthorizationParams{
		ClientInfo:   oauth.ClientInformation{ClientID: "abc"},
		RefreshToken: "R1",
	})
	require.NoError(t, err)
	require.Equal(t, "A2", tokens.AccessToken)
	require.Equal(t, "R1", tokens.RefreshToken)

	form, err := url.ParseQuery(string(captured.Body))
	require.NoError(t, err)
	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "R1", form.Get("refresh_token"))
}

func TestRefreshAuthorization_RotatedRefreshTokenIsPreserved(t *testing.T) {
	t.Parallel()

	fn := func(context.Context, *transport.Request) (*transport.Response, error) {
		return &transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"access_token":"A2","refresh_token":"R2","token_type":"Bearer"}`)}, nil
	}

	tokens, err := RefreshAuthorization(context.Background(), fn, "https://srv.example", RefreshAuthorizationParams{
		ClientInfo:   oauth.ClientInformation{ClientID: "abc"},
		RefreshToken: "R1",
	})
	require.NoError(t, err)
	require.Equal(t, "R2", tokens.RefreshToken)
}

func TestRefreshAuthorization_InvalidGrantPropagates(t *testing.T) {
	t.Parallel()

	fn := func(context.Context, *transport.Request) (*transport.Response, error) {
		return &transport.Response{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"invalid_grant"}`)}, nil
	}

	_, err := RefreshAuthorization(context.Background(), fn, "https://srv.example", RefreshAuthorizationParams{
		ClientInfo:   oauth.ClientInformation{ClientID: "abc"},
		RefreshToken: "R1",
	})
	require.True(t, oauth.IsCode(err, oauth.CodeInvalidGrant))
}

func TestRefreshAuthorization_TransportFailure(t *testing.T) {
	t.Parallel()

	fn := func(context.Context, *transport.Request) (*transport.Response, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := RefreshAuthorization(context.Background(), fn, "https://srv.example", RefreshAuthorizationParams{
		ClientInfo:   oauth.ClientInformation{ClientID: "abc"},
		RefreshToken: "R1",
	})
	var transportErr *oauth.TransportError
	require.ErrorAs(t, err, &transportErr)
}
