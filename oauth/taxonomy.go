// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is an RFC 6749 Section 5.2 error code, plus extension codes the
// flow primitives (flow package) surface from token and authorization
// endpoints.
type Code string

// Error codes defined by RFC 6749 Section 5.2 and Section 4.1.2.1.
const (
	CodeInvalidRequest          Code = "invalid_request"
	CodeInvalidClient           Code = "invalid_client"
	CodeInvalidGrant            Code = "invalid_grant"
	CodeUnauthorizedClient      Code = "unauthorized_client"
	CodeUnsupportedGrantType    Code = "unsupported_grant_type"
	CodeInvalidScope            Code = "invalid_scope"
	CodeAccessDenied            Code = "access_denied"
	CodeUnsupportedResponseType Code = "unsupported_response_type"
	CodeServerError             Code = "server_error"
	CodeTemporarilyUnavailable  Code = "temporarily_unavailable"
)

// OAuthError represents an RFC 6749 Section 5.2 error response body
// returned by an authorization or token endpoint.
type OAuthError struct {
	Code        Code
	Description string
	URI         string
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth error %q: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("oauth error %q", e.Code)
}

// IsCode reports whether err is an *OAuthError carrying the given code.
func IsCode(err error, code Code) bool {
	var oe *OAuthError
	return errors.As(err, &oe) && oe.Code == code
}

// ServerError represents a non-OAuth server failure: a non-2xx HTTP
// response whose body did not parse as an RFC 6749 error object, or any
// server-side failure that is not itself part of the OAuth error taxonomy.
type ServerError struct {
	StatusCode int
	Body       string
}

// NewServerError builds a ServerError carrying the response status and raw
// body.
func NewServerError(statusCode int, body string) *ServerError {
	return &ServerError{StatusCode: statusCode, Body: body}
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: HTTP %d", e.StatusCode)
}

// HTTPStatus maps an error from this taxonomy to the HTTP status an
// embedder fronting this client with its own API should answer with. A
// ServerError carries the upstream status through; OAuth-taxonomy codes
// map per their RFC 6749 semantics; transport and capability failures
// surface as gateway errors. Anything outside the taxonomy maps to 500,
// and nil maps to 200.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}

	var oe *OAuthError
	if errors.As(err, &oe) {
		switch oe.Code {
		case CodeInvalidClient, CodeUnauthorizedClient:
			return http.StatusUnauthorized
		case CodeAccessDenied:
			return http.StatusForbidden
		case CodeServerError:
			return http.StatusBadGateway
		case CodeTemporarilyUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadRequest
		}
	}

	var ue *UnauthorizedError
	if errors.As(err, &ue) {
		return http.StatusUnauthorized
	}

	var te *TransportError
	var ie *IncompatibleError
	if errors.As(err, &te) || errors.As(err, &ie) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// TransportError represents a network or CORS-style failure talking to a
// discovery or token-endpoint candidate URL.
type TransportError struct {
	Candidate string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error reaching %s: %v", e.Candidate, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IncompatibleError indicates the server's advertised capabilities do not
// meet the guarantees this client requires (missing the "code" response
// type, missing S256 PKCE support, or an unsupported grant). A missing
// registration_endpoint is reported as an UnsupportedError instead.
type IncompatibleError struct {
	Reason string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("incompatible authorization server: %s", e.Reason)
}

// ResourceMismatchError indicates the discovered protected-resource
// metadata is not compatible with the canonicalized server URL.
type ResourceMismatchError struct {
	ServerURL string
	Resource  string
}

func (e *ResourceMismatchError) Error() string {
	return fmt.Sprintf("resource %q is not allowed for server URL %q", e.Resource, e.ServerURL)
}

// StateMissingError indicates an invariant violation: an authorization code
// was supplied but no client information or no code verifier is on record
// to exchange it with.
type StateMissingError struct {
	Reason string
}

func (e *StateMissingError) Error() string {
	return fmt.Sprintf("state missing: %s", e.Reason)
}

// UnsupportedError indicates a capability was required by the current flow
// but absent: an optional session-provider capability, or a
// registration_endpoint in authorization server metadata that was
// discovered without one.
type UnsupportedError struct {
	Capability string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("provider does not support required capability %q", e.Capability)
}

// UnauthorizedError is a convenience wrapper callers of this library may
// raise themselves when a protected request fails with HTTP 401 before
// Auth() has ever been invoked. The core never constructs this error; it
// exists so embedders have a taxonomy member to signal "please call Auth"
// without inventing their own sentinel.
type UnauthorizedError struct {
	Err error
}

func (e *UnauthorizedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized: %v", e.Err)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) Unwrap() error {
	return e.Err
}

// MissingSecretError indicates client_secret_basic was selected or
// requested but the client information on record carries no secret.
type MissingSecretError struct {
	ClientID string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("client %q has no client_secret for client_secret_basic authentication", e.ClientID)
}

// ParseErrorResponse converts a non-2xx HTTP response body into the
// appropriate taxonomy error. A body that parses as an RFC 6749 Section 5.2
// error object yields an *OAuthError; anything else yields a *ServerError
// carrying the raw status and body, matching the shared error semantics
// for the flow primitives.
func ParseErrorResponse(statusCode int, body []byte) error {
	var resp OAuthErrorResponse
	if err := resp.unmarshal(body); err != nil || resp.Error == "" {
		return NewServerError(statusCode, string(body))
	}
	return &OAuthError{
		Code:        Code(resp.Error),
		Description: resp.ErrorDescription,
		URI:         resp.ErrorURI,
	}
}
