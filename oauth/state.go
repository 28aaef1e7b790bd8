// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"github.com/google/uuid"
)

// GenerateState creates a random state parameter (RFC 6749 Section 10.12)
// for CSRF protection on the authorization request. The orchestrator calls
// this only when the session provider has no state() capability or that
// capability returns an empty string, so a provider that already tracks session identity can
// reuse it as the state value instead of this client minting a second one.
func GenerateState() (string, error) {
	return uuid.NewString(), nil
}
