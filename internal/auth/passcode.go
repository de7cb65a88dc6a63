// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

package auth

import "crypto/subtle"

// CheckPasscode compares a submitted passcode to the configured one verbatim,
// in constant time.
func CheckPasscode(expected, submitted string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
