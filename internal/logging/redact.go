// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

package logging

import (
	"net/url"
	"strings"
)

// Redacted replaces secrets that must never be shown, even partially.
const Redacted = "***"

// sensitiveKeys are query parameter and JSON field names whose values are
// masked before they reach a log line or a call log row.
var sensitiveKeys = map[string]bool{
	"password":   true,
	"pwd":        true,
	"hapikey":    true,
	"api_key":    true,
	"apikey":     true,
	"token":      true,
	"secret":     true,
	"auth":       true,
	"cookie":     true,
	"set-cookie": true,
}

// IsSensitiveKey reports whether values under key must be masked.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// SanitizeEmail keeps the first two characters of the local part.
// Example: "sync@example.com" -> "sy***@example.com"
func SanitizeEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return Redacted
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return Redacted + domain
	}
	return local[:2] + Redacted + domain
}

// SanitizeURL masks sensitive query parameters such as Hubspot's hapikey.
// Unparseable input is returned fully redacted.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return Redacted
	}
	if u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	changed := false
	for key := range q {
		if IsSensitiveKey(key) {
			q.Set(key, Redacted)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SanitizeArgs returns a copy of args with the entries at the given
// positions replaced by Redacted. Used for script argument vectors where the
// password is positional.
func SanitizeArgs(args []string, secretPositions ...int) []string {
	out := make([]string, len(args))
	copy(out, args)
	for _, i := range secretPositions {
		if i >= 0 && i < len(out) && out[i] != "" {
			out[i] = Redacted
		}
	}
	return out
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
