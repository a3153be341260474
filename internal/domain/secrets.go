// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// RedactedStr is the placeholder substituted for secret values anywhere the
// configuration is exposed or logged.
const RedactedStr = "<redacted>"

// RedactString masks a secret. Empty values stay empty so callers can still
// tell set from unset.
func RedactString(s string) string {
	if s == "" {
		return ""
	}
	return RedactedStr
}

// Redacted returns a copy of the config safe to log or expose.
func (c *Config) Redacted() Config {
	out := *c
	out.Qbittorrent.Password = RedactString(c.Qbittorrent.Password)
	out.Radarr.APIKey = RedactString(c.Radarr.APIKey)
	out.Sonarr.APIKey = RedactString(c.Sonarr.APIKey)
	return out
}
