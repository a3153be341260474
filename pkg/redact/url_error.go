// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact strips credentials from errors before they reach logs or
// API responses.
package redact

import (
	"errors"
	"net/url"
	"strings"
)

// URLError redacts sensitive query parameters from the URL embedded in a
// url.Error. http.Client failures carry the full request URL, which leaks
// keys when the configured host includes query-string auth. Non-URL errors
// pass through unchanged.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErr.Op,
		URL: redactURL(urlErr.URL),
		Err: urlErr.Err,
	}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	changed := false
	for key := range q {
		if !sensitiveParam(key) {
			continue
		}
		q.Set(key, "REDACTED")
		changed = true
	}
	if !changed {
		return raw
	}

	u.RawQuery = q.Encode()
	return u.String()
}

func sensitiveParam(key string) bool {
	switch strings.ToLower(key) {
	case "apikey", "api_key", "passkey", "token", "password", "secret":
		return true
	}
	return false
}
