// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package httphelpers has small helpers shared by the HTTP clients.
package httphelpers

import (
	"io"
	"net/http"
)

// Leave oversized bodies to the transport instead of reading them in full.
const drainLimit = 1 << 18

// DrainAndClose consumes up to drainLimit bytes of the response body and
// closes it, letting the transport reuse the connection.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	resp.Body.Close()
}
