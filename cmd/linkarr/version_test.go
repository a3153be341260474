// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(RunVersionCommand())
	require.NoError(t, err)

	assert.Contains(t, output, "Version: dev")
	assert.Contains(t, output, "Commit:")
	assert.Contains(t, output, "Build date:")
}

func TestVersionCommandJSON(t *testing.T) {
	output, err := executeCommand(RunVersionCommand(), "--json")
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &payload))
	assert.Equal(t, "dev", payload["version"])
}

func TestUpdateCommandRejectsDevBuild(t *testing.T) {
	_, err := executeCommand(RunUpdateCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development builds cannot self-update")
}
