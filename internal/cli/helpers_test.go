package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const chainScenario = `name: chain
description: two ordered events
seed: 1
steps:
  - input: { atom: a, at: 10 }
  - input: { atom: b, at: 20 }
  - cycles: 1
assertions:
  - type: admitted_contains
    match: "(&/,a,+10,b)"
  - type: trace_length
    count: 2
`

const failingScenario = `name: failing
description: asserts a trace that never forms
steps:
  - input: { atom: a, at: 10 }
assertions:
  - type: trace_length
    count: 3
`

// response mirrors CLIResponse with a typed payload.
type response[T any] struct {
	Status    string    `json:"status"`
	Data      T         `json:"data"`
	Error     *CLIError `json:"error"`
	SessionID string    `json:"session_id"`
}

func decodeResponse[T any](t *testing.T, data []byte) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal(data, &resp), "output: %s", data)
	return resp
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns its stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
