package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "etrace", cmd.Use)
	assert.Contains(t, cmd.Long, "eligibility trace")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "stream", "journal", "validate", "params"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"run", []string{"db", "seed"}},
		{"stream", []string{"db", "seed", "interval", "duration"}},
		{"journal", []string{"db", "cycle", "fingerprint"}},
		{"params", []string{"schema"}},
	}

	cmd := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			for _, f := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(f), "--%s", f)
			}
		})
	}
}

func TestFormatValidation(t *testing.T) {
	for _, format := range []string{"xml", "", "TEXT"} {
		_, _, err := execute(NewRootCommand(), "--format", format, "params")
		require.Error(t, err, "format %q", format)
		assert.Contains(t, err.Error(), "invalid format")
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}

	_, _, err := execute(NewRootCommand(), "--format", "json", "params")
	assert.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	var quiet, loud bytes.Buffer
	newLogger(&RootOptions{}, &quiet).Debug("hidden")
	newLogger(&RootOptions{}, &quiet).Warn("shown")
	newLogger(&RootOptions{Verbose: true}, &loud).Debug("detail", "k", 1)

	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")
	assert.Contains(t, loud.String(), "msg=detail k=1")
}
