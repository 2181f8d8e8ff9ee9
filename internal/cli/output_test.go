package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"term": "<(&/,a,+10) =/> b>"}, nil))

	resp := decodeResponse[map[string]string](t, buf.Bytes())
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "<(&/,a,+10) =/> b>", resp.Data["term"])
	assert.NotContains(t, buf.String(), `\u003c`, "terms are not HTML-escaped")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E201", "bad value", map[string]any{"line": 3}))

	resp := decodeResponse[any](t, buf.Bytes())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E201", resp.Error.Code)
	assert.Equal(t, "bad value", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("plain", nil))
	require.NoError(t, formatter.Success(nil, func(w io.Writer) { fmt.Fprintln(w, "custom") }))
	assert.Equal(t, "plain\ncustom\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: verbose}

		require.NoError(t, formatter.Error("E005", "not found", "x.cue"))
		assert.Contains(t, buf.String(), "Error [E005]: not found")
		if verbose {
			assert.Contains(t, buf.String(), "Details: x.cue")
		} else {
			assert.NotContains(t, buf.String(), "Details")
		}
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}

	quiet := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}
	quiet.VerboseLog("loading %s", "x")
	assert.Empty(t, diag.String())

	loud := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}
	loud.VerboseLog("loading %s", "x")
	assert.Equal(t, "loading x\n", diag.String())
	assert.Empty(t, out.String(), "diagnostics never reach stdout")

	fallback := &OutputFormatter{Format: "text", Writer: out, Verbose: true}
	fallback.VerboseLog("to stdout")
	assert.Equal(t, "to stdout\n", out.String())
}

func TestExitError(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open database", inner)

	assert.Equal(t, "failed to open database: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("other")))
}
