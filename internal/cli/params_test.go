package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/etrace/internal/config"
)

func TestParams_Text(t *testing.T) {
	out, _, err := execute(NewParamsCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)

	assert.Contains(t, out, "cooldown_factor: 0.98\n")
	assert.Contains(t, out, "inferences_per_cycle: 6\n")
	assert.Contains(t, out, `derived_budget: {"priority":0.9,"durability":0.5,"quality":0.5}`)
	assert.Less(t, strings.Index(out, "cooldown_factor"), strings.Index(out, "heat_up"), "fields are sorted")
}

func TestParams_JSON(t *testing.T) {
	out, _, err := execute(NewParamsCommand(&RootOptions{Format: "json"}))
	require.NoError(t, err)

	resp := decodeResponse[config.Params](t, []byte(out))
	assert.Equal(t, config.Defaults(), resp.Data)
}

func TestParams_Schema(t *testing.T) {
	out, _, err := execute(NewParamsCommand(&RootOptions{Format: "text"}), "--schema")
	require.NoError(t, err)
	assert.Equal(t, config.Schema(), out)

	out, _, err = execute(NewParamsCommand(&RootOptions{Format: "json"}), "--schema")
	require.NoError(t, err)
	assert.Equal(t, config.Schema(), decodeResponse[map[string]string](t, []byte(out)).Data["schema"])
}

func TestParams_RejectsArgs(t *testing.T) {
	_, _, err := execute(NewParamsCommand(&RootOptions{Format: "text"}), "extra")
	assert.Error(t, err)
}
