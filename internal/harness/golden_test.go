package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_IngestEvents(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/ingest_events.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalSnapshot(t *testing.T) {
	data, err := MarshalSnapshot(Snapshot{
		Scenario: "tiny",
		Now:      3,
		Trace:    []TraceItem{{Time: 3, Events: []string{"a. :|3|: %1.00;0.90%"}}},
		Salience: []SalienceEntry{{Term: "a", Salience: 50}},
	})
	require.NoError(t, err)

	want := `{
  "scenario": "tiny",
  "now": 3,
  "trace": [
    {
      "time": 3,
      "events": [
        "a. :|3|: %1.00;0.90%"
      ]
    }
  ],
  "salience": [
    {
      "term": "a",
      "salience": 50
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestMarshalSnapshot_EmptyListsAreArrays(t *testing.T) {
	data, err := MarshalSnapshot(Snapshot{Scenario: "empty", Trace: []TraceItem{}, Salience: []SalienceEntry{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trace": []`)
	assert.Contains(t, string(data), `"salience": []`)
}
