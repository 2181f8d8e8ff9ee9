package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/etrace/internal/nal"
)

// marshalJSON encodes v with HTML escaping disabled and without the
// encoder's trailing newline, so stored TEXT is stable across runs.
// Struct fields encode in declaration order and map keys sorted.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// marshalEvidence stores an evidential base as a JSON array.
func marshalEvidence(base []int64) (string, error) {
	if base == nil {
		base = []int64{}
	}
	data, err := marshalJSON(base)
	if err != nil {
		return "", fmt.Errorf("marshal evidence: %w", err)
	}
	return data, nil
}

func unmarshalEvidence(data string) ([]int64, error) {
	base := []int64{}
	if data == "" || data == "[]" {
		return base, nil
	}
	if err := json.Unmarshal([]byte(data), &base); err != nil {
		return nil, fmt.Errorf("unmarshal evidence: %w", err)
	}
	return base, nil
}

func marshalBudget(b nal.Budget) (string, error) {
	data, err := marshalJSON(b)
	if err != nil {
		return "", fmt.Errorf("marshal budget: %w", err)
	}
	return data, nil
}

func unmarshalBudget(data string) (nal.Budget, error) {
	var b nal.Budget
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nal.Budget{}, fmt.Errorf("unmarshal budget: %w", err)
	}
	return b, nil
}
