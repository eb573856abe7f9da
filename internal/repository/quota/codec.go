// Package quota persists the daily print quota state.
//
// Every backend stores the whole usage.State document and rewrites it on
// each Save; historical per-day records are never deleted. Load returns the
// document as stored; repairing it is up to the caller.
package quota

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/kidprint/internal/domain/usage"
)

func encodeState(s usage.State) ([]byte, error) {
	if s.DailyCounts == nil {
		s.DailyCounts = map[string]int{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode quota state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (usage.State, error) {
	var s usage.State
	if err := json.Unmarshal(data, &s); err != nil {
		return usage.State{}, fmt.Errorf("decode quota state: %w", err)
	}
	return s, nil
}
