// Package replay records the inputs of a run and plays them back through a
// fresh engine, reproducing the judgement sequence exactly. Logs are opaque
// JSON payloads; storage keeps them as blobs.
package replay

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/tui-mania/internal/core"
)

// Version is the current log format version.
const Version = 1

// Event is one recorded input, stamped with the song time it carried
// through the queue.
type Event struct {
	Time   core.SongTime    `json:"t"`
	Column int              `json:"col"`
	Action core.InputAction `json:"a"`
}

// RateChange is one applied playback rate change and the song time it took
// effect.
type RateChange struct {
	Time core.SongTime `json:"t"`
	Rate float64       `json:"rate"`
}

// Log is everything needed to reproduce a run: the chart identity, the hit
// window it was judged with, the starting rate, and every input and rate
// change in application order.
type Log struct {
	Version     int          `json:"version"`
	ChartHash   string       `json:"chart_hash"`
	Rate        float64      `json:"rate"`
	WindowMode  string       `json:"window_mode"`
	WindowValue float64      `json:"window_value"`
	Events      []Event      `json:"events"`
	RateChanges []RateChange `json:"rate_changes,omitempty"`
}

// Marshal encodes the log for storage.
func (l *Log) Marshal() ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("replay: encode log: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a stored log and rejects payloads this version cannot
// play back.
func Unmarshal(data []byte) (*Log, error) {
	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("replay: decode log: %w", err)
	}
	if l.Version != Version {
		return nil, fmt.Errorf("replay: unsupported log version %d", l.Version)
	}
	if l.ChartHash == "" {
		return nil, fmt.Errorf("replay: log has no chart hash")
	}
	if l.Rate <= 0 {
		return nil, fmt.Errorf("replay: log has invalid rate %v", l.Rate)
	}
	return &l, nil
}
