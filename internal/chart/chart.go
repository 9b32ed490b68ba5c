package chart

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-mania/internal/core"
)

// Meta carries chart metadata supplied by the parsing collaborator.
type Meta struct {
	Title  string
	Artist string
	Keys   int
	BPM    float64
}

// Chart holds the validated, column-major note layout for one beatmap.
// Construction re-checks the ordering invariants even though the parsing
// collaborator is trusted for structural validity.
type Chart struct {
	meta    Meta
	notes   []Note   // all notes, ordered by (Time, Column)
	columns [][]Note // per-column views, ordered by Time
	hash    string
}

// New builds a Chart from a note list. The list is copied and sorted; the
// caller's slice is not retained. Malformed charts (empty, bad column,
// duplicate head, inverted hold) fail construction and no partial Chart
// is ever returned.
func New(meta Meta, notes []Note) (*Chart, error) {
	if meta.Keys <= 0 {
		return nil, fmt.Errorf("chart: key count must be positive, got %d", meta.Keys)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("chart: no notes")
	}

	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].Column < sorted[j].Column
	})

	columns := make([][]Note, meta.Keys)
	for _, n := range sorted {
		if n.Column < 0 || n.Column >= meta.Keys {
			return nil, fmt.Errorf("chart: note at %s has column %d outside [0,%d)", n.Time, n.Column, meta.Keys)
		}
		if n.IsHold() && n.EndTime <= n.Time {
			return nil, fmt.Errorf("chart: hold at %s in column %d ends at or before its start", n.Time, n.Column)
		}
		col := columns[n.Column]
		if len(col) > 0 && col[len(col)-1].Time == n.Time {
			return nil, fmt.Errorf("chart: duplicate note at %s in column %d", n.Time, n.Column)
		}
		columns[n.Column] = append(col, n)
	}

	c := &Chart{meta: meta, notes: sorted, columns: columns}
	c.hash = c.computeHash()
	return c, nil
}

// Meta returns the chart metadata.
func (c *Chart) Meta() Meta { return c.meta }

// Keys returns the column count.
func (c *Chart) Keys() int { return c.meta.Keys }

// NoteCount returns the total number of notes.
func (c *Chart) NoteCount() int { return len(c.notes) }

// Notes returns the full time-ordered note list. Callers must not mutate it.
func (c *Chart) Notes() []Note { return c.notes }

// Column returns the ordered note sequence for one column.
// Callers must not mutate it.
func (c *Chart) Column(col int) []Note {
	if col < 0 || col >= len(c.columns) {
		return nil
	}
	return c.columns[col]
}

// LastNoteEnd returns the latest head or tail time in the chart. The run is
// judgeable until this time plus the miss boundary.
func (c *Chart) LastNoteEnd() core.SongTime {
	var last core.SongTime
	for _, n := range c.notes {
		end := n.Time
		if n.IsHold() {
			end = n.EndTime
		}
		if end > last {
			last = end
		}
	}
	return last
}

// Hash returns a stable identifier for the note layout, used to key saved
// runs and to pair replays with the chart they were recorded against.
func (c *Chart) Hash() string { return c.hash }

func (c *Chart) computeHash() string {
	h := sha256.New()
	for _, n := range c.notes {
		fmt.Fprintf(h, "%d:%d:%d:%d\n", n.Column, int64(n.Time), int64(n.EndTime), n.Kind)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
