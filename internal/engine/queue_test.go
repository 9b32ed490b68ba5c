package engine

import (
	"testing"

	"github.com/vovakirdan/tui-mania/internal/core"
)

func TestDrainSortsByTimestamp(t *testing.T) {
	q := NewInputQueue()
	q.Push(core.InputEvent{Time: core.FromMillis(300), Column: 1, Action: core.Press})
	q.Push(core.InputEvent{Time: core.FromMillis(100), Column: 0, Action: core.Press})
	q.Push(core.InputEvent{Time: core.FromMillis(200), Column: 2, Action: core.Release})

	got := q.Drain(core.FromMillis(300), core.FromMillis(500))
	if len(got) != 3 {
		t.Fatalf("drained %d events, expected 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Before(got[i-1]) {
			t.Errorf("event %d out of order: %+v after %+v", i, got[i-1], got[i])
		}
	}

	if again := q.Drain(core.FromMillis(300), core.FromMillis(500)); len(again) != 0 {
		t.Errorf("second drain returned %d events, expected none", len(again))
	}
}

func TestDrainDropsStaleEvents(t *testing.T) {
	q := NewInputQueue()
	q.Push(core.InputEvent{Time: core.FromMillis(100), Column: 0, Action: core.Press})
	q.Push(core.InputEvent{Time: core.FromMillis(950), Column: 1, Action: core.Press})

	got := q.Drain(core.FromMillis(1000), core.FromMillis(200))
	if len(got) != 1 || got[0].Column != 1 {
		t.Fatalf("Drain = %+v, expected only the fresh event", got)
	}
	if q.StaleDropped() != 1 {
		t.Errorf("StaleDropped = %d, expected 1", q.StaleDropped())
	}
}

func TestClearDiscardsWithoutCounting(t *testing.T) {
	q := NewInputQueue()
	q.Push(core.InputEvent{Time: core.FromMillis(100), Column: 0, Action: core.Press})
	q.Clear()

	if got := q.Drain(core.FromMillis(10000), 1); len(got) != 0 {
		t.Errorf("drain after clear returned %d events", len(got))
	}
	if q.StaleDropped() != 0 {
		t.Errorf("StaleDropped = %d after clear, expected 0", q.StaleDropped())
	}
}

func TestPublisherLatest(t *testing.T) {
	p := NewPublisher()
	if p.Latest() != nil {
		t.Fatal("Latest() before any publish should be nil")
	}

	first := &Snapshot{Song: core.FromMillis(1)}
	second := &Snapshot{Song: core.FromMillis(2)}
	p.Publish(first)
	p.Publish(second)

	if got := p.Latest(); got != second {
		t.Errorf("Latest() = %+v, expected the most recent snapshot", got)
	}
}
