package engine

import "sync/atomic"

// Publisher hands snapshots from the logic schedule to any number of reader
// goroutines. Publish never blocks on readers and Latest never blocks the
// writer; readers may see the same snapshot twice and must treat it as
// read-only.
type Publisher struct {
	latest atomic.Pointer[Snapshot]
}

// NewPublisher returns a publisher with no snapshot yet; Latest returns nil
// until the first Publish.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish makes snap the latest snapshot. The caller must not mutate it
// afterwards.
func (p *Publisher) Publish(snap *Snapshot) {
	p.latest.Store(snap)
}

// Latest returns the most recently published snapshot, or nil.
func (p *Publisher) Latest() *Snapshot {
	return p.latest.Load()
}
