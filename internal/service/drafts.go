package service

import (
	"context"
	"sync"
)

// Drafts tracks the in-flight generation for each draft key. Starting a new
// generation for a key cancels the one already running, and only the most
// recently started run may deliver increments.
type Drafts struct {
	mu   sync.Mutex
	seq  uint64
	runs map[string]draftRun
}

type draftRun struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewDrafts() *Drafts {
	return &Drafts{runs: map[string]draftRun{}}
}

// draftTicket is one registered run.
type draftTicket struct {
	drafts *Drafts
	key    string
	seq    uint64
	cancel context.CancelFunc
}

// begin registers a run for key and returns its context. An empty key is
// never superseded.
func (d *Drafts) begin(ctx context.Context, key string) (context.Context, *draftTicket) {
	ctx, cancel := context.WithCancel(ctx)
	if key == "" {
		return ctx, &draftTicket{cancel: cancel}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.runs[key]; ok {
		prev.cancel()
	}
	d.seq++
	d.runs[key] = draftRun{seq: d.seq, cancel: cancel}

	return ctx, &draftTicket{drafts: d, key: key, seq: d.seq, cancel: cancel}
}

// InFlight reports how many draft keys have a running generation.
func (d *Drafts) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.runs)
}

// current reports whether this run is still the latest for its key.
func (t *draftTicket) current() bool {
	if t.drafts == nil {
		return true
	}
	t.drafts.mu.Lock()
	defer t.drafts.mu.Unlock()
	run, ok := t.drafts.runs[t.key]
	return ok && run.seq == t.seq
}

func (t *draftTicket) finish() {
	if t.drafts != nil {
		t.drafts.mu.Lock()
		if run, ok := t.drafts.runs[t.key]; ok && run.seq == t.seq {
			delete(t.drafts.runs, t.key)
		}
		t.drafts.mu.Unlock()
	}
	t.cancel()
}
