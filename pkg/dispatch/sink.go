package dispatch

import (
	"context"
	"sync"
)

// Sink delivers a batch of commands to the cameras.
type Sink interface {
	Send(ctx context.Context, cmds []Command) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, cmds []Command) error

// Send calls f.
func (f SinkFunc) Send(ctx context.Context, cmds []Command) error {
	return f(ctx, cmds)
}

// Recorder is an in-memory Sink that keeps every batch it receives.
type Recorder struct {
	mu      sync.Mutex
	batches [][]Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records a copy of cmds.
func (r *Recorder) Send(_ context.Context, cmds []Command) error {
	batch := make([]Command, len(cmds))
	copy(batch, cmds)

	r.mu.Lock()
	r.batches = append(r.batches, batch)
	r.mu.Unlock()
	return nil
}

// Batches returns the recorded batches in arrival order.
func (r *Recorder) Batches() [][]Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]Command, len(r.batches))
	copy(out, r.batches)
	return out
}

// Commands returns every recorded command, flattened.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Command
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

// Last returns the most recent command, if any.
func (r *Recorder) Last() (Command, bool) {
	cmds := r.Commands()
	if len(cmds) == 0 {
		return Command{}, false
	}
	return cmds[len(cmds)-1], true
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.batches = nil
	r.mu.Unlock()
}
