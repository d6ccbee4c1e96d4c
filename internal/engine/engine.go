// Package engine owns the current state snapshot and reconciles the local
// and remote copies.
//
// The model is whole-snapshot last-writer-wins: two concurrent writers can
// race, and the engine favors availability over strict consistency. That is
// acceptable at the expected write frequency (one human operator at a time);
// it is not suitable for multi-writer high-frequency use.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/errors"
	"github.com/tylertestin/InnovationAward/internal/model"
	"github.com/tylertestin/InnovationAward/internal/persist"
)

// Mutation derives a new snapshot from the current one. Returning nil keeps
// the current snapshot (a no-op mutation).
type Mutation func(s *model.AppState) *model.AppState

// Engine is the single owner of the "current" snapshot pointer. All
// mutations thread through Apply, which guarantees each one sees the
// previous mutation's output.
type Engine struct {
	mu      sync.Mutex
	current *model.AppState

	local  persist.Local
	remote persist.Remote // nil when sync is disabled
	clk    clock.Clock

	onChange func(s *model.AppState)
	logf     func(format string, args ...any)
}

// Option configures the engine.
type Option func(*Engine)

// WithOnChange registers a callback invoked with every snapshot the engine
// adopts, whether from a local mutation or a remote pull. Called outside the
// engine lock.
func WithOnChange(fn func(s *model.AppState)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// WithLogf replaces the logger used for swallowed persistence failures.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(e *Engine) { e.logf = logf }
}

// New creates an engine. remote may be nil for local-only operation.
func New(local persist.Local, remote persist.Remote, clk clock.Clock, opts ...Option) *Engine {
	e := &Engine{
		current: model.NewState(),
		local:   local,
		remote:  remote,
		clk:     clk,
		logf:    log.Printf,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load hydrates the current snapshot from the local slot. A missing or
// unreadable slot falls back to an empty snapshot; read failures are logged
// and swallowed, never surfaced.
func (e *Engine) Load() {
	loaded, err := e.local.Load()
	if err != nil {
		e.logf("local load failed, starting empty: %v", err)
		return
	}
	if loaded == nil {
		return
	}
	e.mu.Lock()
	e.current = loaded
	e.mu.Unlock()
}

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (e *Engine) Snapshot() *model.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Apply runs a mutation against the current snapshot, stamps the result as
// the new aggregate, writes it to the local slot synchronously, and pushes
// it to the remote copy in the background.
//
// The local write failure is swallowed (logged); the engine keeps operating
// on the in-memory snapshot. The push is fire-and-forget: failure is logged,
// not retried, and never blocks or rolls back the local write.
func (e *Engine) Apply(mutate Mutation) *model.AppState {
	e.mu.Lock()
	next := mutate(e.current)
	if next == nil || next == e.current {
		cur := e.current
		e.mu.Unlock()
		return cur
	}
	next.UpdatedAt = e.clk.Now()
	e.current = next

	if err := e.local.Save(next); err != nil {
		e.logf("local save failed: %v", err)
	}
	e.mu.Unlock()

	e.push(next)
	e.notify(next)
	return next
}

// ImportState replaces the whole state from raw export-file JSON. This is
// destructive: equivalent to a reset followed by a bulk load. Missing
// top-level fields decode as empty collections; invalid JSON leaves the
// store unchanged and is reported to the caller.
func (e *Engine) ImportState(raw []byte) (*model.AppState, error) {
	imported, err := model.DecodeState(raw)
	if err != nil {
		return nil, errors.NewMalformedImport("state file is not valid JSON")
	}
	return e.Apply(func(*model.AppState) *model.AppState {
		return imported
	}), nil
}

// ExportState serializes the current snapshot verbatim, pretty-printed.
func (e *Engine) ExportState() ([]byte, error) {
	return model.ExportState(e.Snapshot())
}

// Reset replaces the state with an empty snapshot.
func (e *Engine) Reset() *model.AppState {
	return e.Apply(func(*model.AppState) *model.AppState {
		return model.NewState()
	})
}

// Adopt installs a snapshot received from a sync peer without restamping it.
// Restamping here would make every relayed copy look freshest and defeat the
// recency comparison. The snapshot is persisted locally (failure swallowed).
func (e *Engine) Adopt(s *model.AppState) {
	if s == nil {
		return
	}
	e.mu.Lock()
	e.current = s
	if err := e.local.Save(s); err != nil {
		e.logf("local save failed: %v", err)
	}
	e.mu.Unlock()

	e.notify(s)
}

// StartPull begins the periodic remote pull and returns a stop function.
// The schedule must be stopped when the consuming surface is torn down;
// a leaked ticker would keep writing into a disposed view. Stopping is
// idempotent. With no remote configured the pull is a no-op.
func (e *Engine) StartPull(ctx context.Context, interval time.Duration) (stop func()) {
	if e.remote == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.pullOnce(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// pullOnce fetches the remote snapshot and adopts it iff it is strictly more
// recent than the local one. The comparison runs against the current snapshot
// at the moment the fetch resolves, not against a snapshot captured when the
// pull was initiated: a pull racing a fresh local mutation must not clobber
// the newer local write. Fetch failures are logged and swallowed.
func (e *Engine) pullOnce(ctx context.Context) {
	fetched, err := e.remote.Fetch(ctx)
	if err != nil {
		e.logf("remote pull failed: %v", err)
		return
	}
	if fetched == nil {
		return
	}

	e.mu.Lock()
	if !model.Newer(fetched, e.current) {
		e.mu.Unlock()
		return
	}
	e.current = fetched
	if err := e.local.Save(fetched); err != nil {
		e.logf("local save failed: %v", err)
	}
	e.mu.Unlock()

	e.notify(fetched)
}

// push sends the snapshot to the remote copy as a detached background task.
// The discard policy is deliberate: failures are logged, not retried, and
// never surfaced to the caller.
func (e *Engine) push(s *model.AppState) {
	if e.remote == nil {
		return
	}
	go func() {
		if err := e.remote.Push(context.Background(), s); err != nil {
			e.logf("remote push failed: %v", err)
		}
	}()
}

func (e *Engine) notify(s *model.AppState) {
	if e.onChange != nil {
		e.onChange(s)
	}
}
