package recognition

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// FrameSource produces face descriptors for the current camera frame. One
// call corresponds to one recognition pass; the source owns detection and
// descriptor extraction.
type FrameSource interface {
	NextDescriptors(ctx context.Context) ([][]float32, error)
}

// Runner drives the recognition loop for one attendance session: every tick
// it pulls a frame's descriptors, matches them against the roster, feeds the
// debouncer and confirms students through the ledger. Ticks that arrive
// while a pass is still running are dropped, never queued, so a slow
// extractor cannot build a backlog.
type Runner struct {
	id       string
	source   FrameSource
	matcher  *Matcher
	debounce *Debouncer
	ledger   *Ledger
	interval time.Duration
}

func NewRunner(source FrameSource, matcher *Matcher, debounce *Debouncer, ledger *Ledger, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		id:       uuid.NewString(),
		source:   source,
		matcher:  matcher,
		debounce: debounce,
		ledger:   ledger,
		interval: interval,
	}
}

// ID returns the unique identifier of this watch run, used to correlate
// log lines.
func (r *Runner) ID() string {
	return r.id
}

// Run executes recognition passes until the context is cancelled. Errors
// from a single pass are logged and the loop continues; only context
// cancellation stops it.
func (r *Runner) Run(ctx context.Context, state *SessionState) error {
	log.Printf("[%s] watching session %d, pass interval %s", r.id, state.SessionID, r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] watch stopped", r.id)
			return ctx.Err()
		case <-ticker.C:
			if err := r.pass(ctx, state); err != nil {
				log.Printf("[%s] recognition pass failed: %v", r.id, err)
			}
			// A pass slower than the interval leaves a buffered tick
			// behind. Drop it so the next pass waits for a fresh
			// interval boundary instead of running back-to-back.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (r *Runner) pass(ctx context.Context, state *SessionState) error {
	descriptors, err := r.source.NextDescriptors(ctx)
	if err != nil {
		return err
	}

	matched := r.matcher.MatchAll(descriptors)
	for _, usn := range r.debounce.ObserveFrame(state, matched) {
		confirmed, err := r.ledger.Confirm(ctx, state, usn)
		if err != nil {
			log.Printf("[%s] %v", r.id, err)
			continue
		}
		if confirmed {
			log.Printf("[%s] %s confirmed in session %d", r.id, usn, state.SessionID)
			if tally, ok := r.ledger.Summary(); ok {
				log.Printf("[%s] session %d: %d present, %d absent, %d registered",
					r.id, state.SessionID, tally.Present, tally.Absent, tally.Total)
			}
		}
	}

	return nil
}
