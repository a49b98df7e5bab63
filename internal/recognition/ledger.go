package recognition

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Marker records a confirmed student as present in a session. Marking is
// idempotent on the backend, so a retried confirmation cannot double-count.
type Marker interface {
	MarkPresent(ctx context.Context, sessionID int64, usn string) error
}

// SummaryFetcher reads back session attendance counts.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, sessionID int64) (present, absent, total int, err error)
}

// Summary is the last known attendance tally for the watched session.
type Summary struct {
	Present int
	Absent  int
	Total   int
}

// Ledger turns debouncer confirmations into attendance records. A student
// is recorded as confirmed in the session state only after the mark call
// succeeds; a failed call leaves them eligible for another attempt once
// they re-accumulate a streak. Each successful mark also refreshes a
// locally cached summary so the loop can report progress without an extra
// round trip per status line.
type Ledger struct {
	marker    Marker
	summaries SummaryFetcher

	mu      sync.Mutex
	summary *Summary
}

func NewLedger(marker Marker, summaries SummaryFetcher) *Ledger {
	return &Ledger{
		marker:    marker,
		summaries: summaries,
	}
}

// Confirm marks the student present and updates the session state. Returns
// true when a new confirmation was recorded, false when the student was
// already confirmed or the mark failed.
func (l *Ledger) Confirm(ctx context.Context, state *SessionState, usn string) (bool, error) {
	if state.Confirmed(usn) {
		return false, nil
	}

	if err := l.marker.MarkPresent(ctx, state.SessionID, usn); err != nil {
		return false, fmt.Errorf("could not mark %s present in session %d: %w", usn, state.SessionID, err)
	}

	state.SetConfirmed(usn)
	l.refreshSummary(ctx, state.SessionID)
	log.Printf("confirmed %s present in session %d", usn, state.SessionID)
	return true, nil
}

// refreshSummary updates the cached tally after a successful mark. Fetch
// failures only cost the cache an update, never the confirmation.
func (l *Ledger) refreshSummary(ctx context.Context, sessionID int64) {
	if l.summaries == nil {
		return
	}

	present, absent, total, err := l.summaries.FetchSummary(ctx, sessionID)
	if err != nil {
		log.Printf("could not refresh summary for session %d: %v", sessionID, err)
		return
	}

	l.mu.Lock()
	l.summary = &Summary{Present: present, Absent: absent, Total: total}
	l.mu.Unlock()
}

// Summary returns the cached attendance tally. The second return is false
// until the first successful refresh.
func (l *Ledger) Summary() (Summary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.summary == nil {
		return Summary{}, false
	}
	return *l.summary, true
}
