package recognition

import (
	"context"
	"errors"
	"testing"
)

type fakeMarker struct {
	calls []string
	err   error
}

func (f *fakeMarker) MarkPresent(_ context.Context, sessionID int64, usn string) error {
	f.calls = append(f.calls, usn)
	return f.err
}

type fakeSummaryFetcher struct {
	present int
	absent  int
	total   int
	err     error
	calls   int
}

func (f *fakeSummaryFetcher) FetchSummary(_ context.Context, _ int64) (int, int, int, error) {
	f.calls++
	return f.present, f.absent, f.total, f.err
}

func TestLedgerConfirmMarksOnce(t *testing.T) {
	marker := &fakeMarker{}
	ledger := NewLedger(marker, nil)
	state := NewSessionState(7)

	confirmed, err := ledger.Confirm(context.Background(), state, "1MS21CS001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !confirmed {
		t.Fatal("expected a new confirmation")
	}

	// Second confirmation is a no-op, no backend call.
	confirmed, err = ledger.Confirm(context.Background(), state, "1MS21CS001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed {
		t.Error("expected repeated confirmation to be skipped")
	}
	if len(marker.calls) != 1 {
		t.Errorf("expected 1 mark call, got %d", len(marker.calls))
	}
}

func TestLedgerConfirmFailureLeavesStudentEligible(t *testing.T) {
	marker := &fakeMarker{err: errors.New("backend down")}
	ledger := NewLedger(marker, nil)
	state := NewSessionState(7)

	confirmed, err := ledger.Confirm(context.Background(), state, "1MS21CS001")
	if err == nil {
		t.Fatal("expected an error")
	}
	if confirmed {
		t.Error("failed mark reported as confirmed")
	}
	if state.Confirmed("1MS21CS001") {
		t.Error("failed mark recorded in session state")
	}

	// Backend recovers; the student can be confirmed on the next attempt.
	marker.err = nil
	confirmed, err = ledger.Confirm(context.Background(), state, "1MS21CS001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !confirmed {
		t.Error("expected confirmation after backend recovery")
	}
}

func TestLedgerConfirmRefreshesCachedSummary(t *testing.T) {
	marker := &fakeMarker{}
	fetcher := &fakeSummaryFetcher{present: 4, absent: 1, total: 25}
	ledger := NewLedger(marker, fetcher)
	state := NewSessionState(7)

	if _, ok := ledger.Summary(); ok {
		t.Fatal("expected no cached summary before the first confirmation")
	}

	if _, err := ledger.Confirm(context.Background(), state, "1MS21CS001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tally, ok := ledger.Summary()
	if !ok {
		t.Fatal("expected a cached summary after confirmation")
	}
	if tally.Present != 4 || tally.Absent != 1 || tally.Total != 25 {
		t.Errorf("unexpected tally: %+v", tally)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 summary fetch, got %d", fetcher.calls)
	}
}

func TestLedgerSummaryFetchFailureKeepsConfirmation(t *testing.T) {
	marker := &fakeMarker{}
	fetcher := &fakeSummaryFetcher{err: errors.New("backend down")}
	ledger := NewLedger(marker, fetcher)
	state := NewSessionState(7)

	confirmed, err := ledger.Confirm(context.Background(), state, "1MS21CS001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !confirmed {
		t.Fatal("summary fetch failure must not undo the confirmation")
	}
	if !state.Confirmed("1MS21CS001") {
		t.Error("expected confirmation recorded despite fetch failure")
	}
	if _, ok := ledger.Summary(); ok {
		t.Error("failed fetch should leave the cache empty")
	}
}

func TestLedgerConfirmSkipsStaleSummary(t *testing.T) {
	marker := &fakeMarker{}
	fetcher := &fakeSummaryFetcher{present: 1, absent: 0, total: 3}
	ledger := NewLedger(marker, fetcher)
	state := NewSessionState(7)

	_, _ = ledger.Confirm(context.Background(), state, "1MS21CS001")

	// A no-op confirmation must not hit the backend again.
	_, _ = ledger.Confirm(context.Background(), state, "1MS21CS001")
	if fetcher.calls != 1 {
		t.Errorf("expected no refresh on a skipped confirmation, got %d fetches", fetcher.calls)
	}
}
