package recognition

import "testing"

func TestDebouncerFiresAfterConsecutiveFrames(t *testing.T) {
	d := NewDebouncer(3)
	state := NewSessionState(1)

	if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 0 {
		t.Fatalf("fired after 1 frame: %v", fired)
	}
	if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 0 {
		t.Fatalf("fired after 2 frames: %v", fired)
	}

	fired := d.ObserveFrame(state, []string{"1MS21CS001"})
	if len(fired) != 1 || fired[0] != "1MS21CS001" {
		t.Fatalf("expected confirmation on 3rd consecutive frame, got %v", fired)
	}
}

func TestDebouncerResetsOnMissedFrame(t *testing.T) {
	d := NewDebouncer(3)
	state := NewSessionState(1)

	d.ObserveFrame(state, []string{"1MS21CS001"})
	d.ObserveFrame(state, []string{"1MS21CS001"})

	// The streak breaks; the student must start over.
	d.ObserveFrame(state, nil)

	d.ObserveFrame(state, []string{"1MS21CS001"})
	if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 0 {
		t.Fatalf("fired after broken streak: %v", fired)
	}
	if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 1 {
		t.Fatalf("expected confirmation after fresh 3-frame streak, got %v", fired)
	}
}

func TestDebouncerIgnoresConfirmedStudents(t *testing.T) {
	d := NewDebouncer(2)
	state := NewSessionState(1)
	state.SetConfirmed("1MS21CS001")

	for i := 0; i < 5; i++ {
		if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 0 {
			t.Fatalf("confirmed student fired again: %v", fired)
		}
	}
}

func TestDebouncerTracksStudentsIndependently(t *testing.T) {
	d := NewDebouncer(3)
	state := NewSessionState(1)

	d.ObserveFrame(state, []string{"1MS21CS001", "1MS21CS002"})
	d.ObserveFrame(state, []string{"1MS21CS001", "1MS21CS002"})

	// One student leaves the frame; only the other completes the streak.
	fired := d.ObserveFrame(state, []string{"1MS21CS001"})
	if len(fired) != 1 || fired[0] != "1MS21CS001" {
		t.Fatalf("expected only 1MS21CS001, got %v", fired)
	}

	if state.Hits("1MS21CS002") != 0 {
		t.Errorf("expected reset counter for 1MS21CS002, got %d", state.Hits("1MS21CS002"))
	}
}

func TestDebouncerCounterResetsAfterFiring(t *testing.T) {
	d := NewDebouncer(2)
	state := NewSessionState(1)

	d.ObserveFrame(state, []string{"1MS21CS001"})
	fired := d.ObserveFrame(state, []string{"1MS21CS001"})
	if len(fired) != 1 {
		t.Fatalf("expected a confirmation, got %v", fired)
	}

	// Confirmation was not recorded (e.g. the mark failed), so another
	// full streak is required before firing again.
	if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 0 {
		t.Fatalf("fired without a fresh streak: %v", fired)
	}
	if fired := d.ObserveFrame(state, []string{"1MS21CS001"}); len(fired) != 1 {
		t.Fatalf("expected confirmation after fresh streak, got %v", fired)
	}
}

func TestDebouncerDeduplicatesWithinFrame(t *testing.T) {
	d := NewDebouncer(3)
	state := NewSessionState(1)

	// The same student detected twice in one frame counts once.
	d.ObserveFrame(state, []string{"1MS21CS001", "1MS21CS001"})
	if hits := state.Hits("1MS21CS001"); hits != 1 {
		t.Errorf("expected 1 hit after duplicate detections, got %d", hits)
	}
}
