package recognition

// SessionState tracks per-session recognition progress: consecutive-frame
// hit counters and the set of students already confirmed present. State is
// scoped to one attendance session and discarded when the session ends.
type SessionState struct {
	SessionID int64
	hits      map[string]int
	confirmed map[string]bool
}

func NewSessionState(sessionID int64) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		hits:      make(map[string]int),
		confirmed: make(map[string]bool),
	}
}

// Confirmed reports whether the student has already been confirmed present
// in this session.
func (s *SessionState) Confirmed(usn string) bool {
	return s.confirmed[usn]
}

// SetConfirmed records a successful confirmation. Once set the student is
// skipped for the rest of the session.
func (s *SessionState) SetConfirmed(usn string) {
	s.confirmed[usn] = true
}

// Hits returns the current consecutive-frame counter for a student.
func (s *SessionState) Hits(usn string) int {
	return s.hits[usn]
}

// Debouncer requires a student to be matched in a number of consecutive
// frames before confirming them, filtering out one-frame misidentifications.
type Debouncer struct {
	required int
}

func NewDebouncer(required int) *Debouncer {
	if required < 1 {
		required = 1
	}
	return &Debouncer{required: required}
}

// ObserveFrame feeds one frame's matched USNs into the session state and
// returns the students whose counters just reached the required streak.
// Counters of students tracked in previous frames but absent from this one
// reset to zero. Already-confirmed students are ignored entirely. A fired
// student's counter resets so a failed confirmation downstream requires a
// fresh streak.
func (d *Debouncer) ObserveFrame(state *SessionState, matched []string) []string {
	seen := make(map[string]bool, len(matched))
	var fired []string

	for _, usn := range matched {
		if state.confirmed[usn] || seen[usn] {
			continue
		}
		seen[usn] = true

		state.hits[usn]++
		if state.hits[usn] >= d.required {
			fired = append(fired, usn)
			delete(state.hits, usn)
		}
	}

	// A streak only counts when unbroken. Anyone tracked but not matched
	// this frame starts over.
	for usn := range state.hits {
		if !seen[usn] {
			delete(state.hits, usn)
		}
	}

	return fired
}
