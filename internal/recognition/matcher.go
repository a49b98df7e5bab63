package recognition

// Matcher resolves observed face descriptors against a roster snapshot.
// An observation matches only when its nearest roster descriptor lies
// strictly below the distance threshold.
type Matcher struct {
	roster    *Roster
	threshold float64
}

func NewMatcher(roster *Roster, threshold float64) *Matcher {
	return &Matcher{
		roster:    roster,
		threshold: threshold,
	}
}

// Match returns the USN of the nearest roster profile when its distance to
// the observed descriptor is strictly below the threshold. Observations at
// or above the threshold are treated as unknown faces.
func (m *Matcher) Match(observed []float32) (string, bool) {
	p, dist, ok := m.roster.Nearest(observed)
	if !ok {
		return "", false
	}
	if dist >= m.threshold {
		return "", false
	}
	return p.USN, true
}

// MatchAll resolves a batch of descriptors from a single frame. Unknown
// faces are dropped; duplicates are kept so the debouncer sees every
// detection.
func (m *Matcher) MatchAll(observed [][]float32) []string {
	var usns []string
	for _, desc := range observed {
		if usn, ok := m.Match(desc); ok {
			usns = append(usns, usn)
		}
	}
	return usns
}
