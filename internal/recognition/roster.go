package recognition

import (
	"fmt"
	"os"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Profile is one roster entry: a student identity with its reference
// descriptor.
type Profile struct {
	USN        string
	Name       string
	Descriptor []float32
}

// Roster is an immutable snapshot of the student directory used by the
// matcher for the lifetime of one attendance session. Registrations made
// after the snapshot is taken are not visible until a new session starts;
// a stale snapshot keeps matching predictable for the session's duration.
type Roster struct {
	profiles []Profile
	byUSN    map[string]*Profile
	graph    *hnsw.Graph[string]
}

// NewRoster creates a roster snapshot from the given profiles. Profiles with
// empty descriptors are kept for lookup but never match.
func NewRoster(profiles []Profile) *Roster {
	r := &Roster{
		profiles: profiles,
		byUSN:    make(map[string]*Profile, len(profiles)),
	}
	for i := range profiles {
		r.byUSN[profiles[i].USN] = &profiles[i]
	}
	return r
}

// Len returns the number of roster entries.
func (r *Roster) Len() int {
	return len(r.profiles)
}

// Profiles returns the roster entries in snapshot order.
func (r *Roster) Profiles() []Profile {
	return r.profiles
}

// Get returns the profile for a USN.
func (r *Roster) Get(usn string) (*Profile, bool) {
	p, ok := r.byUSN[usn]
	return p, ok
}

// BuildIndex builds an in-memory HNSW graph over the roster descriptors for
// O(log N) nearest lookups. Small rosters skip the graph; the linear scan is
// faster there and keeps first-encountered tie-breaking.
func (r *Roster) BuildIndex() {
	if len(r.profiles) < constants.RosterIndexMinSize {
		return
	}

	g := hnsw.NewGraph[string]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	for i := range r.profiles {
		p := &r.profiles[i]
		if len(p.Descriptor) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(p.USN, p.Descriptor))
	}

	r.graph = g
}

// SaveIndex persists the HNSW graph to disk so the next watch run can skip
// the build. A no-op when no index was built.
func (r *Roster) SaveIndex(path string) error {
	if r.graph == nil {
		_ = os.Remove(path)
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	if err := r.graph.Export(f); err != nil {
		return fmt.Errorf("exporting index: %w", err)
	}
	return nil
}

// LoadIndex loads a previously saved HNSW graph. A saved graph whose size no
// longer matches the roster is stale (students registered since the save) and
// is rebuilt instead.
func (r *Roster) LoadIndex(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.BuildIndex()
		return nil
	}

	saved, err := hnsw.LoadSavedGraph[string](path)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	indexed := 0
	for i := range r.profiles {
		if len(r.profiles[i].Descriptor) > 0 {
			indexed++
		}
	}
	if saved.Len() != indexed || indexed < constants.RosterIndexMinSize {
		r.BuildIndex()
		return nil
	}

	r.graph = saved.Graph
	return nil
}

// Nearest returns the roster profile closest to the observed descriptor and
// the Euclidean distance to it. When no index is built the roster is scanned
// linearly and the first profile achieving the minimum wins ties.
func (r *Roster) Nearest(observed []float32) (*Profile, float64, bool) {
	if r.graph != nil {
		return r.nearestIndexed(observed)
	}
	return r.nearestLinear(observed)
}

func (r *Roster) nearestIndexed(observed []float32) (*Profile, float64, bool) {
	neighbors := r.graph.Search(observed, 1)
	if len(neighbors) == 0 {
		return nil, 0, false
	}
	p, ok := r.byUSN[neighbors[0].Key]
	if !ok {
		return nil, 0, false
	}
	return p, EuclideanDistance(observed, p.Descriptor), true
}

func (r *Roster) nearestLinear(observed []float32) (*Profile, float64, bool) {
	var best *Profile
	bestDist := 0.0
	for i := range r.profiles {
		p := &r.profiles[i]
		if len(p.Descriptor) == 0 {
			continue
		}
		dist := EuclideanDistance(observed, p.Descriptor)
		if best == nil || dist < bestDist {
			best = p
			bestDist = dist
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best, bestDist, true
}
