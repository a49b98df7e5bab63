// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Descriptor constants
const (
	// DescriptorDim is the fixed dimension of face descriptors produced by the
	// extractor's recognition model
	DescriptorDim = 128
)

// Recognition constants
const (
	// DefaultDistanceThreshold is the default maximum Euclidean distance for a
	// descriptor to count as a match. Lower values = stricter matching
	DefaultDistanceThreshold = 0.6

	// DefaultRequiredHits is the number of consecutive matching frames required
	// before a student is confirmed present
	DefaultRequiredHits = 3

	// DefaultFrameIntervalMs is the default recognition pass interval in milliseconds
	DefaultFrameIntervalMs = 1000
)

// Roster index constants
const (
	// RosterIndexMinSize is the roster size above which the HNSW index is used
	// instead of a linear scan
	RosterIndexMinSize = 64

	// HNSWMaxNeighbors is the M parameter for the roster HNSW graph
	HNSWMaxNeighbors = 16
)

// Attendance status values as stored in the ledger
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
)
