package client

// sentinel marks placeholder values resolved by the backend at commit time.
type sentinel int

const (
	// ServerTimestamp is replaced with the commit-time timestamp by the
	// backend. It may appear at any nesting depth of a write payload and
	// never appears in a read snapshot.
	ServerTimestamp sentinel = iota
)
