package ir

// Version constants for the wire encoding and engine.
const (
	// WireVersion is the canonical encoding version. It matches the suffix
	// of the hash domains.
	WireVersion = "1"

	// EngineVersion is the symcore engine version.
	EngineVersion = "0.1.0"
)
