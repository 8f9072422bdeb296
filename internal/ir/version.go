package ir

// Version constants for the Structural IR and the synthesis engine.
const (
	// IRVersion is the Structural IR schema version.
	IRVersion = "1"

	// EngineVersion is the dadda engine version.
	EngineVersion = "0.1.0"
)
