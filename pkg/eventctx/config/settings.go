package config

// Settings holds the process-wide toggles for event-context trees.
// They are passed explicitly into context creation rather than read from
// ambient global state, keeping the core testable.
type Settings struct {
	// TraceEnabled turns on the processors trace for created contexts.
	TraceEnabled bool

	// ProcessingTimeEnabled turns on processing-time accumulation.
	ProcessingTimeEnabled bool

	// DiagnosticsDB is the path of the SQLite trace store the engine
	// opens at construction. Empty disables persistent diagnostics.
	DiagnosticsDB string
}

// Configuration keys for Settings.
const (
	KeyTraceEnabled          = "trace_enabled"
	KeyProcessingTimeEnabled = "processing_time_enabled"
	KeyDiagnosticsDB         = "diagnostics_db"
)

// SettingsFrom extracts Settings from a Config.
// Missing keys default to disabled.
func SettingsFrom(c Config) Settings {
	return Settings{
		TraceEnabled:          c.Bool(KeyTraceEnabled, false),
		ProcessingTimeEnabled: c.Bool(KeyProcessingTimeEnabled, false),
		DiagnosticsDB:         c.String(KeyDiagnosticsDB, ""),
	}
}
