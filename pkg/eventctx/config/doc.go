// Package config provides configuration loading for event-context trees.
//
// Configuration can be loaded from YAML or JSON files, or constructed
// programmatically from a map. SettingsFrom extracts the toggles the
// engine consumes (trace, processing time, diagnostics store path);
// flow.NewEngineFromConfig is the usual consumer.
package config
