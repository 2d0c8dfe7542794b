package config

// Config holds loaded configuration values keyed by name.
//
// Accessors fall back to the supplied default when a key is absent or
// holds a value of the wrong type. Only the types the engine settings
// need are exposed.
type Config struct {
	values map[string]any
}

// New creates a Config from the given values. A nil map yields an empty
// Config whose accessors always return their defaults.
func New(values map[string]any) Config {
	if values == nil {
		values = make(map[string]any)
	}
	return Config{values: values}
}

// String returns the string stored under key, or fallback.
func (c Config) String(key, fallback string) string {
	if s, ok := c.values[key].(string); ok {
		return s
	}
	return fallback
}

// Bool returns the boolean stored under key, or fallback.
func (c Config) Bool(key string, fallback bool) bool {
	if b, ok := c.values[key].(bool); ok {
		return b
	}
	return fallback
}
