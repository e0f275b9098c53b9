package logging

import "time"

// Config controls the event pipeline. CategoryMinimum overrides the global
// severity floor for a single category, so combat chatter can be filtered
// without muting match lifecycle events.
type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	CategoryMinimum  map[string]Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	MaxBatch      int
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

// DefaultConfig sizes the queue for a 60Hz tick that can burst a handful
// of combat events per step, and always lets match lifecycle through.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:    []string{"console"},
		BufferSize:      1024,
		MinimumSeverity: SeverityInfo,
		CategoryMinimum: map[string]Severity{
			CategoryMatch: SeverityDebug,
		},
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      64,
			FlushInterval: time.Second,
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// MinimumFor resolves the severity floor for a category.
func (c Config) MinimumFor(category string) Severity {
	if sev, ok := c.CategoryMinimum[category]; ok {
		return sev
	}
	return c.MinimumSeverity
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
