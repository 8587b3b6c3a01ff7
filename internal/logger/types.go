// Package logger provides structured logging for the crawler.
package logger

// Config represents the logger configuration.
type Config struct {
	// Level is the minimum level to log: debug, info, warn, error, fatal.
	Level string `yaml:"level"`
	// Encoding selects the output format: console or json.
	Encoding string `yaml:"encoding"`
	// Development enables colored, human-oriented output.
	Development bool `yaml:"development"`
}
