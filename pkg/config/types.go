// Package config provides configuration loading and validation for ChatLyze.
package config

import (
	"regexp"
	"time"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

// Config is the root configuration structure loaded from YAML.
// Every section is optional; an empty config leaves the built-in
// behavior untouched.
type Config struct {
	Patterns     []PatternConfig   `yaml:"patterns,omitempty"`
	Placeholders PlaceholderConfig `yaml:"placeholders,omitempty"`
	Archive      ArchiveConfig     `yaml:"archive,omitempty"`
	Webhooks     []WebhookConfig   `yaml:"webhooks,omitempty"`
}

// PatternConfig defines an extra message header pattern, tried after the
// built-in formats.
type PatternConfig struct {
	// Name identifies the pattern in output and errors.
	Name string `yaml:"name"`

	// Pattern is a regex with exactly four capture groups in the order
	// date, time, author, body.
	Pattern string `yaml:"pattern"`

	// Example is an optional header line the pattern must match.
	Example string `yaml:"example,omitempty"`

	// compiledPattern is the pre-compiled regex (populated during validation).
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled regex pattern.
func (p *PatternConfig) CompiledPattern() *regexp.Regexp {
	return p.compiledPattern
}

// PlaceholderConfig lists extra placeholder substrings recognized in
// message bodies, added to the built-in sets. Matching is case-insensitive.
type PlaceholderConfig struct {
	Media   []string `yaml:"media,omitempty"`
	Deleted []string `yaml:"deleted,omitempty"`
}

// ArchiveConfig controls the local analysis history database.
type ArchiveConfig struct {
	// Path is the history database file. Empty selects the per-user
	// default location.
	Path string `yaml:"path,omitempty"`

	// Keep is how many runs `history prune` retains. Zero selects the
	// default.
	Keep int `yaml:"keep,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires after every analysis (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "always" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// HeaderFormats converts the configured patterns into parser formats.
// The config must have passed validation first.
func (c *Config) HeaderFormats() []*parser.HeaderFormat {
	if len(c.Patterns) == 0 {
		return nil
	}
	formats := make([]*parser.HeaderFormat, 0, len(c.Patterns))
	for i := range c.Patterns {
		p := &c.Patterns[i]
		formats = append(formats, &parser.HeaderFormat{
			Name:       p.Name,
			Pattern:    p.compiledPattern,
			PatternStr: p.Pattern,
			Example:    p.Example,
		})
	}
	return formats
}
