package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// headerGroups is the number of capture groups a header pattern must
// have: date, time, author, body.
const headerGroups = 4

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, compiles header patterns
// and fills in defaults. An empty config is valid.
func Validate(cfg *Config) error {
	for i := range cfg.Patterns {
		if err := validatePattern(&cfg.Patterns[i]); err != nil {
			return fmt.Errorf("patterns[%d] (%s): %w", i, cfg.Patterns[i].Name, err)
		}
	}

	if cfg.Archive.Keep < 0 {
		return errors.New("archive: keep must not be negative")
	}
	if cfg.Archive.Keep == 0 {
		cfg.Archive.Keep = DefaultArchiveKeep
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validatePattern(p *PatternConfig) error {
	if p.Name == "" {
		return errors.New("name is required")
	}

	if p.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if re.NumSubexp() != headerGroups {
		return fmt.Errorf("pattern must have exactly %d capture groups (date, time, author, body), got %d",
			headerGroups, re.NumSubexp())
	}

	if p.Example != "" && !re.MatchString(p.Example) {
		return errors.New("example does not match pattern")
	}

	p.compiledPattern = re

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	// Validate trigger if specified
	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be always or never)", wh.Trigger)
		}
	} else {
		// Default to always
		wh.Trigger = WebhookTriggerAlways
	}

	// Default timeout
	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
