package config

import (
	"fmt"
	"net"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"warning": true,
	"error": true,
}

// ValidateResult splits validation failures into fatal (startup must abort)
// and warning (clamped to a safe value, startup continues) tiers, matching
// the teacher's ValidateTiered contract.
type ValidateResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal validation error was recorded.
func (r ValidateResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// AllErrors returns fatals followed by warnings, for callers that just want
// to log everything regardless of tier.
func (r ValidateResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

// ValidateTiered checks the config for invalid values. Fatal errors name
// values that can't be safely defaulted (they'd corrupt a ring-capacity
// computation or never bind a socket); warnings name values clamped in
// place to a safe default so startup can continue.
func (c *Config) ValidateTiered() ValidateResult {
	var r ValidateResult

	if c.BufferSeconds <= 0 {
		r.Fatals = append(r.Fatals, fmt.Errorf("buffer_seconds %v must be positive", c.BufferSeconds))
	}
	if c.TargetFPS <= 0 {
		r.Fatals = append(r.Fatals, fmt.Errorf("target_fps %v must be positive", c.TargetFPS))
	}
	if c.PreviewEnabled {
		if _, _, err := net.SplitHostPort(c.PreviewAddr); err != nil {
			r.Fatals = append(r.Fatals, fmt.Errorf("preview_addr %q is not a valid host:port: %w", c.PreviewAddr, err))
		}
	}

	if c.MaxWidth < 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("max_width %d is negative, clamping to 0 (unbounded)", c.MaxWidth))
		c.MaxWidth = 0
	}
	if c.MaxHeight < 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("max_height %d is negative, clamping to 0 (unbounded)", c.MaxHeight))
		c.MaxHeight = 0
	}
	if c.MemoryBudgetBytes < 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("memory_budget_bytes %d is negative, clamping to 0 (unbounded)", c.MemoryBudgetBytes))
		c.MemoryBudgetBytes = 0
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error), defaulting to info", c.LogLevel))
		c.LogLevel = "info"
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_format %q is not valid (use text or json), defaulting to text", c.LogFormat))
		c.LogFormat = "text"
	}

	if c.LogShipURL != "" {
		if c.LogShipDeviceID == "" {
			r.Warnings = append(r.Warnings, fmt.Errorf("log_ship_url is set but log_ship_device_id is empty; the collector will see an empty device ID"))
		}
		if c.LogShipMinLevel != "" && !validLogLevels[strings.ToLower(c.LogShipMinLevel)] {
			r.Warnings = append(r.Warnings, fmt.Errorf("log_ship_min_level %q is not valid (use debug, info, warn, error), defaulting to warn", c.LogShipMinLevel))
			c.LogShipMinLevel = "warn"
		}
	}

	return r
}
