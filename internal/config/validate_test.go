package config

import (
	"fmt"
	"strings"
	"testing"
)

func TestValidateTieredNonPositiveBufferSecondsIsFatal(t *testing.T) {
	cfg := Default()
	cfg.BufferSeconds = 0
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("non-positive buffer_seconds should be fatal")
	}
}

func TestValidateTieredNonPositiveTargetFPSIsFatal(t *testing.T) {
	cfg := Default()
	cfg.TargetFPS = -1
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("non-positive target_fps should be fatal")
	}
}

func TestValidateTieredBadPreviewAddrIsFatalWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.PreviewEnabled = true
	cfg.PreviewAddr = "not-a-host-port"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("invalid preview_addr should be fatal when preview is enabled")
	}
}

func TestValidateTieredBadPreviewAddrIgnoredWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.PreviewEnabled = false
	cfg.PreviewAddr = "not-a-host-port"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("preview_addr should not be validated when preview is disabled: %v", result.Fatals)
	}
}

func TestValidateTieredNegativeMaxWidthClamping(t *testing.T) {
	cfg := Default()
	cfg.MaxWidth = -100
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("negative max_width should be a warning, not fatal: %v", result.Fatals)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for negative max_width")
	}
	if cfg.MaxWidth != 0 {
		t.Fatalf("MaxWidth = %d, want 0 (clamped)", cfg.MaxWidth)
	}
}

func TestValidateTieredNegativeMemoryBudgetClamping(t *testing.T) {
	cfg := Default()
	cfg.MemoryBudgetBytes = -1
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("negative memory_budget_bytes should be a warning: %v", result.Fatals)
	}
	if cfg.MemoryBudgetBytes != 0 {
		t.Fatalf("MemoryBudgetBytes = %d, want 0", cfg.MemoryBudgetBytes)
	}
}

func TestValidateTieredUnknownLogLevelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown log level should not be fatal")
	}
	found := false
	for _, err := range result.Warnings {
		if strings.Contains(err.Error(), "log_level") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected warning for unknown log level")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q (defaulted)", cfg.LogLevel, "info")
	}
}

func TestValidateTieredInvalidLogFormatIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log format should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for invalid log format")
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("LogFormat = %q, want %q (defaulted)", cfg.LogFormat, "text")
	}
}

func TestHasFatals(t *testing.T) {
	r := ValidateResult{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.Fatals = append(r.Fatals, fmt.Errorf("test error"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}

func TestAllErrorsReturnsBoth(t *testing.T) {
	cfg := Default()
	cfg.TargetFPS = -1   // fatal
	cfg.LogFormat = "xml" // warning
	result := cfg.ValidateTiered()

	all := result.AllErrors()
	if len(all) < 2 {
		t.Fatalf("AllErrors() returned %d errors, expected at least 2 (fatals + warnings)", len(all))
	}
}

func TestValidateTieredLogShipURLWithoutDeviceIDIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogShipURL = "https://collector.example.com/logs"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("log_ship_url without device id should not be fatal: %v", result.Fatals)
	}
	found := false
	for _, err := range result.Warnings {
		if strings.Contains(err.Error(), "log_ship_device_id") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected warning for missing log_ship_device_id")
	}
}

func TestValidateTieredInvalidLogShipMinLevelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogShipURL = "https://collector.example.com/logs"
	cfg.LogShipDeviceID = "device-1"
	cfg.LogShipMinLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log_ship_min_level should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for invalid log_ship_min_level")
	}
	if cfg.LogShipMinLevel != "warn" {
		t.Fatalf("LogShipMinLevel = %q, want %q (defaulted)", cfg.LogShipMinLevel, "warn")
	}
}

func TestValidateTieredLogShipFieldsIgnoredWhenURLUnset(t *testing.T) {
	cfg := Default()
	cfg.LogShipMinLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("unset log_ship_url should not trigger log-shipping validation: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("unset log_ship_url should not trigger log-shipping validation: %v", result.Warnings)
	}
}

func TestDefaultConfigHasNoErrors(t *testing.T) {
	cfg := Default()
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("default config has fatals: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("default config has warnings: %v", result.Warnings)
	}
}
