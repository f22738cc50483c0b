package dispatcher

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("dispatcher", flag.ContinueOnError)
	t.Setenv("VIDMARK_DISPATCHER_PORT", "9093")
	t.Setenv("VIDMARK_DISPATCHER_DB_PATH", "data/test.db")

	cfg, err := ParseConfig(fs, []string{"-consumer", "dispatcher-e2e", "-max-attempts", "3"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9093 {
		t.Fatalf("port = %d, want 9093", cfg.Port)
	}
	if cfg.DBPath != "data/test.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/test.db")
	}
	if cfg.Consumer != "dispatcher-e2e" {
		t.Fatalf("consumer = %q, want %q", cfg.Consumer, "dispatcher-e2e")
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d, want 3", cfg.MaxAttempts)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("dispatcher", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8093 {
		t.Fatalf("port = %d, want 8093", cfg.Port)
	}
	if cfg.Consumer != "dispatcher" {
		t.Fatalf("consumer = %q, want %q", cfg.Consumer, "dispatcher")
	}
	if cfg.PollInterval != 2*time.Second || cfg.LeaseTTL != 30*time.Second {
		t.Fatalf("unexpected loop defaults: %+v", cfg)
	}
	if cfg.MaxAttempts != 8 || cfg.RetryBackoff != 5*time.Second || cfg.RetryMaxDelay != 5*time.Minute {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
}
