package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" || cfg.Service != "arcade-server" || cfg.MaxMB != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_SERVICE", "arcade-sweeper")
	t.Setenv("LOG_FILE", "/tmp/arcade.log")
	t.Setenv("LOG_MAX_MB", "0")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || cfg.Service != "arcade-sweeper" || cfg.File != "/tmp/arcade.log" {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
	if cfg.MaxMB != 10 {
		t.Fatalf("MaxMB = %d, want fallback 10", cfg.MaxMB)
	}
}

func TestLoadLogRejectsBadSample(t *testing.T) {
	t.Setenv("LOG_SAMPLE_EVERY", "often")
	if _, err := LoadLog(); err == nil {
		t.Fatal("LoadLog() error = nil, want parse error")
	}
}

func TestLoadTest(t *testing.T) {
	t.Setenv("TEST_POSTGRES_DSN", "")
	if _, err := LoadTest(); err == nil {
		t.Fatal("LoadTest() without dsn error = nil")
	}

	t.Setenv("TEST_POSTGRES_DSN", "postgres://localhost/arcade")
	cfg, err := LoadTest()
	if err != nil {
		t.Fatalf("LoadTest() error = %v", err)
	}
	if cfg.SchemaPrefix != "arcade_test" || cfg.KeepSchema {
		t.Fatalf("unexpected test config: %+v", cfg)
	}
}
