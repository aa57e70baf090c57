package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./data/test.db",
		Port:              "8080",
		WorkerCount:       5,
		SchedulerInterval: 30,
		ParseInterval:     3600,
		PostsPerParse:     100,
		MaxExportRows:     10000,
		APIAccessKey:      "test-key",
		TelegramAPIID:     12345,
		TelegramAPIHash:   "abcdef",
		TelegramPhone:     "+10000000000",
		SessionFile:       "./data/test.session.json",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "./data/test.db" {
		t.Errorf("Expected DB path './data/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 30 {
		t.Errorf("Expected scheduler interval 30, got %d", cfg.SchedulerInterval)
	}
	if cfg.ParseInterval != 3600 {
		t.Errorf("Expected parse interval 3600, got %d", cfg.ParseInterval)
	}
	if cfg.PostsPerParse != 100 {
		t.Errorf("Expected posts per parse 100, got %d", cfg.PostsPerParse)
	}
	if cfg.MaxExportRows != 10000 {
		t.Errorf("Expected max export rows 10000, got %d", cfg.MaxExportRows)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.TelegramAPIID != 12345 {
		t.Errorf("Expected Telegram API ID 12345, got %d", cfg.TelegramAPIID)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
