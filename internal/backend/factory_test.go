package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"financeviz/internal/config"
	"financeviz/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected an error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory", DataDirectory: "data"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MemoryBackend || cfg.DataDirectory != "data" {
		t.Fatalf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{"unknown type", Config{Type: "postgres"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"memory without directory", Config{Type: MemoryBackend}, "data directory is required"},
		{"valid sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestCreateBackends(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	sqliteResult, err := factory.CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "financeviz.db"),
	})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	defer sqliteResult.Cleanup()
	if sqliteResult.Publisher != nil {
		t.Fatal("no publisher expected without AMQP URL")
	}
	if err := sqliteResult.Backend.SavePlan(ctx, &core.Plan{Year: 2021}); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if years, _ := sqliteResult.Backend.Years(ctx); len(years) != 1 || years[0] != 2021 {
		t.Fatalf("unexpected years: %v", years)
	}

	memoryResult, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if err := memoryResult.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}
