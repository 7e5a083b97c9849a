package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Import.RestoreImagePrefix != "/static/restore_images/" {
		t.Errorf("RestoreImagePrefix = %q", cfg.Import.RestoreImagePrefix)
	}
	if cfg.Database.MigrationsPath != "./migrations" {
		t.Errorf("MigrationsPath = %q", cfg.Database.MigrationsPath)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RESTORE_IMAGE_PREFIX", "/img/")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Import.RestoreImagePrefix != "/img/" {
		t.Errorf("RestoreImagePrefix = %q", cfg.Import.RestoreImagePrefix)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Server.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Name: "board"}, Import: ImportConfig{RestoreImagePrefix: "/x/"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Database.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing DB_NAME")
	}
}

func TestGetDSN(t *testing.T) {
	c := &DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=n sslmode=disable"
	if got := c.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
