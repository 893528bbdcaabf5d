package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/config"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_URL", "postgres://arena@localhost/arena")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want default 8080", cfg.Port)
	}
	if cfg.ReconcileInterval != 10*time.Minute {
		t.Errorf("reconcile interval = %v, want 10m", cfg.ReconcileInterval)
	}
	if cfg.RoleCacheSize != 1024 {
		t.Errorf("role cache size = %v", cfg.RoleCacheSize)
	}
	if !cfg.MigrateOnStart {
		t.Errorf("migrations disabled by default")
	}
	if cfg.RedisAddr != "" {
		t.Errorf("redis enabled without REDIS_ADDR: %q", cfg.RedisAddr)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://arena@localhost/arena")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("API_URL", "127.0.0.1")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address() != "127.0.0.1:9000" {
		t.Errorf("address = %q", cfg.Address())
	}
	if cfg.ReconcileInterval != 30*time.Second {
		t.Errorf("reconcile interval = %v", cfg.ReconcileInterval)
	}
	if cfg.MigrateOnStart {
		t.Errorf("MIGRATE_ON_START=false ignored")
	}
	if cfg.ReconcileQueue != "arena:reconcile" {
		t.Errorf("queue = %q", cfg.ReconcileQueue)
	}
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	content := "DB_URL=postgres://file@localhost/arena\nJWT_SECRET=from-file\nPORT=7000\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// the environment wins over the file
	t.Setenv("PORT", "7100")
	// godotenv sets these, restore them after the test
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("DB_URL")
	os.Unsetenv("JWT_SECRET")

	cfg, err := config.Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBURL != "postgres://file@localhost/arena" || cfg.JWTSecret != "from-file" {
		t.Errorf("values not read from file: %+v", cfg)
	}
	if cfg.Port != "7100" {
		t.Errorf("port = %q, environment should win", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing db url", map[string]string{"JWT_SECRET": "secret"}},
		{"missing jwt secret", map[string]string{"DB_URL": "postgres://localhost"}},
		{"bad interval", map[string]string{"DB_URL": "postgres://localhost", "JWT_SECRET": "s", "RECONCILE_INTERVAL": "often"}},
		{"non positive interval", map[string]string{"DB_URL": "postgres://localhost", "JWT_SECRET": "s", "RECONCILE_INTERVAL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_URL", "JWT_SECRET", "RECONCILE_INTERVAL"} {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	if err := (config.Config{LogLevel: "debug"}).ConfigureLogger(); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logrus.GetLevel())
	}
	if err := (config.Config{LogLevel: "loud"}).ConfigureLogger(); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}
