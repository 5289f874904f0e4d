package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MIGRATIONS", "")
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.App.Migrations {
		t.Error("migrations should default to false")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("MIGRATIONS", "yes")
	t.Setenv("DB_SEED", "TRUE")
	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN() != "/tmp/x.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN())
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Database.Port)
	}
	if !cfg.App.Migrations || !cfg.App.Seed {
		t.Errorf("bool flags not parsed: %+v", cfg.App)
	}
}

func TestPostgresDSNAndURL(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5433, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got, want := d.DSN(), "host=db port=5433 user=u password=p dbname=n sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := d.URL(), "postgres://u:p@db:5433/n?sslmode=disable"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
