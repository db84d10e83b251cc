package config

import "testing"

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SOLANA_PROGRAM_ID", "")
	t.Setenv("ENABLE_AIRDROP", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if cfg.Solana.ProgramID != DefaultProgramID {
		t.Errorf("expected default program id, got %s", cfg.Solana.ProgramID)
	}
	if !cfg.App.EnableAirdrop {
		t.Error("expected airdrop to be enabled")
	}
	if cfg.GetDSN() != cfg.Database.SQLitePath {
		t.Errorf("sqlite DSN should be the file path, got %s", cfg.GetDSN())
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5433", User: "u", Password: "p", DBName: "escrow",
	}}
	want := "host=db port=5433 user=u password=p dbname=escrow sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
