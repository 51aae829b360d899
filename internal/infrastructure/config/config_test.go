package config

import "testing"

func TestDatabaseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "postgres", false},
		{"PostgreSQL", "postgres", false},
		{"pgx", "postgres", false},
		{"sqlite", "sqlite3", false},
		{"sqlite3", "sqlite3", false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{Database: DatabaseConfig{Driver: tt.in}}
			got, err := cfg.DatabaseDriver()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("driver = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		Name:     "hebcorpus",
		User:     "admin",
		Password: "p@ss",
		SSLMode:  "disable",
	}}
	got, err := cfg.DatabaseURL()
	if err != nil {
		t.Fatalf("DatabaseURL returned error: %v", err)
	}
	if want := "postgres://admin:p%40ss@db:5432/hebcorpus?sslmode=disable"; got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}

	cfg.Database.URL = "postgres://override"
	if got, _ := cfg.DatabaseURL(); got != "postgres://override" {
		t.Fatalf("explicit url must win, got %q", got)
	}

	lite := &Config{Database: DatabaseConfig{Driver: "sqlite", Name: "/tmp/corpus.db"}}
	if got, _ := lite.DatabaseURL(); got != "file:/tmp/corpus.db?_foreign_keys=on" {
		t.Fatalf("sqlite url = %q", got)
	}
	if _, err := (&Config{Database: DatabaseConfig{Driver: "sqlite"}}).DatabaseURL(); err == nil {
		t.Fatal("expected an error for a sqlite config without a file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Ingest: IngestConfig{MaxRawTextBytes: 1}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	badDriver := valid
	badDriver.Database.Driver = "mysql"
	if err := badDriver.Validate(); err == nil {
		t.Fatal("expected an unsupported driver to fail")
	}

	noLimit := valid
	noLimit.Ingest.MaxRawTextBytes = 0
	if err := noLimit.Validate(); err == nil {
		t.Fatal("expected zero limit to fail")
	}
}
