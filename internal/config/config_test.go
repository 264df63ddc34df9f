/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerHost != "0.0.0.0" || cfg.ServerPort != 8100 {
		t.Errorf("Wrong server defaults: %s:%d", cfg.ServerHost, cfg.ServerPort)
	}
	if cfg.DBHost != "localhost" || cfg.DBPort != 5432 || cfg.DBName != "postgres" {
		t.Errorf("Wrong store defaults: %s:%d/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if cfg.LogDirectory != "logs" || !cfg.Logging {
		t.Errorf("Wrong logging defaults: %s %v", cfg.LogDirectory, cfg.Logging)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("LOGGING", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.ServerPort)
	}
	if cfg.DBHost != "db.internal" || cfg.DBPassword != "hunter2" {
		t.Errorf("Store overrides were not picked up: %s %s", cfg.DBHost, cfg.DBPassword)
	}
	if cfg.Logging {
		t.Error("Expected logging disabled")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("Expected an error for an unusable port")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     5433,
		DBUser:     "chat",
		DBPassword: "hunter2",
		DBName:     "relay",
		DBSSLMode:  "require",
	}

	expected := "host=db.internal port=5433 user=chat password=hunter2 dbname=relay sslmode=require"
	if dsn := cfg.DSN(); dsn != expected {
		t.Errorf("Wrong DSN: %s", dsn)
	}
}
