/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Environment-sourced configuration of the relay. The store parameters are
// opaque connection parameters from the core's point of view.
type Config struct {
	ServerHost string
	ServerPort uint16

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	LogDirectory string
	Logging      bool
}

// Load reads the configuration from the environment, falling back to the
// defaults of the local single-node setup.
func Load() (*Config, error) {

	v := viper.New()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8100)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSL", "disable")
	v.SetDefault("LOG_DIRECTORY", "logs")
	v.SetDefault("LOGGING", true)

	v.AutomaticEnv()

	port := v.GetUint16("SERVER_PORT")
	if port == 0 {
		return nil, fmt.Errorf("SERVER_PORT is not a valid port{%s}", v.GetString("SERVER_PORT"))
	}

	return &Config{
		ServerHost:   v.GetString("SERVER_HOST"),
		ServerPort:   port,
		DBHost:       v.GetString("DB_HOST"),
		DBPort:       v.GetInt("DB_PORT"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBSSLMode:    v.GetString("DB_SSL"),
		LogDirectory: v.GetString("LOG_DIRECTORY"),
		Logging:      v.GetBool("LOGGING"),
	}, nil
}

// DSN builds the postgres connection string for the store.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
