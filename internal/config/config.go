// Package config loads and persists ParkHub's config.toml configuration
// file (spec §6 "Persisted layout"), with environment variables overriding
// select secrets and endpoints that must never live in a plaintext file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Server holds the persisted, non-secret server settings.
type Server struct {
	Name                  string `toml:"name"`
	Port                  int    `toml:"port"`
	DataDir               string `toml:"data_dir"`
	AllowSelfRegistration bool   `toml:"allow_self_registration"`
	EncryptionEnabled     bool   `toml:"encryption_enabled"`
	TLSEnabled            bool   `toml:"tls_enabled"`
	Headless              bool   `toml:"headless"`
}

// CORS holds additional allowed origins beyond the fixed localhost set
// spec §4.E always allows.
type CORS struct {
	ExtraOrigins []string `toml:"extra_origins"`
}

// Config is the full contents of config.toml.
type Config struct {
	Server Server `toml:"server"`
	CORS   CORS   `toml:"cors"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		Server: Server{
			Name:                  "ParkHub",
			Port:                  8080,
			DataDir:               "./data",
			AllowSelfRegistration: true,
			EncryptionEnabled:     false,
			TLSEnabled:            false,
			Headless:              false,
		},
	}
}

const fileName = "config.toml"

// Load reads config.toml from dataDir. If the file does not exist, it
// writes out Default() and returns it (spec §6: "the loader writes a
// default config.toml on first run"); any missing key within an existing
// file falls back to the matching default field via decode-onto-default.
func Load(dataDir string) (Config, error) {
	path := filepath.Join(dataDir, fileName)

	cfg := Default()
	cfg.Server.DataDir = dataDir

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := Save(dataDir, cfg); writeErr != nil {
			return Config{}, fmt.Errorf("write default config: %w", writeErr)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Server.DataDir = dataDir
	return cfg, nil
}

// Save writes cfg to dataDir/config.toml, creating dataDir if needed.
func Save(dataDir string, cfg Config) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(dataDir, fileName), out, 0o644)
}

// DBPassphrase resolves PARKHUB_DB_PASSPHRASE, required in headless mode
// when encryption is enabled (spec §6).
func DBPassphrase() string {
	return strings.TrimSpace(os.Getenv("PARKHUB_DB_PASSPHRASE"))
}

// AppURL resolves APP_URL, embedded in password-reset e-mail bodies.
func AppURL(fallback string) string {
	if v := strings.TrimSpace(os.Getenv("APP_URL")); v != "" {
		return v
	}
	return fallback
}

// SMTPFromEnv resolves the optional SMTP_{HOST,PORT,USER,PASS,FROM}
// environment variables used by internal/mail.
func SMTPFromEnv() (host, port, user, pass, from string) {
	return strings.TrimSpace(os.Getenv("SMTP_HOST")),
		strings.TrimSpace(os.Getenv("SMTP_PORT")),
		strings.TrimSpace(os.Getenv("SMTP_USER")),
		strings.TrimSpace(os.Getenv("SMTP_PASS")),
		strings.TrimSpace(os.Getenv("SMTP_FROM"))
}
