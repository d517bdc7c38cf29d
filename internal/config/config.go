package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	imagepkg "github.com/youruser/galentine/internal/image"
)

// Config is read from the environment; a .env file is loaded first by the
// root command.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	GinMode        string `env:"GIN_MODE" envDefault:"release"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	TuningFile     string `env:"TUNING_FILE"`
	ReasonsFile    string `env:"REASONS_FILE"`
	QRText         string `env:"QR_TEXT"`
	// SessionTTL bounds how long uploaded photos stay in memory; 0 keeps
	// sessions forever.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

// Load parses the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	if c.MaxUploadBytes <= 0 {
		return c, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.SessionTTL < 0 {
		return c, fmt.Errorf("SESSION_TTL must not be negative, got %s", c.SessionTTL)
	}
	return c, nil
}

// Tuning loads TuningFile, or the defaults when it is unset.
func (c Config) Tuning() (imagepkg.Tuning, error) {
	if c.TuningFile == "" {
		return imagepkg.DefaultTuning(), nil
	}
	return imagepkg.LoadTuning(c.TuningFile)
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
