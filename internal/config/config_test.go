package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "MAX_UPLOAD_BYTES", "TUNING_FILE", "SESSION_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "8080" || c.MaxUploadBytes != 10<<20 || c.LogFormat != "text" || c.SessionTTL != 2*time.Hour {
		t.Fatalf("defaults = %+v", c)
	}
	tn, err := c.Tuning()
	if err != nil || tn.CanvasWidth != 800 {
		t.Fatalf("Tuning = %+v, %v", tn, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("canvas_width: 1000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9999")
	t.Setenv("TUNING_FILE", path)
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("SESSION_TTL", "15m")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "9999" || c.MaxUploadBytes != 2048 || c.SessionTTL != 15*time.Minute {
		t.Fatalf("overrides = %+v", c)
	}
	tn, err := c.Tuning()
	if err != nil || tn.CanvasWidth != 1000 {
		t.Fatalf("Tuning = %d, %v", tn.CanvasWidth, err)
	}
}

func TestLoadRejectsBadUploadLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero upload limit")
	}
}

func TestLoadRejectsNegativeTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "-1h")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative session ttl")
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Config{LogLevel: "warn", LogFormat: "json"}.Logger(&buf).Info("hidden")
	Config{LogLevel: "warn", LogFormat: "json"}.Logger(&buf).Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("log output = %q", out)
	}
}
