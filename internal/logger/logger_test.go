package logger

// Notes:
// - New: output is asserted through a bytes.Buffer sink; encoder layout details
//   beyond level filtering and JSON shape are zap's responsibility.

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ---------------------------------------------------------------------------
// TestParseLevel - Level Names
// ---------------------------------------------------------------------------

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: "INFO", want: zapcore.InfoLevel},
		{input: "", want: zapcore.WarnLevel},
		{input: "warning", want: zapcore.WarnLevel},
		{input: " error ", want: zapcore.ErrorLevel},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Fatalf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Format Names
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{Level: "info", Format: "xml"}).Validate(); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestNew - Level Filtering and Encoders
// ---------------------------------------------------------------------------

func TestNew_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: FormatConsole}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("hidden message")
	log.Warn("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info entry logged at warn level: %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "WARN") {
		t.Errorf("expected WARN entry, got %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: FormatJSON}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Debug("probe", zap.String("backend", "chrome"))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "probe" || entry["backend"] != "chrome" || entry["level"] != "debug" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Level: "loud"}, &bytes.Buffer{}); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}
