package obslog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn", FormatJSON)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	log.Info("hidden")
	log.Warn("no opening found", zap.String("url", "https://lichess.org/abcd"))
	if err := log.Sync(); err != nil {
		t.Logf("Sync() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}
	if entry["msg"] != "no opening found" || entry["level"] != "warn" || entry["url"] != "https://lichess.org/abcd" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "", FormatConsole)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	log.Debug("hidden")
	log.Info("analyzed", zap.Int("games", 3))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry logged at default level: %q", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, `{"games": 3}`) {
		t.Errorf("output = %q", out)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", FormatJSON); err == nil {
		t.Error("New(loud) error = nil, want error")
	}
	if _, err := New("info", "xml"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("New(xml) error = %v, want ErrInvalidFormat", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"", "console", "JSON"} {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if ValidFormat("logfmt") {
		t.Error("ValidFormat(logfmt) = true")
	}
}
