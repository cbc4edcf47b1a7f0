package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(&Config{Level: level, Format: "json", Writer: &buf}, "blockflow"), &buf
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNew_JSONFields(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")
	l.WithComponent("workspace").Info("block added", Fields(FieldStage, "training", FieldTypeKey, "start"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "block added" {
		t.Errorf("unexpected message %v", entry["message"])
	}
	if entry[FieldComponent] != "workspace" {
		t.Errorf("expected component=workspace, got %v", entry[FieldComponent])
	}
	if entry[FieldStage] != "training" {
		t.Errorf("expected stage=training, got %v", entry[FieldStage])
	}
	if entry["service"] != "blockflow" {
		t.Errorf("expected service=blockflow, got %v", entry["service"])
	}
}

func TestNew_LevelFilters(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("BLOCKFLOW_LOG_LEVEL", "debug")
	os.Setenv("BLOCKFLOW_LOG_FORMAT", "json")
	defer os.Unsetenv("BLOCKFLOW_LOG_LEVEL")
	defer os.Unsetenv("BLOCKFLOW_LOG_FORMAT")

	if l := NewFromEnv("env-svc"); l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithError(errors.New("boom")).Error("save failed")
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error field, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	NewNop().Error("nothing happens")
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestRegistry(t *testing.T) {
	l := NewNop()
	Register("storage", l)
	if Get("storage") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered") == nil {
		t.Error("expected fallback logger for unregistered names")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
