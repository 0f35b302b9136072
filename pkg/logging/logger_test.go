package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/boxboxd/boxboxd/pkg/config"
)

func newTestScalyrLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		MessageKey:    "message",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(NewScalyrEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.InfoLevel)
	return zap.New(core)
}

func TestScalyrEncoder(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestScalyrLogger(&buf)

	logger.Info("feed ranked",
		zap.String("viewer", "u1"),
		zap.Int("posts", 42),
		zap.Duration("took", 1500*time.Millisecond),
		zap.Error(errors.New("profile lookup failed")),
	)

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "feed ranked" {
		t.Errorf("Expected message 'feed ranked', got: %v", logObj["message"])
	}
	if logObj["viewer"] != "u1" {
		t.Errorf("Expected field 'viewer'='u1', got: %v", logObj["viewer"])
	}
	if logObj["posts"] != float64(42) {
		t.Errorf("Expected field 'posts'=42, got: %v", logObj["posts"])
	}
	if logObj["took"] != "1.5s" {
		t.Errorf("Expected field 'took'='1.5s', got: %v", logObj["took"])
	}
	if logObj["error"] != "profile lookup failed" {
		t.Errorf("Expected field 'error', got: %v", logObj["error"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}

func TestScalyrEncoderKeepsContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestScalyrLogger(&buf).With(zap.String("component", "feed"))

	logger.Info("first")

	var logObj map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if logObj["component"] != "feed" {
		t.Errorf("Expected context field 'component'='feed', got: %v", logObj["component"])
	}
}

func TestInitLogger(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json", config.LoggingConfig{Level: "INFO", Format: "json"}},
		{"scalyr", config.LoggingConfig{Level: "DEBUG", Format: "json", ScalyrFormat: true}},
		{"text", config.LoggingConfig{Level: "WARN", Format: "text"}},
		{"bad level", config.LoggingConfig{Level: "LOUD", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("Failed to initialize logger: %v", err)
			}
			if Logger == nil {
				t.Fatal("Expected logger to be set")
			}
		})
	}
}

func TestWithTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithTraceID(base, "4bf92f3577b34da6a3ce929d0e0e4736").Info("traced")
	WithTraceID(base, "").Info("untraced")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["trace_id"]; got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("Expected trace_id on first entry, got: %v", got)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Error("Expected no trace_id on second entry")
	}
}
