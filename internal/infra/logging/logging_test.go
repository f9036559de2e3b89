//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"apivro/internal/config"
)

func TestWith_AttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(config.LogConfig{Level: "info", Format: "json"}, false, &buf)

	ctx := WithTraceID(context.Background(), "t-1")
	ctx = WithUserID(ctx, "u-1")
	ctx = WithDeviceID(ctx, "d-1")
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	for k, want := range map[string]string{"trace_id": "t-1", "user_id": "u-1", "device_id": "d-1", "message": "hello"} {
		if line[k] != want {
			t.Errorf("field %s = %v, want %s", k, line[k], want)
		}
	}
	if _, ok := line["api_key_id"]; ok {
		t.Error("unset fields must not be attached")
	}
	if TraceID(ctx) != "t-1" {
		t.Error("TraceID should read the context value")
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level, got %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Error("warn must be written")
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("apivro0123456789", false); got != "apiv...89" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := Redact("short", false); got != "***" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := Redact("visible", true); got != "visible" {
		t.Errorf("dev mode must not redact, got %q", got)
	}
}
