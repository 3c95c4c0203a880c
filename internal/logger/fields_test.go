package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  strategy  ", Value: "  local  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "strategy" || fields[0].String != "local" {
		t.Fatalf("unexpected strategy field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	enriched.Info("another log")
}

func TestWithStrategy(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithStrategy(zap.New(core), "remote", "gemini-2.5-flash").Info("scored")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldStrategy] != "remote" {
		t.Fatalf("expected strategy field to be remote, got %q", ctx[FieldStrategy])
	}
	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected model field: %q", ctx[FieldModel])
	}

	if fields := StrategyFields("local", ""); len(fields) != 1 {
		t.Fatalf("expected model to be omitted for local strategy, got %d fields", len(fields))
	}
}

func TestTargetFields(t *testing.T) {
	fields := TargetFields("job-1", "")
	if len(fields) != 1 || fields[0].Key != FieldJob || fields[0].String != "job-1" {
		t.Fatalf("unexpected target fields: %+v", fields)
	}
}

func TestNew(t *testing.T) {
	for _, cfg := range []Config{{}, {JSON: true, Debug: true}, {Output: "stderr"}} {
		l, err := New(cfg)
		if err != nil {
			t.Fatalf("%+v: unexpected error: %v", cfg, err)
		}
		if l.Core().Enabled(zapcore.DebugLevel) != cfg.Debug {
			t.Fatalf("%+v: unexpected debug level state", cfg)
		}
	}
}
