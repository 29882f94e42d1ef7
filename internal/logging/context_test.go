package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext_NoLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext() should return default logger when no logger in context")
	}
}

func TestFromContext_WithLogger(t *testing.T) {
	customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithContext(context.Background(), customLogger)

	if FromContext(ctx) != customLogger {
		t.Error("FromContext() should return the logger from context")
	}
}

func TestContextWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx = ContextWith(ctx, "run", "42")
	FromContext(ctx).Info("detecting")

	if !strings.Contains(buf.String(), "run=42") {
		t.Errorf("ContextWith() attributes missing from output: %s", buf.String())
	}
}
