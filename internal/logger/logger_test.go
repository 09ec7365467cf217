package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("New must return a usable logger")
	}

	for _, level := range []string{"Info", "debug", "WARN", " error "} {
		if err := l.Init(level); err != nil {
			t.Errorf("Init(%q) error = %v", level, err)
		}
	}

	if err := l.Init("warn"); err != nil {
		t.Fatal(err)
	}
	if l.Log.Core().Enabled(zap.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if !l.Log.Core().Enabled(zap.ErrorLevel) {
		t.Error("error must be enabled at warn level")
	}

	if err := l.Init("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
