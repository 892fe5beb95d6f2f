package shared

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		var buf strings.Builder
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected logger")
		}
	})
}

func TestWithLogger(t *testing.T) {
	var buf strings.Builder
	logger := WithLogger(NewLogger(&buf), "org", "acme")
	logger.Info("export started")

	out := buf.String()
	if !strings.Contains(out, "org") || !strings.Contains(out, "acme") {
		t.Errorf("expected bound fields in output, got %q", out)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&buf)
	SetLogLevel(logger, log.ErrorLevel)
	logger.Info("suppressed")

	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed, got %q", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()

	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string, got %q", a)
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]string{"slug": "eng"}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Errorf("expected compact output, got %q", compact)
	}

	indented, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !strings.Contains(string(indented), "\n  ") {
		t.Errorf("expected indented output, got %q", indented)
	}
}
