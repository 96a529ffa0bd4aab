package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Format: "json", Output: &buf})
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level=%v want debug", l.GetLevel())
	}
	l.WithField("plane", 2).Info("rendered")

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if m["msg"] != "rendered" || m["plane"] != float64(2) {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestNewEnvFallback(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "text")
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	if l.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level=%v want warn", l.GetLevel())
	}
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	l := New(Options{Level: "loud", Output: &bytes.Buffer{}})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level=%v want info", l.GetLevel())
	}
}
