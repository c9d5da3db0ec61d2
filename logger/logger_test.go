package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(Te *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: WarnLevel, Writer: &buf, NoColor: true})
	l.Info("hidden")
	l.Warnf("shown %d", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		Te.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, "WARN  shown 1") {
		Te.Errorf("warning not written: %q", out)
	}
}

func TestFields(Te *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: DebugLevel, Writer: &buf, NoColor: true})
	l2 := l.WithPrefix("gromacs").WithFields(map[string]interface{}{"b": 2, "a": 1})
	l2.Debug("msg")
	l.Debug("plain")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		Te.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if lines[0] != "DEBUG [gromacs] a=1 b=2 msg" {
		Te.Errorf("unexpected line %q", lines[0])
	}
	if strings.Contains(lines[1], "gromacs") {
		Te.Errorf("derived logger changed its parent: %q", lines[1])
	}
}

func TestParseLevel(Te *testing.T) {
	cases := map[string]Level{"debug": DebugLevel, "WARNING": WarnLevel, "error": ErrorLevel, "whatever": InfoLevel}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			Te.Errorf("%s: got %d, want %d", s, got, want)
		}
	}
}
