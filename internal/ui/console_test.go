package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_NoColor(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Success("saved")
	c.Error("failed")
	c.Prompt("fill in a field")

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Errorf("no-color output contains ANSI codes: %q", out)
	}
	for _, want := range []string{"✓ saved", "✗ failed", "⚠ fill in a field"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestConsole_Color(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.Error("boom")
	if !strings.Contains(buf.String(), colorRed) {
		t.Errorf("expected red ANSI code, got %q", buf.String())
	}

	c.SetNoColor(true)
	if got := c.Bold("x"); got != "x" {
		t.Errorf("Bold with no color = %q, want x", got)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Success("a")
	r.Error("b")
	r.Prompt("c")
	r.Error("d")

	if n := len(r.Notices()); n != 4 {
		t.Fatalf("notices = %d, want 4", n)
	}
	errs := r.Kinds("error")
	if len(errs) != 2 || errs[0] != "b" || errs[1] != "d" {
		t.Errorf("errors = %v, want [b d]", errs)
	}
}
