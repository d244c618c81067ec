package config

import (
	"bytes"
	"testing"
)

func TestExitfWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	oldStderr, oldExit := stderr, exit
	stderr, exit = &buf, func(c int) { code = c }
	t.Cleanup(func() { stderr, exit = oldStderr, oldExit })

	Exitf("load state %q: %s\n", "demo", "missing")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := buf.String(); got != "load state \"demo\": missing\n" {
		t.Fatalf("stderr = %q", got)
	}
}
