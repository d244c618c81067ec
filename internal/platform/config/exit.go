package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// Exitf prints one line to stderr and ends the process with status 1. A
// trailing newline in format is not doubled.
func Exitf(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintln(stderr, msg)
	exit(1)
}
