package config

import (
	"flag"
	"io"
	"testing"
)

func TestKVListFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var l KVList
	fs.Var(&l, "set", "override")

	if err := ParseArgs(fs, []string{"-set", "max_particles=40", "-set", "bogus", "-set", " rate = 2.5 ", "-set", "max_particles=60"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if l.String() != "max_particles=40,bogus, rate = 2.5 ,max_particles=60" {
		t.Fatalf("String() = %q", l.String())
	}
	m := l.Map()
	if len(m) != 2 || m["max_particles"] != "60" || m["rate"] != "2.5" {
		t.Fatalf("Map() = %v", m)
	}
}

func TestParseArgsRequiresFlagSet(t *testing.T) {
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected error for nil flag set")
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := ParseArgs(fs, nil); err != nil {
		t.Fatalf("nil args: %v", err)
	}
}
