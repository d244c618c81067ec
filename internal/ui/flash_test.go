package ui

import (
	"strings"
	"testing"

	"emergence/internal/monitor"
)

func TestFlashFades(t *testing.T) {
	var f Flash
	if f.Active() || f.Alpha() != 0 {
		t.Fatal("zero flash must be invisible")
	}
	f.Trigger(monitor.Anomaly{Type: monitor.AnomalyClusterFormation, Tick: 90, Description: "4 clusters", Severity: 1}, 4)
	if !strings.Contains(f.Text, "cluster-formation @90") {
		t.Fatalf("text = %q", f.Text)
	}
	if f.Alpha() != 1 {
		t.Fatalf("fresh alpha = %f, want 1", f.Alpha())
	}
	f.Tick()
	f.Tick()
	if f.Alpha() != 0.5 {
		t.Fatalf("half-way alpha = %f, want 0.5", f.Alpha())
	}
	f.Tick()
	f.Tick()
	f.Tick()
	if f.Active() {
		t.Fatal("flash must expire")
	}
}

func TestFlashSeverityFloor(t *testing.T) {
	var f Flash
	f.Trigger(monitor.Anomaly{Severity: 0}, 0)
	if f.Alpha() != 0.4 {
		t.Fatalf("alpha = %f, want 0.4", f.Alpha())
	}
}
