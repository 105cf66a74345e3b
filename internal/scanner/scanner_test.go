package scanner

import (
	"testing"

	"github.com/mongoose-os/espbrewd/internal/probe"
)

func TestDiffPortsAddedRemovedSame(t *testing.T) {
	known := map[string]bool{"/dev/ttyUSB0": true, "/dev/ttyUSB1": true}
	ports := []probe.PortDescriptor{
		{Path: "/dev/ttyUSB1"},
		{Path: "/dev/ttyUSB2"},
	}

	added, removed, seen := diffPorts(known, ports)

	if len(added) != 1 || added[0].Path != "/dev/ttyUSB2" {
		t.Fatalf("expected only ttyUSB2 added, got %+v", added)
	}
	if len(removed) != 1 || removed[0] != "/dev/ttyUSB0" {
		t.Fatalf("expected only ttyUSB0 removed, got %+v", removed)
	}
	if !seen["/dev/ttyUSB1"] || !seen["/dev/ttyUSB2"] || seen["/dev/ttyUSB0"] {
		t.Fatalf("unexpected seen set: %+v", seen)
	}
}

func TestDiffPortsEmptyKnownMarksEverythingAdded(t *testing.T) {
	ports := []probe.PortDescriptor{{Path: "/dev/ttyACM0"}}
	added, removed, seen := diffPorts(nil, ports)
	if len(added) != 1 || len(removed) != 0 || len(seen) != 1 {
		t.Fatalf("expected one added, none removed, got added=%v removed=%v seen=%v", added, removed, seen)
	}
}

func TestContains(t *testing.T) {
	ports := []probe.PortDescriptor{{Path: "/dev/ttyUSB0"}, {Path: "/dev/ttyUSB1"}}
	if !contains(ports, "/dev/ttyUSB1") {
		t.Fatal("expected ttyUSB1 to be found")
	}
	if contains(ports, "/dev/ttyUSB9") {
		t.Fatal("expected ttyUSB9 to be absent")
	}
}
