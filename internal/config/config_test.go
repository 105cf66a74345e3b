package config

import "testing"

func TestResolveConfigDirPrefersExplicit(t *testing.T) {
	dir, err := resolveConfigDir("/etc/espbrew")
	if err != nil {
		t.Fatalf("resolveConfigDir: %v", err)
	}
	if dir != "/etc/espbrew" {
		t.Fatalf("got %q, want /etc/espbrew", dir)
	}
}

func TestBoardTypesAndAssignmentsPaths(t *testing.T) {
	c := &Config{ConfigDir: "/var/lib/espbrewd"}
	if got, want := c.BoardTypesDir(), "/var/lib/espbrewd/board-types"; got != want {
		t.Fatalf("BoardTypesDir() = %q, want %q", got, want)
	}
	if got, want := c.AssignmentsFile(), "/var/lib/espbrewd/espbrew-boards.yaml"; got != want {
		t.Fatalf("AssignmentsFile() = %q, want %q", got, want)
	}
}
