package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mongoose-os/espbrewd/internal/detector"
	"github.com/mongoose-os/espbrewd/internal/probe"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "espbrew-boards.yaml")
	r, err := New(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, path
}

func TestUpsertFromProbePathThenMACMerge(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.LoadBoardType(BoardType{ID: "esp32_s3_box_3", DisplayName: "S3 Box"})

	pathID := r.UpsertFromProbe(probe.PortDescriptor{Path: "/dev/ttyUSB0"}, nil)
	if err := r.Assign(pathID, "esp32_s3_box_3", "Desk"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	identity := &detector.ChipIdentity{MAC: [6]byte{0x8c, 0xbf, 0xea, 0xb3, 0x4e, 0x08}}
	macID := r.UpsertFromProbe(probe.PortDescriptor{Path: "/dev/ttyUSB0"}, identity)
	if macID == pathID {
		t.Fatalf("expected MAC-keyed id to differ from path-keyed id")
	}

	b, ok := r.Get(macID)
	if !ok {
		t.Fatal("expected merged board to exist")
	}
	if b.Assignment == nil || b.Assignment.LogicalName != "Desk" {
		t.Fatalf("expected assignment preserved across merge, got %+v", b.Assignment)
	}
	if _, ok := r.Get(pathID); ok {
		t.Fatalf("expected placeholder board to be gone after merge")
	}
}

func TestAssignUnknownBoardType(t *testing.T) {
	r, _ := newTestRegistry(t)
	id := r.UpsertFromProbe(probe.PortDescriptor{Path: "/dev/ttyUSB1"}, nil)
	err := r.Assign(id, "does-not-exist", "")
	if !IsUnknownBoardType(err) {
		t.Fatalf("expected unknown board type error, got %v", err)
	}
}

func TestMarkAbsentThenList(t *testing.T) {
	r, _ := newTestRegistry(t)
	id := r.UpsertFromProbe(probe.PortDescriptor{Path: "/dev/ttyUSB2"}, nil)
	r.MarkAbsent(id)
	b, ok := r.Get(id)
	if !ok || b.Status != StatusOffline || b.CurrentPort != "" {
		t.Fatalf("expected offline board with no port, got %+v", b)
	}
}

func TestAssignPersistsAndReloads(t *testing.T) {
	r, path := newTestRegistry(t)
	r.LoadBoardType(BoardType{ID: "esp32_s3_box_3", DisplayName: "S3 Box"})
	id := r.UpsertFromProbe(probe.PortDescriptor{Path: "/dev/ttyUSB3"}, nil)
	if err := r.Assign(id, "esp32_s3_box_3", "Desk"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected persisted file: %v", err)
	}

	r2, err := New(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	b, ok := r2.Get(id)
	if !ok || b.Assignment == nil || b.Assignment.LogicalName != "Desk" {
		t.Fatalf("expected assignment to survive reload, got %+v", b)
	}
}

func TestLoadDropsDanglingAssignment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "espbrew-boards.yaml")
	ff := &fileFormat{
		SchemaVersion: CurrentSchemaVersion,
		Assignments:   []fileAssignment{{BoardUniqueID: "MACDEADBEEF00", BoardTypeID: "no-such-type"}},
	}
	if err := save(path, ff); err != nil {
		t.Fatalf("save: %v", err)
	}
	r, err := New(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(r.List()) != 0 {
		t.Fatalf("expected dangling assignment to be dropped, got %+v", r.List())
	}
}
