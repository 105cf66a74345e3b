package assembler

import (
	"bytes"
	"testing"

	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/espproto"
)

func testOpts() Options {
	return Options{
		TargetVariant: chiptypes.ESP32,
		FlashMode:     espproto.FlashModeDIO,
		FlashFreqMHz:  40,
		FlashSizeMB:   4,
	}
}

func TestAssemblePartitionSetOrdersAndValidates(t *testing.T) {
	app, err := espproto.BuildAppImage([]espproto.ImageSegment{{LoadAddr: 0x400d0000, Data: []byte{1, 2, 3, 4}}}, espproto.FlashModeQIO, 80, 4, 0x400d0000)
	if err != nil {
		t.Fatalf("BuildAppImage: %v", err)
	}
	parts := []PartitionInput{
		{Offset: 0x10000, Data: app, Role: RoleApp, Name: "app"},
		{Offset: 0x1000, Data: make([]byte, 0x2000), Role: RoleBootloader, Name: "bootloader"},
		{Offset: 0x8000, Data: make([]byte, 0x1000), Role: RolePartitionTable, Name: "partition_table"},
	}
	plan, err := AssemblePartitionSet(parts, testOpts())
	if err != nil {
		t.Fatalf("AssemblePartitionSet: %v", err)
	}
	if len(plan.Regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(plan.Regions))
	}
	for i := 1; i < len(plan.Regions); i++ {
		if plan.Regions[i].Offset < plan.Regions[i-1].Offset {
			t.Fatalf("regions not sorted by offset: %v", plan.Regions)
		}
	}
	patchedApp := plan.Regions[2].Data
	if patchedApp[2] != 2 { // dio nibble
		t.Errorf("app header byte 2 not patched to dio: got %d", patchedApp[2])
	}
}

func TestAssemblePartitionSetRejectsUnalignedOffset(t *testing.T) {
	parts := []PartitionInput{
		{Offset: 0x1001, Data: []byte{1, 2, 3}, Role: RoleData, Name: "bad"},
	}
	if _, err := AssemblePartitionSet(parts, testOpts()); err == nil {
		t.Fatal("expected alignment error, got nil")
	}
}

func TestAssemblePartitionSetRejectsOverlap(t *testing.T) {
	parts := []PartitionInput{
		{Offset: 0x1000, Data: make([]byte, 0x2000), Role: RoleData, Name: "a"},
		{Offset: 0x2000, Data: make([]byte, 0x1000), Role: RoleData, Name: "b"},
	}
	if _, err := AssemblePartitionSet(parts, testOpts()); err == nil {
		t.Fatal("expected overlap error, got nil")
	}
}

func TestAssembleMergedSingleRegion(t *testing.T) {
	data := bytes.Repeat([]byte{0xaa}, 0x100)
	plan, err := AssembleMerged(data, 0, testOpts())
	if err != nil {
		t.Fatalf("AssembleMerged: %v", err)
	}
	if len(plan.Regions) != 1 || plan.Regions[0].Role != RoleMerged {
		t.Fatalf("unexpected regions: %+v", plan.Regions)
	}
}

func TestAssembleHexCoalescesAndFillsGaps(t *testing.T) {
	// Two data records at 0x0000 and 0x0010 (12-byte gap, under
	// maxHexGapSize so it's filled with 0xff), followed by EOF.
	src := ":04000000DEADBEEFC4\n" +
		":04001000CAFEBABEAC\n" +
		":00000001FF\n"
	plan, err := AssembleHex(bytes.NewBufferString(src), testOpts())
	if err != nil {
		t.Fatalf("AssembleHex: %v", err)
	}
	if len(plan.Regions) != 1 {
		t.Fatalf("expected a single coalesced region, got %d: %+v", len(plan.Regions), plan.Regions)
	}
	r := plan.Regions[0]
	if r.Offset != 0 {
		t.Errorf("expected offset 0, got 0x%x", r.Offset)
	}
	if len(r.Data) != 0x14 {
		t.Fatalf("expected 20 bytes (4 + 12 gap + 4), got %d", len(r.Data))
	}
	for i := 4; i < 16; i++ {
		if r.Data[i] != 0xff {
			t.Errorf("gap byte %d = 0x%02x, want 0xff", i, r.Data[i])
		}
	}
}

func TestAssembleHexRejectsBadChecksum(t *testing.T) {
	src := ":04000000DEADBEEF01\n:00000001FF\n"
	if _, err := AssembleHex(bytes.NewBufferString(src), testOpts()); err == nil {
		t.Fatal("expected checksum error, got nil")
	}
}

func TestAssembleHexRequiresEOF(t *testing.T) {
	src := ":04000000DEADBEEFC4\n"
	if _, err := AssembleHex(bytes.NewBufferString(src), testOpts()); err == nil {
		t.Fatal("expected missing-EOF error, got nil")
	}
}
