package detector

import "testing"

func TestComposeMAC(t *testing.T) {
	mac := composeMAC(0x0000ab, 0xcdef1234)
	want := [6]byte{0x00, 0xab, 0xcd, 0xef, 0x12, 0x34}
	if mac != want {
		t.Errorf("composeMAC = %x, want %x", mac, want)
	}
}

func TestDetectErrorMessages(t *testing.T) {
	e := &DetectError{Kind: ErrUnknownChip, Magic: 0x12345678}
	if got := e.Error(); got == "" {
		t.Error("expected non-empty message")
	}
	e2 := &DetectError{Kind: ErrNoSync}
	if got := e2.Error(); got == "" {
		t.Error("expected non-empty message")
	}
}
