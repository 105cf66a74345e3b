package probe

import "testing"

func TestIsLikelyESP32USB(t *testing.T) {
	cases := []struct {
		p    PortDescriptor
		want bool
	}{
		{PortDescriptor{IsUSB: true, VendorID: "303a"}, true},
		{PortDescriptor{IsUSB: true, VendorID: "10C4"}, true},
		{PortDescriptor{IsUSB: true, VendorID: "ffff"}, false},
		{PortDescriptor{IsUSB: false, Path: "/dev/ttyUSB0"}, true},
	}
	for _, c := range cases {
		if got := c.p.IsLikelyESP32(); got != c.want {
			t.Errorf("IsLikelyESP32(%+v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestGlobMatch(t *testing.T) {
	if !globMatch("/dev/ttyUSB0", "/dev/ttyUSB*") {
		t.Error("expected match")
	}
	if globMatch("/dev/ttyS0", "/dev/ttyUSB*") {
		t.Error("expected no match")
	}
}
