package mqttpub

import "testing"

func TestNilPublisherIsNoOp(t *testing.T) {
	var p *Publisher
	// None of these must panic; a disabled/absent MQTT broker must never
	// affect the HTTP/push surface.
	p.PublishStatus(StatusMessage{BoardID: "MACDEADBEEF00", Status: "Available"})
	p.Close()
}
