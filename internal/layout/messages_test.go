package layout

import "testing"

func TestUUIDSourceProducesDistinctIDs(t *testing.T) {
	src := UUIDSource{}
	a := src.NextID()
	b := src.NextID()
	if a == "" || b == "" {
		t.Fatalf("expected non-empty ids")
	}
	if a == b {
		t.Fatalf("expected distinct ids across calls, got %q twice", a)
	}
}

func TestNewCreateMessageOffsetsTimestampBehindNow(t *testing.T) {
	pc := &PlacedComponent{ComponentID: "c1", DeviceID: "tv", InstanceID: "i1", W: 10, H: 10}
	msg := NewCreateMessage(&sequentialIDs{}, "ctx1", pc, false, 5000, nil, nil)
	if msg.TimestampMS != 4900 {
		t.Fatalf("create TimestampMS = %d, want 4900", msg.TimestampMS)
	}
	if msg.Kind != MessageCreate {
		t.Fatalf("Kind = %q, want create", msg.Kind)
	}
}
