package layout

import "testing"

func TestPriorityOverridesResolve(t *testing.T) {
	ctxPriority := 5
	overrides := PriorityOverrides{
		Device:  map[string]int{"dev1": 9},
		Group:   map[string]int{"grp1": 7},
		Context: &ctxPriority,
	}

	tests := []struct {
		name     string
		deviceID string
		groupID  string
		want     int
		wantOK   bool
	}{
		{"device wins", "dev1", "grp1", 9, true},
		{"group wins absent device", "dev2", "grp1", 7, true},
		{"context wins absent device and group", "dev2", "grp2", 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := overrides.Resolve(tt.deviceID, tt.groupID)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("Resolve(%q,%q) = (%d,%v), want (%d,%v)", tt.deviceID, tt.groupID, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	empty := PriorityOverrides{}
	if _, ok := empty.Resolve("x", "y"); ok {
		t.Fatalf("expected no override with empty table")
	}
}

func TestEffectiveConstraintHasAnchorAndRank(t *testing.T) {
	ec := &EffectiveConstraint{Anchors: []Anchor{AnchorBottom, AnchorLeft}}
	if !ec.HasAnchor(AnchorLeft) {
		t.Fatalf("expected HasAnchor(left) true")
	}
	if ec.HasAnchor(AnchorTop) {
		t.Fatalf("expected HasAnchor(top) false")
	}
	// left (rank 2) beats bottom (rank 3): lower rank wins.
	if rank := ec.bestAnchorRank(); rank != anchorOrder[AnchorLeft] {
		t.Fatalf("bestAnchorRank() = %d, want %d", rank, anchorOrder[AnchorLeft])
	}

	noRanked := &EffectiveConstraint{Anchors: []Anchor{AnchorVCenter}}
	if rank := noRanked.bestAnchorRank(); rank != -1 {
		t.Fatalf("bestAnchorRank() with only vcenter = %d, want -1", rank)
	}
}

func TestGroupTypeOf(t *testing.T) {
	devices := map[string]*Device{
		"tv":     {ID: "tv", Communal: true},
		"tablet": {ID: "tablet", Communal: false},
	}
	tests := []struct {
		name string
		ids  []string
		want GroupType
	}{
		{"all communal", []string{"tv"}, GroupCommunal},
		{"all personal", []string{"tablet"}, GroupPersonal},
		{"mixed", []string{"tv", "tablet"}, GroupMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Group{ID: "g", DeviceIDs: tt.ids}
			if got := g.TypeOf(devices); got != tt.want {
				t.Fatalf("TypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComponentRunning(t *testing.T) {
	start := int64(100)
	c := &Component{State: StateStarted, StartTime: &start}
	if !c.Running() {
		t.Fatalf("expected Running() true for started component with a start time")
	}
	c.State = StateDestroyed
	if c.Running() {
		t.Fatalf("expected Running() false once destroyed")
	}
	c2 := &Component{State: StateInited}
	if c2.Running() {
		t.Fatalf("expected Running() false with no start time")
	}
}
