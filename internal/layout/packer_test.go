package layout

import "testing"

func simpleDevice(id string, w, h float64) *Device {
	return &Device{ID: id, DisplayW: w, DisplayH: h, DPI: 96, ConcurrentAudio: 1, ConcurrentVideo: 1}
}

func simpleRect(compID string, priority int, w, h float64, anchors ...Anchor) *Rectangle {
	comp := &Component{ID: compID, Visible: true}
	ec := &EffectiveConstraint{
		ComponentID:  compID,
		Priority:     priority,
		MinSize:      Size{W: 10, H: 10, Unit: UnitPx},
		PrefSize:     Size{W: w, H: h, Unit: UnitPx},
		ValidRegions: []string{"dev"},
		Anchors:      anchors,
	}
	return &Rectangle{Component: comp, Constraint: ec, ReqMin: ec.MinSize, ReqPref: ec.PrefSize}
}

func TestPackerPassOnePlacesIntoWholeDeviceNode(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 1000, 1000)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 1000, H: 1000, BoundW: 1000, BoundH: 1000})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 1, VideoRemaining: 1}

	rect := simpleRect("comp1", 5, 200, 100)
	packer := &Packer{Devices: devices}

	result := packer.PassOne(tree, []*Rectangle{rect})
	if len(result.Placements) != 1 {
		t.Fatalf("Placements = %d, want 1 (failed: %v)", len(result.Placements), result.Failed)
	}
	pl := result.Placements[0]
	if pl.W != 200 || pl.H != 100 {
		t.Fatalf("placement size = (%v,%v), want (200,100)", pl.W, pl.H)
	}
}

func TestPackerPassOneSplitsNodeForMultipleRectangles(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 1000, 500)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 1000, H: 500, BoundW: 1000, BoundH: 500})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 2, VideoRemaining: 2}

	r1 := simpleRect("comp1", 10, 400, 500)
	r2 := simpleRect("comp2", 5, 400, 500)
	packer := &Packer{Devices: devices}

	result := packer.PassOne(tree, []*Rectangle{r1, r2})
	if len(result.Placements) != 2 {
		t.Fatalf("Placements = %d, want 2 (failed: %v)", len(result.Placements), result.Failed)
	}
	for _, pl := range result.Placements {
		if pl.W != 400 || pl.H != 500 {
			t.Fatalf("placement %s size = (%v,%v), want (400,500)", pl.ComponentID, pl.W, pl.H)
		}
	}
}

func TestPackerPassOneFailsWhenTooBigForRegion(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 100, 100)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 100, H: 100, BoundW: 100, BoundH: 100})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 1, VideoRemaining: 1}

	rect := simpleRect("comp1", 5, 1000, 1000)
	rect.ReqMin = Size{W: 1000, H: 1000, Unit: UnitPx}
	packer := &Packer{Devices: devices}

	result := packer.PassOne(tree, []*Rectangle{rect})
	if len(result.Placements) != 0 {
		t.Fatalf("expected no placement, got %d", len(result.Placements))
	}
	if reason := result.Failed["comp1"]; reason != ReasonSkipped {
		t.Fatalf("failure reason = %q, want skipped", reason)
	}
}

func TestPackerRespectsAudioCapacity(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 1000, 1000)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 1000, H: 1000, BoundW: 1000, BoundH: 1000})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 0, VideoRemaining: 1}

	rect := simpleRect("comp1", 5, 200, 100)
	rect.Constraint.Flags = MediaFlags{Audio: true}
	packer := &Packer{Devices: devices}

	result := packer.PassOne(tree, []*Rectangle{rect})
	if len(result.Placements) != 0 {
		t.Fatalf("expected placement to fail with no audio capacity, got %d placements", len(result.Placements))
	}
}

// occupantAwarePacker builds a Packer whose LookupOccupant resolves against
// the constraints of the given rects, the same way evaluate.go wires
// constraintByComp for one group's pass.
func occupantAwarePacker(devices map[string]*Device, rects []*Rectangle) *Packer {
	byComp := make(map[string]*EffectiveConstraint, len(rects))
	for _, r := range rects {
		byComp[r.Component.ID] = r.Constraint
	}
	return &Packer{Devices: devices, LookupOccupant: func(id string) *EffectiveConstraint {
		return byComp[id]
	}}
}

// TestPackerOccupiedNodeSplitRelocatesExistingOccupant exercises Pass 1 step
// (b) (§4.4): comp1 is flexible on height (don't-care) and occupies the
// whole device; comp2 needs an exact 1000x100 slice and outranks comp1, so
// the occupied root node must split, giving comp2 its slice and shrinking
// comp1 onto the remainder rather than leaving comp1's original full-size
// placement in place (which would violate invariant P2).
func TestPackerOccupiedNodeSplitRelocatesExistingOccupant(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 1000, 500)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 1000, H: 500, BoundW: 1000, BoundH: 500})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 2, VideoRemaining: 2}

	r1 := simpleRect("comp1", 1, 1000, -1) // don't care about height
	r2 := simpleRect("comp2", 10, 1000, 100)
	packer := occupantAwarePacker(devices, []*Rectangle{r1, r2})

	result := packer.PassOne(tree, []*Rectangle{r1, r2})
	if len(result.Placements) != 2 {
		t.Fatalf("Placements = %d, want 2 (failed: %v)", len(result.Placements), result.Failed)
	}

	byID := make(map[string]Placement, 2)
	for _, pl := range result.Placements {
		byID[pl.ComponentID] = pl
	}
	comp1, comp2 := byID["comp1"], byID["comp2"]

	if comp1.H == 500 {
		t.Fatalf("comp1 was not relocated off its original full-height placement: %+v", comp1)
	}
	if comp2.W != 1000 || comp2.H != 100 {
		t.Fatalf("comp2 size = (%v,%v), want (1000,100)", comp2.W, comp2.H)
	}

	// invariant P2: the two rectangles on this device must not overlap.
	if rectsOverlap(comp1, comp2) {
		t.Fatalf("comp1 %+v and comp2 %+v overlap", comp1, comp2)
	}
}

// TestPackerOccupiedNodeSplitFailsWhenOccupantNotFlexible confirms step (b)
// does not fire when the current occupant has a finite preference on both
// axes — there's no dimension it's willing to give up.
func TestPackerOccupiedNodeSplitFailsWhenOccupantNotFlexible(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 1000, 500)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 1000, H: 500, BoundW: 1000, BoundH: 500})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 2, VideoRemaining: 2}

	r1 := simpleRect("comp1", 1, 1000, 500) // fully pinned, nothing flexible
	r2 := simpleRect("comp2", 10, 1000, 100)
	packer := occupantAwarePacker(devices, []*Rectangle{r1, r2})

	result := packer.PassOne(tree, []*Rectangle{r1, r2})
	if len(result.Placements) != 1 {
		t.Fatalf("Placements = %d, want 1 (comp2 must not place)", len(result.Placements))
	}
	if reason := result.Failed["comp2"]; reason != ReasonSkipped {
		t.Fatalf("comp2 failure reason = %q, want skipped", reason)
	}
}

func rectsOverlap(a, b Placement) bool {
	if a.DeviceID != b.DeviceID {
		return false
	}
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func TestPairPrioritySplitBothFlexibleUsesMinSizeWithPriorityTiebreak(t *testing.T) {
	n := &Node{W: 1000, H: 500, BoundW: 1000, BoundH: 500}
	dev := simpleDevice("dev", 1000, 500)
	rect := simpleRect("incoming", 10, -1, -1)
	rect.Constraint.MinSize = Size{W: 300, H: 10, Unit: UnitPx}
	existing := simpleRect("existing", 1, -1, -1).Constraint
	existing.MinSize = Size{W: 200, H: 10, Unit: UnitPx}

	near, far := pairPrioritySplit(SplitHorizontal, 999 /* ignored when both flexible */, n, dev, rect, existing)
	// incoming's minSize (300) exceeds existing's (200), so incoming wins the
	// rest of the space and existing is pinned to its own minSize.
	if near != 800 || far != 200 {
		t.Fatalf("near,far = %v,%v, want 800,200", near, far)
	}
}

func TestPairPrioritySplitOneFlexibleGivesFiniteSideItsPref(t *testing.T) {
	n := &Node{W: 1000, H: 500, BoundW: 1000, BoundH: 500}
	dev := simpleDevice("dev", 1000, 500)
	rect := simpleRect("incoming", 10, 300, 100) // finite on both axes
	existing := simpleRect("existing", 1, -1, -1).Constraint // flexible

	near, far := pairPrioritySplit(SplitHorizontal, 300, n, dev, rect, existing)
	if near != 300 || far != 700 {
		t.Fatalf("near,far = %v,%v, want 300,700", near, far)
	}
}

func TestPairPrioritySplitBothFiniteHigherPriorityGetsItsPref(t *testing.T) {
	n := &Node{W: 1000, H: 500, BoundW: 1000, BoundH: 500}
	dev := simpleDevice("dev", 1000, 500)
	rect := simpleRect("incoming", 10, 700, 100)
	existing := simpleRect("existing", 1, 100, 100).Constraint

	near, far := pairPrioritySplit(SplitHorizontal, 700, n, dev, rect, existing)
	// existing's minSize (10, from simpleRect's default) easily fits in the
	// 300px left over, so the higher-priority incoming rectangle gets its
	// full preferred 700px.
	if near != 700 || far != 300 {
		t.Fatalf("near,far = %v,%v, want 700,300", near, far)
	}
}

func TestPairPrioritySplitBothFiniteFallsBackWhenLoserMinDoesNotFit(t *testing.T) {
	n := &Node{W: 1000, H: 500, BoundW: 1000, BoundH: 500}
	dev := simpleDevice("dev", 1000, 500)
	rect := simpleRect("incoming", 10, 950, 100)
	rect.Constraint.MinSize = Size{W: 300, H: 10, Unit: UnitPx}
	existing := simpleRect("existing", 1, 100, 100).Constraint
	existing.MinSize = Size{W: 200, H: 10, Unit: UnitPx}

	near, far := pairPrioritySplit(SplitHorizontal, 950, n, dev, rect, existing)
	// incoming's 950 would leave only 50px, below existing's 200px minSize,
	// so the split falls back to the min-based rule: incoming's minSize (300)
	// exceeds existing's (200), so incoming still gets the larger share.
	if near != 800 || far != 200 {
		t.Fatalf("near,far = %v,%v, want 800,200", near, far)
	}
}

func TestPackerTryPlaceFailsWhenDependencyNotYetPlaced(t *testing.T) {
	devices := map[string]*Device{"dev": simpleDevice("dev", 1000, 1000)}
	tree := NewTree()
	root := tree.newNode(Node{DeviceID: "dev", RegionID: "dev", W: 1000, H: 1000, BoundW: 1000, BoundH: 1000})
	tree.Roots = []NodeID{root}
	tree.Devices["dev"] = &DeviceCounters{DeviceID: "dev", AudioRemaining: 1, VideoRemaining: 1}

	rect := simpleRect("comp1", 5, 200, 100)
	rect.Constraint.Dependencies = []Dependency{{ComponentID: "missing"}}
	packer := &Packer{Devices: devices}

	result := packer.PassOne(tree, []*Rectangle{rect})
	if reason := result.Failed["comp1"]; reason != ReasonNoDependent {
		t.Fatalf("failure reason = %q, want noDependent", reason)
	}
}
