package layout

import "testing"

// sequentialIDs is a deterministic IDSource for reproducible test fixtures.
type sequentialIDs struct{ n int }

func (s *sequentialIDs) NextID() string {
	s.n++
	return "msg" + string(rune('0'+s.n))
}

func TestDifferEmitsCreateForNewComponent(t *testing.T) {
	ctx := &Context{ID: "ctx1"}
	next := &Layout{Devices: []DeviceLayout{
		{DeviceID: "tv", Components: []PlacedComponent{{ComponentID: "c1", DeviceID: "tv", W: 100, H: 100, InstanceID: "i1"}}},
	}}
	comps := map[string]*Component{"c1": {ID: "c1", State: StateStarted, Visible: true}}

	differ := LayoutDiffer{IDSource: &sequentialIDs{}}
	messages := differ.Diff(ctx, nil, next, comps, 1000)

	if len(messages) != 1 || messages[0].Kind != MessageCreate {
		t.Fatalf("messages = %+v, want one create message", messages)
	}
	if messages[0].TimestampMS != 900 {
		t.Fatalf("create timestamp = %d, want 900 (100ms before now)", messages[0].TimestampMS)
	}
}

func TestDifferEmitsUpdateOnGeometryChange(t *testing.T) {
	ctx := &Context{ID: "ctx1"}
	prev := &Layout{Devices: []DeviceLayout{
		{DeviceID: "tv", Components: []PlacedComponent{{ComponentID: "c1", DeviceID: "tv", X: 0, W: 100, H: 100, InstanceID: "i1"}}},
	}}
	next := &Layout{Devices: []DeviceLayout{
		{DeviceID: "tv", Components: []PlacedComponent{{ComponentID: "c1", DeviceID: "tv", X: 50, W: 100, H: 100, InstanceID: "i1"}}},
	}}
	comps := map[string]*Component{"c1": {ID: "c1", State: StateStarted, Visible: true}}

	differ := LayoutDiffer{IDSource: &sequentialIDs{}}
	messages := differ.Diff(ctx, prev, next, comps, 1000)

	if len(messages) != 1 || messages[0].Kind != MessageUpdate {
		t.Fatalf("messages = %+v, want one update message", messages)
	}
}

func TestDifferOmitsMessageWhenUnchanged(t *testing.T) {
	ctx := &Context{ID: "ctx1"}
	pc := PlacedComponent{ComponentID: "c1", DeviceID: "tv", X: 0, W: 100, H: 100, RegionID: "r1", InstanceID: "i1"}
	prev := &Layout{Devices: []DeviceLayout{{DeviceID: "tv", Components: []PlacedComponent{pc}}}}
	next := &Layout{Devices: []DeviceLayout{{DeviceID: "tv", Components: []PlacedComponent{pc}}}}
	comps := map[string]*Component{"c1": {ID: "c1", State: StateStarted, Visible: true}}

	differ := LayoutDiffer{IDSource: &sequentialIDs{}}
	messages := differ.Diff(ctx, prev, next, comps, 1000)

	if len(messages) != 0 {
		t.Fatalf("messages = %+v, want none for an unchanged placement", messages)
	}
}

func TestDifferDestroysComponentsInDestroyedState(t *testing.T) {
	ctx := &Context{ID: "ctx1"}
	prev := &Layout{Devices: []DeviceLayout{
		{DeviceID: "tv", Components: []PlacedComponent{{ComponentID: "c1", DeviceID: "tv", InstanceID: "i1"}}},
	}}
	next := &Layout{}
	comps := map[string]*Component{"c1": {ID: "c1", State: StateDestroyed}}

	differ := LayoutDiffer{IDSource: &sequentialIDs{}}
	messages := differ.Diff(ctx, prev, next, comps, 1000)

	if len(messages) != 1 || messages[0].Kind != MessageDestroy {
		t.Fatalf("messages = %+v, want one destroy message", messages)
	}
	if len(next.Devices) != 0 {
		t.Fatalf("destroyed component should not be carried back into next layout")
	}
}

func TestDifferCarriesOverUnplacedNonDestroyedComponentHidden(t *testing.T) {
	ctx := &Context{ID: "ctx1"}
	prev := &Layout{Devices: []DeviceLayout{
		{DeviceID: "tv", Components: []PlacedComponent{{ComponentID: "c1", DeviceID: "tv", W: 100, H: 100, InstanceID: "i1"}}},
	}}
	next := &Layout{}
	comps := map[string]*Component{"c1": {ID: "c1", State: StateStarted, Visible: false}}

	differ := LayoutDiffer{IDSource: &sequentialIDs{}}
	messages := differ.Diff(ctx, prev, next, comps, 1000)

	if len(messages) != 1 || messages[0].Kind != MessageUpdate {
		t.Fatalf("messages = %+v, want one hidden update message", messages)
	}
	if messages[0].X != "-1" || messages[0].W != "-1" {
		t.Fatalf("carried-over hidden message geometry = (%s,%s), want -1,-1", messages[0].X, messages[0].W)
	}
	flattened := flattenLayout(next)
	if pc, ok := flattened["c1"]; !ok || !pc.Hidden {
		t.Fatalf("expected c1 carried back into next layout as hidden, got %+v ok=%v", pc, ok)
	}
}
