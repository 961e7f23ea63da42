package layout

import "testing"

func basicContext() *Context {
	return &Context{
		ID: "ctx1",
		Devices: []Device{
			{ID: "tv", DisplayW: 1920, DisplayH: 1080, DPI: 96, Communal: true, ConcurrentAudio: 1, ConcurrentVideo: 1},
		},
		Groups: []Group{{ID: "main", DeviceIDs: []string{"tv"}}},
	}
}

func basicConstraintSet() *ConstraintSet {
	return &ConstraintSet{Constraints: []ConstraintRecord{
		{
			ConstraintID: "default",
			Communal: &ConstraintConfig{
				Priority: 5,
				PrefSize: RawSize{W: 400, H: 300, Unit: UnitPx},
				MinSize:  RawSize{W: 50, H: 50, Unit: UnitPx},
			},
		},
	}}
}

func TestEvaluatePlacesVisibleComponentAndEmitsCreate(t *testing.T) {
	ctx := basicContext()
	cs := basicConstraintSet()
	comps := map[string]*Component{
		"comp1": {ID: "comp1", ConstraintID: "default", Visible: true, State: StateStarted},
	}

	layout, messages, err := Evaluate(ctx, cs, comps, nil, &sequentialIDs{}, 10000)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(layout.Devices) != 1 || len(layout.Devices[0].Components) != 1 {
		t.Fatalf("layout = %+v, want one component placed on tv", layout)
	}
	if len(messages) != 1 || messages[0].Kind != MessageCreate {
		t.Fatalf("messages = %+v, want one create message", messages)
	}
}

func TestEvaluateSkipsInvisibleComponent(t *testing.T) {
	ctx := basicContext()
	cs := basicConstraintSet()
	comps := map[string]*Component{
		"comp1": {ID: "comp1", ConstraintID: "default", Visible: false, State: StateInited},
	}

	layout, messages, err := Evaluate(ctx, cs, comps, nil, &sequentialIDs{}, 10000)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(layout.Devices) != 0 {
		t.Fatalf("expected no devices placed, got %+v", layout.Devices)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages for a component never placed nor previously known, got %+v", messages)
	}
}

func TestEvaluateSecondCallEmitsHiddenUpdateWhenComponentGoesInvisible(t *testing.T) {
	ctx := basicContext()
	cs := basicConstraintSet()
	comps := map[string]*Component{
		"comp1": {ID: "comp1", ConstraintID: "default", Visible: true, State: StateStarted},
		"comp2": {ID: "comp2", ConstraintID: "default", Visible: true, State: StateStarted},
	}

	layout1, _, err := Evaluate(ctx, cs, comps, nil, &sequentialIDs{}, 10000)
	if err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}

	comps["comp2"].Visible = false
	layout2, messages, err := Evaluate(ctx, cs, comps, layout1, &sequentialIDs{}, 11000)
	if err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}

	var sawHiddenUpdate bool
	for _, m := range messages {
		if m.Kind == MessageUpdate && m.ComponentID == "comp2" {
			sawHiddenUpdate = true
		}
	}
	if !sawHiddenUpdate {
		t.Fatalf("expected comp2 to be carried over hidden after going invisible, messages: %+v", messages)
	}
	_ = layout2
}

func TestEvaluateRejectsNilConstraintSet(t *testing.T) {
	ctx := basicContext()
	_, _, err := Evaluate(ctx, nil, map[string]*Component{}, nil, &sequentialIDs{}, 1000)
	if err == nil || err.Kind != ErrKindProgrammer {
		t.Fatalf("expected a Programmer error for a nil constraint set, got %v", err)
	}
}

func TestSimulateForcesVisibilityWithoutMutatingInput(t *testing.T) {
	ctx := basicContext()
	cs := basicConstraintSet()
	comps := map[string]*Component{
		"comp1": {ID: "comp1", ConstraintID: "default", Visible: false, State: StateInited},
	}

	report, err := Simulate(ctx, cs, comps, []string{"comp1"}, &sequentialIDs{}, 1000)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if report.DeviceOf["comp1"] != "tv" {
		t.Fatalf("DeviceOf = %+v, want comp1 on tv", report.DeviceOf)
	}
	if comps["comp1"].Visible {
		t.Fatalf("Simulate must not mutate the caller's component table")
	}
}
