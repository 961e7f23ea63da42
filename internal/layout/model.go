// Package layout implements the companion-screen layout engine: the pure
// function evaluate(context, constraintSet, previousLayout) -> (newLayout, diff)
// described in the spec. Every sub-component (constraint resolution, BSP
// region tree, rectangle sorting, the three-pass packer, layout assembly and
// diffing) lives in this package as a collaborator with no I/O of its own —
// callers own persistence, transport and timing.
package layout

// Unit is the declared unit for a size or margin value before resolution.
type Unit string

const (
	UnitPx      Unit = "px"
	UnitPercent Unit = "percent"
	UnitInches  Unit = "inches"
)

// Size is a (width, height, unit) triple. A dimension of -1 means "don't
// care" for a preferred size.
type Size struct {
	W, H float64
	Unit Unit
}

// Anchor is one of the six anchor positions a component may request.
type Anchor string

const (
	AnchorTop     Anchor = "top"
	AnchorBottom  Anchor = "bottom"
	AnchorLeft    Anchor = "left"
	AnchorRight   Anchor = "right"
	AnchorVCenter Anchor = "vcenter"
	AnchorHCenter Anchor = "hcenter"
)

// anchorOrder gives the tie-break order used by the RectangleSorter (§4.3
// rule 4): top, right, left, bottom. vcenter/hcenter never participate in
// this ordering (open question 1) and sort after the four edge anchors.
var anchorOrder = map[Anchor]int{
	AnchorTop:    0,
	AnchorRight:  1,
	AnchorLeft:   2,
	AnchorBottom: 3,
}

// MediaFlags marks a component's demand on shared device resources.
type MediaFlags struct {
	Audio            bool
	Video            bool
	TouchInteraction bool
}

// Dependency names another component that must also be placed. SameDevice
// corresponds to componentDeviceDependency (open question 3): the dependency
// must land on the identical device, not merely anywhere in the layout.
type Dependency struct {
	ComponentID string
	SameDevice  bool
}

// EffectiveConstraint is the materialised, per-component constraint that the
// packer consumes. ConstraintResolver produces one of these per component
// and device flavour (communal/personal) within a group — two per component
// in a mixed group, per spec §4.1.
type EffectiveConstraint struct {
	ComponentID  string
	GroupID      string // needed to re-resolve device-scoped priority overrides per candidate node
	Priority     int
	MinSize      Size
	PrefSize     Size
	Aspect       float64 // height / width; 0 = free
	Margin       RawSize // resolved lazily per node via ResolveMargin
	ValidRegions []string // listed explicitly by the resolver; empty = no region passed the filters (not a candidate)
	ValidDevices []string // non-empty only when a componentDeviceDependency constrains the device set
	Anchors      []Anchor
	Flags        MediaFlags
	Dependencies []Dependency
}

// PriorityFor re-resolves priority against a concrete candidate device,
// completing the device > group > context > constraint-default order
// (ConstraintResolver.Resolve already folded group/context/default into
// ec.Priority since the device isn't known until the packer tries a node).
func (c *EffectiveConstraint) PriorityFor(comp *Component, deviceID string) int {
	if v, ok := comp.PriorityOverrides.Resolve(deviceID, c.GroupID); ok {
		return v
	}
	return c.Priority
}

// HasAnchor reports whether the constraint declares the given anchor.
func (c *EffectiveConstraint) HasAnchor(a Anchor) bool {
	for _, x := range c.Anchors {
		if x == a {
			return true
		}
	}
	return false
}

// bestAnchorRank returns the lowest (best) anchorOrder rank among the
// constraint's anchors, or -1 if it has no ranked anchor.
func (c *EffectiveConstraint) bestAnchorRank() int {
	best := -1
	for _, a := range c.Anchors {
		if rank, ok := anchorOrder[a]; ok {
			if best == -1 || rank < best {
				best = rank
			}
		}
	}
	return best
}

// ComponentState is a node in the component lifecycle state machine (§4.8).
type ComponentState string

const (
	StateUninitialised ComponentState = "uninitialised"
	StateInited        ComponentState = "inited"
	StateStarted       ComponentState = "started"
	StateStopped       ComponentState = "stopped"
	StateDestroyed     ComponentState = "destroyed"
)

// PriorityOverrides is the dynamic override table resolved in the fixed
// order device > group > context > constraint default (§4.1, design note).
// A value of -1 for a given scope means "no override at this scope".
type PriorityOverrides struct {
	Device  map[string]int // deviceId -> priority
	Group   map[string]int // groupId -> priority
	Context *int
}

// Resolve walks device > group > context in order and returns the first
// override present, or ok=false if none apply.
func (o PriorityOverrides) Resolve(deviceID, groupID string) (int, bool) {
	if o.Device != nil {
		if v, ok := o.Device[deviceID]; ok && v != -1 {
			return v, true
		}
	}
	if o.Group != nil {
		if v, ok := o.Group[groupID]; ok && v != -1 {
			return v, true
		}
	}
	if o.Context != nil && *o.Context != -1 {
		return *o.Context, true
	}
	return 0, false
}

// Component is a displayable element bound to a constraint and driven by the
// external transaction interface (§3).
type Component struct {
	ID                string
	ConstraintID      string
	State             ComponentState
	StartTime         *int64 // nanoseconds since epoch; nil = not running
	StopTime          *int64
	Visible           bool
	PriorityOverrides PriorityOverrides
	PrefSizeOverride  *Size
	Payload           map[string]interface{} // opaque; passed through untouched
	Parameters        map[string]interface{}
	InsertionIndex    int // declaration order in the constraint document; stable sort tie-break
}

// Running reports whether the component is in a state a device is currently
// expected to host (inited, started, or stopped-but-not-yet-destroyed with a
// start time recorded).
func (c *Component) Running() bool {
	return c.StartTime != nil && c.State != StateDestroyed
}

// Orientation is a device's current rotation.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Region is one rectangular sub-area of a device's display.
type Region struct {
	ID        string
	W, H      float64 // px, after the device's current orientation has been applied
	Resizable bool
}

// Device exposes one or more regions with capability metadata.
type Device struct {
	ID                    string
	DisplayW, DisplayH    float64 // px, post-orientation
	DPI                   float64
	ConcurrentAudio       int
	ConcurrentVideo       int
	Touch                 bool
	Communal              bool
	SupportedOrientations []Orientation
	Regions               []Region // empty = whole-device single implicit region
	GroupID               string
	Orientation           Orientation
}

// GroupType classifies a Group by the communal-ness of its members (§3).
type GroupType string

const (
	GroupCommunal GroupType = "communal"
	GroupPersonal GroupType = "personal"
	GroupMixed    GroupType = "mixed"
)

// Group is a subset of context devices laid out together.
type Group struct {
	ID        string
	DeviceIDs []string
}

// TypeOf derives a Group's GroupType from its member devices.
func (g *Group) TypeOf(devices map[string]*Device) GroupType {
	allCommunal, anyCommunal := true, false
	for _, id := range g.DeviceIDs {
		d, ok := devices[id]
		if !ok {
			continue
		}
		if d.Communal {
			anyCommunal = true
		} else {
			allCommunal = false
		}
	}
	switch {
	case allCommunal && anyCommunal:
		return GroupCommunal
	case !anyCommunal:
		return GroupPersonal
	default:
		return GroupMixed
	}
}

// RawSize is a constraint-document size field prior to unit resolution.
type RawSize struct {
	W, H float64
	Unit Unit
}

// ConstraintConfig is one (personal or communal) half of a constraint
// record, as read from the constraint document (§6).
type ConstraintConfig struct {
	Aspect                    string // "w:h"
	PrefSize                  RawSize
	MinSize                   RawSize
	TargetRegions             []string
	Priority                  int
	Audio                     bool
	Video                     bool
	TouchInteraction          bool
	Margin                    RawSize
	Anchor                    []Anchor
	ComponentDependency       []string
	ComponentDeviceDependency bool
}

// ConstraintRecord pairs a constraintId with its personal/communal configs.
// Communal-only or personal-only constraints leave the other field nil.
type ConstraintRecord struct {
	ConstraintID string
	Personal     *ConstraintConfig
	Communal     *ConstraintConfig
}

// ConstraintSet is the full constraint document's constraint list (§6). A
// record with ConstraintID "default" must exist.
type ConstraintSet struct {
	Constraints []ConstraintRecord
}

// ByID indexes the constraint set by id for O(1) lookup.
func (cs *ConstraintSet) ByID() map[string]*ConstraintRecord {
	m := make(map[string]*ConstraintRecord, len(cs.Constraints))
	for i := range cs.Constraints {
		m[cs.Constraints[i].ConstraintID] = &cs.Constraints[i]
	}
	return m
}

// Context is the full input snapshot for one evaluation (§6).
type Context struct {
	ID            string
	DMAppID       string
	Devices       []Device
	Groups        []Group
	PercentCoords bool
	ReduceFactor  float64 // default 0.8 if zero
	ReduceTries   int     // default 5 if zero
}

// NotPlacedReason is the failure taxonomy per rectangle (§4.4, §7).
type NotPlacedReason string

const (
	ReasonNoDevice     NotPlacedReason = "noDevice"
	ReasonIncompatible NotPlacedReason = "incompatible"
	ReasonSkipped      NotPlacedReason = "skipped"
	ReasonNoDependent  NotPlacedReason = "noDependent"
)

// NotPlacedEntry groups components sharing a group and failure reason.
type NotPlacedEntry struct {
	GroupID      string
	Status       NotPlacedReason
	ComponentIDs []string
}

// PlacedComponent is one component's placement in the assembled layout
// (§4.5). Position/size are always stored as pixels internally; Hidden
// marks a carried-over stub emitted with no real geometry (§4.6 rules 1-2).
type PlacedComponent struct {
	ComponentID string
	DeviceID    string
	RegionID    string
	X, Y        float64
	W, H        float64
	ZDepth      int
	InstanceID  string
	Hidden      bool // true => wire form emits position/size as unset (-1,-1)
	BoundW      float64
	BoundH      float64
}

// DeviceLayout is one device's placed components in a Layout.
type DeviceLayout struct {
	DeviceID   string
	Components []PlacedComponent
}

// Layout is the full per-context packing result (§3).
type Layout struct {
	ContextID string
	Devices   []DeviceLayout
	NotPlaced []NotPlacedEntry
	Timestamp int64 // milliseconds since epoch (Evaluate's nowMS, stored as given), not nanoseconds
}

// deviceLayout returns a device's DeviceLayout, creating one if absent.
func (l *Layout) deviceLayout(deviceID string) *DeviceLayout {
	for i := range l.Devices {
		if l.Devices[i].DeviceID == deviceID {
			return &l.Devices[i]
		}
	}
	l.Devices = append(l.Devices, DeviceLayout{DeviceID: deviceID})
	return &l.Devices[len(l.Devices)-1]
}
