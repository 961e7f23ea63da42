package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolvedConstraint carries the one or two EffectiveConstraint records a
// component gets within one group (§4.1): Communal for communal-flavoured
// nodes, Personal for personal-flavoured nodes. Monolithic (all-communal or
// all-personal) groups populate only the matching field.
type ResolvedConstraint struct {
	ComponentID string
	Communal    *EffectiveConstraint
	Personal    *EffectiveConstraint
}

// ForDevice returns whichever effective constraint applies to a node hosted
// on the given device, or nil if the component has no constraint usable on
// devices of that flavour.
func (r *ResolvedConstraint) ForDevice(d *Device) *EffectiveConstraint {
	if d.Communal {
		return r.Communal
	}
	return r.Personal
}

// ConstraintResolver materialises per-component effective constraints (§4.1).
type ConstraintResolver struct {
	byID map[string]*ConstraintRecord
}

// NewConstraintResolver indexes a ConstraintSet for repeated resolution.
func NewConstraintResolver(cs *ConstraintSet) *ConstraintResolver {
	return &ConstraintResolver{byID: cs.ByID()}
}

// Resolve produces the ResolvedConstraint for one component within one
// group. devices maps device id to device for the group's members (needed
// to compute the valid-region whitelist across every group member).
func (r *ConstraintResolver) Resolve(comp *Component, group *Group, groupType GroupType, devices map[string]*Device) (*ResolvedConstraint, *Error) {
	record, ok := r.byID[comp.ConstraintID]
	if !ok {
		record, ok = r.byID["default"]
		if !ok {
			return nil, newProgrammerError("constraint set has no 'default' record and component " + comp.ID + " references an unknown constraintId")
		}
	}

	out := &ResolvedConstraint{ComponentID: comp.ID}

	needCommunal := groupType == GroupCommunal || groupType == GroupMixed
	needPersonal := groupType == GroupPersonal || groupType == GroupMixed

	if needCommunal && record.Communal != nil {
		ec, err := r.resolveOne(comp, record.Communal, group, devices, true)
		if err != nil {
			return nil, err
		}
		out.Communal = ec
	}
	if needPersonal && record.Personal != nil {
		ec, err := r.resolveOne(comp, record.Personal, group, devices, false)
		if err != nil {
			return nil, err
		}
		out.Personal = ec
	}

	if out.Communal == nil && out.Personal == nil {
		return nil, newInvalidConstraint(comp.ID, "no constraint config applicable to this group's device flavour")
	}

	return out, nil
}

func (r *ConstraintResolver) resolveOne(comp *Component, cfg *ConstraintConfig, group *Group, devices map[string]*Device, communalFlavour bool) (*EffectiveConstraint, *Error) {
	aspect, err := parseAspect(cfg.Aspect)
	if err != nil {
		return nil, newInvalidConstraint(comp.ID, err.Error())
	}

	minSize := cfg.MinSize
	if minSize == (RawSize{}) {
		minSize = RawSize{W: 1, H: 1, Unit: UnitPx}
	}
	prefSize := cfg.PrefSize
	if comp.PrefSizeOverride != nil {
		prefSize = RawSize{W: comp.PrefSizeOverride.W, H: comp.PrefSizeOverride.H, Unit: comp.PrefSizeOverride.Unit}
	} else if prefSize == (RawSize{}) {
		prefSize = RawSize{W: -1, H: -1, Unit: UnitPx}
	}

	if minSize.W != -1 && prefSize.W != -1 && prefSize.W < minSize.W {
		return nil, newInvalidConstraint(comp.ID, "prefSize.w smaller than minSize.w")
	}
	if minSize.H != -1 && prefSize.H != -1 && prefSize.H < minSize.H {
		return nil, newInvalidConstraint(comp.ID, "prefSize.h smaller than minSize.h")
	}

	// Only the group/context scopes are applied here; the concrete device id
	// isn't known yet. EffectiveConstraint.PriorityFor can resolve the device
	// scope for a given device, but the sorter and packer compare Priority,
	// so device-scoped overrides do not affect placement.
	priority := cfg.Priority
	if v, ok := comp.PriorityOverrides.Resolve("", group.ID); ok {
		priority = v
	}

	validRegions := collectValidRegions(cfg, group, devices, communalFlavour)

	var deps []Dependency
	for _, id := range cfg.ComponentDependency {
		deps = append(deps, Dependency{ComponentID: id, SameDevice: cfg.ComponentDeviceDependency})
	}

	return &EffectiveConstraint{
		ComponentID:  comp.ID,
		GroupID:      group.ID,
		Priority:     priority,
		MinSize:      Size{W: minSize.W, H: minSize.H, Unit: minSize.Unit},
		PrefSize:     Size{W: prefSize.W, H: prefSize.H, Unit: prefSize.Unit},
		Aspect:       aspect,
		Margin:       cfg.Margin,
		ValidRegions: validRegions,
		Anchors:      cfg.Anchor,
		Flags:        MediaFlags{Audio: cfg.Audio, Video: cfg.Video, TouchInteraction: cfg.TouchInteraction},
		Dependencies: deps,
	}, nil
}

// parseAspect parses an aspect string "w:h" into the float h/w per §4.1. An
// empty string means "free" (0.0).
func parseAspect(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed aspect %q: expected \"w:h\"", s)
	}
	w, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, fmt.Errorf("malformed aspect %q: expected positive integers w:h", s)
	}
	return h / w, nil
}

// collectValidRegions intersects targetRegions with the capability filter
// across every device of the requested flavour in the group.
func collectValidRegions(cfg *ConstraintConfig, group *Group, devices map[string]*Device, communalFlavour bool) []string {
	whitelist := make(map[string]bool)
	hasWhitelist := len(cfg.TargetRegions) > 0
	if hasWhitelist {
		for _, r := range cfg.TargetRegions {
			whitelist[r] = true
		}
	}

	var out []string
	for _, devID := range group.DeviceIDs {
		d, ok := devices[devID]
		if !ok || d.Communal != communalFlavour {
			continue
		}
		if cfg.Audio && d.ConcurrentAudio <= 0 {
			continue
		}
		if cfg.Video && d.ConcurrentVideo <= 0 {
			continue
		}
		if cfg.TouchInteraction && !d.Touch {
			continue
		}
		regions := d.Regions
		if len(regions) == 0 {
			regions = []Region{{ID: d.ID, W: d.DisplayW, H: d.DisplayH, Resizable: false}}
		}
		for _, r := range regions {
			if hasWhitelist && !whitelist[r.ID] {
				continue
			}
			out = append(out, r.ID)
		}
	}
	return out
}

// ResolveSize converts a declared Size into pixels against a host region's
// bounding box and device dpi (§4.1). A dimension of -1 ("don't care") is
// returned unchanged.
func ResolveSize(s Size, boundW, boundH, dpi float64) (w, h float64) {
	w, h = s.W, s.H
	switch s.Unit {
	case UnitInches:
		if w != -1 {
			w = w * dpi
		}
		if h != -1 {
			h = h * dpi
		}
	case UnitPercent:
		if w != -1 {
			w = w / 100 * boundW
		}
		if h != -1 {
			h = h / 100 * boundH
		}
	}
	return w, h
}

// ResolveMargin converts a declared margin value into pixels. Margins use
// the same px|inches|percent unit handling as sizes; percent is relative to
// the bounding width (margins are assumed symmetric across both axes at the
// caller's discretion).
func ResolveMargin(m RawSize, boundW, boundH, dpi float64) float64 {
	switch m.Unit {
	case UnitInches:
		return m.W * dpi
	case UnitPercent:
		return m.W / 100 * boundW
	default:
		return m.W
	}
}
