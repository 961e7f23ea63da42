package layout

import (
	"sort"

	"github.com/yourflock/roost/layoutengine/pkg/metrics"
)

// simulationOptions controls which of the three packer passes evaluateInternal
// runs; Simulate (§4.7) skips reduction-and-retry and beautify so a preview
// reflects only the cheap, deterministic first pass.
type simulationOptions struct {
	skipReduceAndBeautify bool
}

// Evaluate is the engine's single entry point (§2): given a context, its
// constraint set, the full component table, and the previous layout (nil on
// the first evaluation for a context), it produces the new layout and the
// messages needed to bring devices from the old to the new state. Only
// Programmer-kind errors (malformed input shape) are returned; every
// component-level failure is folded into Layout.NotPlaced instead.
func Evaluate(ctx *Context, cs *ConstraintSet, comps map[string]*Component, prevLayout *Layout, ids IDSource, nowMS int64) (*Layout, []Message, *Error) {
	layout, _, err := evaluateInternal(ctx, cs, comps, ids, nowMS, simulationOptions{})
	if err != nil {
		return nil, nil, err
	}

	differ := LayoutDiffer{IDSource: ids, PercentCoords: ctx.PercentCoords}
	messages := differ.Diff(ctx, prevLayout, layout, comps, nowMS)
	return layout, messages, nil
}

// evaluateInternal runs constraint resolution, per-group sorting and
// packing, and assembly, returning the occupant-constraint table alongside
// the layout (neither Evaluate nor Simulate reads that table).
func evaluateInternal(ctx *Context, cs *ConstraintSet, comps map[string]*Component, ids IDSource, nowMS int64, opts simulationOptions) (*Layout, map[string]*EffectiveConstraint, *Error) {
	if cs == nil {
		return nil, nil, newProgrammerError("nil constraint set")
	}
	reduceFactor := ctx.ReduceFactor
	if reduceFactor <= 0 {
		reduceFactor = 0.8
	}
	reduceTries := ctx.ReduceTries
	if reduceTries <= 0 {
		reduceTries = 5
	}

	deviceByID := make(map[string]*Device, len(ctx.Devices))
	for i := range ctx.Devices {
		deviceByID[ctx.Devices[i].ID] = &ctx.Devices[i]
	}

	resolver := NewConstraintResolver(cs)
	byID := cs.ByID()
	if _, ok := byID["default"]; !ok {
		for _, id := range sortedComponentIDs(comps) {
			c := comps[id]
			if _, known := byID[c.ConstraintID]; !known && c.Visible && c.State != StateDestroyed {
				return nil, nil, newProgrammerError("constraint set has no 'default' record and component " + c.ID + " references an unknown constraintId")
			}
		}
	}
	var notPlaced []NotPlacedEntry
	var allPlacements []Placement
	occByComp := make(map[string]*EffectiveConstraint)
	zDepth := make(map[string]int)

	for gi := range ctx.Groups {
		group := &ctx.Groups[gi]
		groupType := group.TypeOf(deviceByID)
		groupDevices := make(map[string]*Device, len(group.DeviceIDs))
		for _, id := range group.DeviceIDs {
			if d, ok := deviceByID[id]; ok {
				groupDevices[id] = d
			}
		}

		rects, constraintByComp, failures := buildRectangles(resolver, group, groupType, groupDevices, comps)
		for compID, reason := range failures {
			notPlaced = append(notPlaced, NotPlacedEntry{GroupID: group.ID, Status: reason, ComponentIDs: []string{compID}})
		}
		if len(rects) == 0 {
			continue
		}

		ordered, trimmed := RectangleSorter{}.Sort(rects, groupDevices)
		for _, id := range trimmed {
			notPlaced = append(notPlaced, NotPlacedEntry{GroupID: group.ID, Status: ReasonIncompatible, ComponentIDs: []string{id}})
		}

		tree := RegionTreeBuilder{}.Build(group, groupDevices)
		// LookupOccupant must resolve components placed earlier in *this*
		// group's own pass (constraintByComp covers every candidate in the
		// current group) as well as components from groups already finished
		// (occByComp) — occupied-node splitting (§4.4 Pass 1 step b) only
		// ever encounters occupants from the former, since each group gets
		// its own fresh tree, but both are checked for safety.
		placer := &Packer{Devices: groupDevices, LookupOccupant: func(id string) *EffectiveConstraint {
			if ec, ok := constraintByComp[id]; ok {
				return ec
			}
			return occByComp[id]
		}}

		best := placer.PassOne(tree, ordered)
		bestTree := tree

		if !opts.skipReduceAndBeautify && len(best.Failed) > 0 {
			bestTree, best = reduceAndRetry(placer, group, groupDevices, ordered, best, reduceFactor, reduceTries, ctx.ID)
		}
		if !opts.skipReduceAndBeautify {
			bestTree, best = beautify(placer, group, groupDevices, ordered, bestTree, best)
		}

		for _, pl := range best.Placements {
			allPlacements = append(allPlacements, pl)
			occByComp[pl.ComponentID] = constraintByComp[pl.ComponentID]
			zDepth[pl.ComponentID] = len(allPlacements)
		}
		for compID, reason := range best.Failed {
			notPlaced = append(notPlaced, NotPlacedEntry{GroupID: group.ID, Status: reason, ComponentIDs: []string{compID}})
		}
	}

	enforceSameDeviceDependencies(&allPlacements, &notPlaced, occByComp)

	layout := LayoutAssembler{}.Assemble(ctx, allPlacements, mergeNotPlaced(notPlaced), zDepth, nowMS)
	return layout, occByComp, nil
}

// buildRectangles resolves every visible, non-destroyed component's
// constraint within one group, merging the communal/personal
// EffectiveConstraint halves into the single candidate the packer considers
// (valid regions are the union of both; other fields come from whichever
// half is present, preferring communal when both are). Device-scoped
// priority overrides are not applied to the merged candidate.
func buildRectangles(resolver *ConstraintResolver, group *Group, groupType GroupType, groupDevices map[string]*Device, comps map[string]*Component) ([]*Rectangle, map[string]*EffectiveConstraint, map[string]NotPlacedReason) {
	constraintByComp := make(map[string]*EffectiveConstraint)
	failures := make(map[string]NotPlacedReason)
	var rects []*Rectangle

	ids := sortedComponentIDs(comps)
	for _, id := range ids {
		comp := comps[id]
		if !comp.Visible || comp.State == StateDestroyed {
			continue
		}
		rc, err := resolver.Resolve(comp, group, groupType, groupDevices)
		if err != nil {
			failures[comp.ID] = ReasonIncompatible
			continue
		}
		ec := mergeResolved(rc)
		if ec == nil || len(ec.ValidRegions) == 0 {
			continue // not a candidate for this group at all
		}
		constraintByComp[comp.ID] = ec
		rects = append(rects, &Rectangle{
			Component:      comp,
			Constraint:     ec,
			ReqMin:         ec.MinSize,
			ReqPref:        ec.PrefSize,
			InsertionOrder: comp.InsertionIndex,
		})
	}
	return rects, constraintByComp, failures
}

func mergeResolved(rc *ResolvedConstraint) *EffectiveConstraint {
	switch {
	case rc.Communal != nil && rc.Personal != nil:
		merged := *rc.Communal
		merged.ValidRegions = append(append([]string(nil), rc.Communal.ValidRegions...), rc.Personal.ValidRegions...)
		return &merged
	case rc.Communal != nil:
		return rc.Communal
	case rc.Personal != nil:
		return rc.Personal
	default:
		return nil
	}
}

func sortedComponentIDs(comps map[string]*Component) []string {
	ids := make([]string, 0, len(comps))
	for id := range comps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return comps[ids[i]].InsertionIndex < comps[ids[j]].InsertionIndex })
	return ids
}

// reduceAndRetry implements Pass 2 (§4.4): shrink every still-failing
// rectangle's working preferred size by reduceFactor, floored at its
// declared minSize, and re-run Pass 1 from a clean tree, keeping whichever
// attempt places the most rectangles (ties broken by least leftover white
// space) across up to reduceTries rounds.
func reduceAndRetry(placer *Packer, group *Group, devices map[string]*Device, rects []*Rectangle, best PackResult, reduceFactor float64, reduceTries int, contextID string) (*Tree, PackResult) {
	bestTree := RegionTreeBuilder{}.Build(group, devices)
	replay := placer.PassOne(bestTree, rects)
	best = replay // re-run once on a clean tree so whitespace scoring below is comparable across rounds
	bestSpace := whiteSpace(bestTree)

	working := cloneRects(rects)
	for try := 0; try < reduceTries; try++ {
		shrinkFailed(working, best.Failed, reduceFactor)
		metrics.RecordPackerRetry(contextID)

		attemptTree := RegionTreeBuilder{}.Build(group, devices)
		attempt := placer.PassOne(attemptTree, working)

		if len(attempt.Placements) > len(best.Placements) ||
			(len(attempt.Placements) == len(best.Placements) && whiteSpace(attemptTree) < bestSpace) {
			best = attempt
			bestTree = attemptTree
			bestSpace = whiteSpace(attemptTree)
		}
		if len(attempt.Failed) == 0 {
			break
		}
	}
	return bestTree, best
}

func cloneRects(rects []*Rectangle) []*Rectangle {
	out := make([]*Rectangle, len(rects))
	for i, r := range rects {
		cp := *r
		out[i] = &cp
	}
	return out
}

func shrinkFailed(rects []*Rectangle, failed map[string]NotPlacedReason, factor float64) {
	for _, r := range rects {
		if _, stillFailing := failed[r.Component.ID]; !stillFailing {
			continue
		}
		if r.ReqPref.W != -1 {
			r.ReqPref.W = maxf(r.ReqPref.W*factor, r.ReqMin.W)
		}
		if r.ReqPref.H != -1 {
			r.ReqPref.H = maxf(r.ReqPref.H*factor, r.ReqMin.H)
		}
	}
}

// whiteSpace sums the area of every unoccupied leaf, used as Pass 2's
// tie-break between equally-successful attempts.
func whiteSpace(t *Tree) float64 {
	var total float64
	for _, id := range t.unoccupiedLeaves() {
		n := t.Node(id)
		total += n.W * n.H
	}
	return total
}

// beautify implements Pass 3 (§4.4): rebuild a clean tree, place the
// surviving rectangles largest-first without resorting to occupied-node
// splitting, and adopt the result only if it places at least as many
// components using at least as much total placed area.
func beautify(placer *Packer, group *Group, devices map[string]*Device, rects []*Rectangle, currentTree *Tree, current PackResult) (*Tree, PackResult) {
	placedIDs := make(map[string]bool, len(current.Placements))
	for _, pl := range current.Placements {
		placedIDs[pl.ComponentID] = true
	}
	var survivors []*Rectangle
	for _, r := range rects {
		if placedIDs[r.Component.ID] {
			survivors = append(survivors, r)
		}
	}
	sort.SliceStable(survivors, func(i, j int) bool {
		return prefArea(survivors[i]) > prefArea(survivors[j])
	})

	beautifyTree := RegionTreeBuilder{}.Build(group, devices)
	noSplitPlacer := &Packer{Devices: devices} // LookupOccupant nil => never splits an occupied node
	attempt := noSplitPlacer.PassOne(beautifyTree, survivors)

	if len(attempt.Placements) < len(current.Placements) {
		return currentTree, current
	}
	if placedArea(attempt.Placements) < placedArea(current.Placements) {
		return currentTree, current
	}
	return beautifyTree, attempt
}

func prefArea(r *Rectangle) float64 {
	w, h := r.ReqPref.W, r.ReqPref.H
	if w == -1 {
		w = r.ReqMin.W
	}
	if h == -1 {
		h = r.ReqMin.H
	}
	return w * h
}

func placedArea(placements []Placement) float64 {
	var total float64
	for _, p := range placements {
		total += p.W * p.H
	}
	return total
}

// enforceSameDeviceDependencies demotes any placement whose
// componentDeviceDependency target ended up on a different device, per open
// question 3(b): the dependent loses its placement and is reported
// noDependent rather than silently left on the wrong device.
func enforceSameDeviceDependencies(placements *[]Placement, notPlaced *[]NotPlacedEntry, occByComp map[string]*EffectiveConstraint) {
	deviceOf := make(map[string]string, len(*placements))
	for _, pl := range *placements {
		deviceOf[pl.ComponentID] = pl.DeviceID
	}

	kept := (*placements)[:0]
	for _, pl := range *placements {
		ec := occByComp[pl.ComponentID]
		ok := true
		if ec != nil {
			for _, dep := range ec.Dependencies {
				if !dep.SameDevice {
					continue
				}
				if devID, placed := deviceOf[dep.ComponentID]; !placed || devID != pl.DeviceID {
					ok = false
					*notPlaced = append(*notPlaced, NotPlacedEntry{Status: ReasonNoDependent, ComponentIDs: []string{pl.ComponentID}})
					break
				}
			}
		}
		if ok {
			kept = append(kept, pl)
		}
	}
	*placements = kept
}

// mergeNotPlaced groups individual-component entries sharing a group and
// status into the wire shape's one-entry-per-(group,status) form (§6).
func mergeNotPlaced(entries []NotPlacedEntry) []NotPlacedEntry {
	type key struct {
		group  string
		status NotPlacedReason
	}
	order := make([]key, 0, len(entries))
	grouped := make(map[key][]string)
	for _, e := range entries {
		k := key{e.GroupID, e.Status}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], e.ComponentIDs...)
	}
	out := make([]NotPlacedEntry, 0, len(order))
	for _, k := range order {
		out = append(out, NotPlacedEntry{GroupID: k.group, Status: k.status, ComponentIDs: grouped[k]})
	}
	return out
}
