package layout

// SimulationReport is the supplemented result of a simulation run: which
// device each placed component would land on (forced-visible or not), and which could not
// be placed at all, without mutating any stored previous layout or emitting
// real push notifications (§4.7).
type SimulationReport struct {
	ContextID   string
	DeviceOf    map[string]string // componentId -> deviceId
	NotPlaced   []NotPlacedEntry
	CreateOnly  []Message // create messages a caller may choose to preview, never sent
}

// Simulate runs constraint resolution and Pass 1 placement only (no
// reduction-and-retry, no beautify) against a context where every named
// component is forced visible, regardless of its real Component.Visible
// flag. It is used to answer "where would this land" without perturbing the
// engine's live state (§4.7).
func Simulate(ctx *Context, cs *ConstraintSet, comps map[string]*Component, forceVisible []string, ids IDSource, nowMS int64) (*SimulationReport, *Error) {
	forced := make(map[string]bool, len(forceVisible))
	for _, id := range forceVisible {
		forced[id] = true
	}

	simComps := make(map[string]*Component, len(comps))
	for id, c := range comps {
		cp := *c
		if forced[id] {
			cp.Visible = true
		}
		simComps[id] = &cp
	}

	layout, _, evalErr := evaluateInternal(ctx, cs, simComps, ids, nowMS, simulationOptions{skipReduceAndBeautify: true})
	if evalErr != nil {
		return nil, evalErr
	}

	report := &SimulationReport{ContextID: ctx.ID, DeviceOf: make(map[string]string), NotPlaced: layout.NotPlaced}
	for _, dl := range layout.Devices {
		for _, pc := range dl.Components {
			report.DeviceOf[pc.ComponentID] = pc.DeviceID
			if forced[pc.ComponentID] {
				report.CreateOnly = append(report.CreateOnly, NewCreateMessage(ids, ctx.ID, &pc, ctx.PercentCoords, nowMS, simComps[pc.ComponentID].Payload, simComps[pc.ComponentID].Parameters))
			}
		}
	}
	return report, nil
}
