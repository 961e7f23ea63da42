package layout

// LayoutDiffer compares a newly assembled Layout against the previous one
// and emits the push-notification messages devices need to reconcile their
// on-screen state (§4.6).
type LayoutDiffer struct {
	IDSource      IDSource
	PercentCoords bool
}

// Diff computes the message set for transitioning from prev to next. comps
// provides each component's current lifecycle State (used to tell a
// genuinely destroyed component from one that is merely not currently
// placed) and its opaque payload/parameters for create messages. next is
// mutated in place: components carried over hidden are appended back into
// it so the caller's stored "previous layout" for the following evaluation
// reflects them.
func (d LayoutDiffer) Diff(ctx *Context, prev, next *Layout, comps map[string]*Component, nowMS int64) []Message {
	prevByComponent := flattenLayout(prev)
	nextByComponent := flattenLayout(next)

	var messages []Message

	for id, npc := range nextByComponent {
		ppc, existed := prevByComponent[id]
		if !existed {
			comp := comps[id]
			var payload, params map[string]interface{}
			if comp != nil {
				payload, params = comp.Payload, comp.Parameters
			}
			messages = append(messages, NewCreateMessage(d.IDSource, ctx.ID, &npc, d.PercentCoords, nowMS, payload, params))
			continue
		}
		if geometryChanged(ppc, npc) {
			messages = append(messages, NewUpdateMessage(d.IDSource, ctx.ID, &npc, d.PercentCoords, nowMS))
		}
		if ppc.RegionID != npc.RegionID {
			messages = append(messages, NewLogicalRegionChangeMessage(d.IDSource, ctx.ID, &npc, nowMS))
		}
	}

	for id, ppc := range prevByComponent {
		if _, stillPlaced := nextByComponent[id]; stillPlaced {
			continue
		}
		comp := comps[id]
		if comp != nil && comp.State == StateDestroyed {
			messages = append(messages, NewDestroyMessage(d.IDSource, ctx.ID, ppc.DeviceID, id, ppc.InstanceID, nowMS))
			continue
		}
		// Carry-over rule: a component still known to the context but not
		// placed this round (hidden, or this evaluation's packer failed to
		// fit it) keeps its instanceId and is reported hidden rather than
		// destroyed, so a later evaluation can bring it back without the
		// device ever having torn down its view.
		hidden := ppc
		hidden.Hidden = true
		hidden.X, hidden.Y, hidden.W, hidden.H = -1, -1, -1, -1
		dl := next.deviceLayout(hidden.DeviceID)
		dl.Components = append(dl.Components, hidden)
		messages = append(messages, NewUpdateMessage(d.IDSource, ctx.ID, &hidden, d.PercentCoords, nowMS))
	}

	return messages
}

func flattenLayout(l *Layout) map[string]PlacedComponent {
	out := make(map[string]PlacedComponent)
	if l == nil {
		return out
	}
	for _, dl := range l.Devices {
		for _, pc := range dl.Components {
			out[pc.ComponentID] = pc
		}
	}
	return out
}

func geometryChanged(a, b PlacedComponent) bool {
	const eps = 1e-6
	if a.DeviceID != b.DeviceID {
		return true
	}
	return absf(a.X-b.X) > eps || absf(a.Y-b.Y) > eps || absf(a.W-b.W) > eps || absf(a.H-b.H) > eps || a.ZDepth != b.ZDepth
}
