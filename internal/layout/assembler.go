package layout

import (
	"fmt"
	"math"
)

// LayoutAssembler walks a pass's final placements and produces the Layout
// wire-adjacent structure: pixel or percent coordinates, deterministic
// instance ids, and the grouped not-placed table (§4.5).
type LayoutAssembler struct{}

// Assemble builds a Layout from the placements and failures of one
// evaluation. Geometry is stored in pixels; AsWirePosition converts it to
// integer pixels or percent-of-bounding-box strings on output (§4.5, §6).
func (LayoutAssembler) Assemble(ctx *Context, placements []Placement, notPlaced []NotPlacedEntry, zDepth map[string]int, now int64) *Layout {
	layout := &Layout{ContextID: ctx.ID, Timestamp: now, NotPlaced: notPlaced}

	for _, pl := range placements {
		dl := layout.deviceLayout(pl.DeviceID)
		pc := PlacedComponent{
			ComponentID: pl.ComponentID,
			DeviceID:    pl.DeviceID,
			RegionID:    pl.RegionID,
			X:           pl.X,
			Y:           pl.Y,
			W:           pl.W,
			H:           pl.H,
			BoundW:      pl.BoundW,
			BoundH:      pl.BoundH,
			ZDepth:      zDepth[pl.ComponentID],
			InstanceID:  instanceID(ctx.ID, ctx.DMAppID, pl.DeviceID, pl.ComponentID),
		}
		dl.Components = append(dl.Components, pc)
	}

	return layout
}

// instanceID deterministically names one component's placement on one
// device within one context, so that re-evaluating an unchanged layout
// yields identical ids and the differ's carry-over rules (§4.6) can match
// placements across evaluations by id alone.
func instanceID(contextID, dmappID, deviceID, componentID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", contextID, dmappID, deviceID, componentID)
}

// AsWirePosition converts a placed component's geometry into the wire units
// requested by the context: integer pixels, or percent-of-bounding-box
// strings rounded to two decimal places (§4.5, §6).
func AsWirePosition(pc *PlacedComponent, percentCoords bool) (x, y, w, h string) {
	if pc.Hidden {
		return "-1", "-1", "-1", "-1"
	}
	if !percentCoords {
		return fmt.Sprintf("%d", int(math.Round(pc.X))),
			fmt.Sprintf("%d", int(math.Round(pc.Y))),
			fmt.Sprintf("%d", int(math.Round(pc.W))),
			fmt.Sprintf("%d", int(math.Round(pc.H)))
	}
	pct := func(v, bound float64) string {
		if bound == 0 {
			return "0.00"
		}
		return fmt.Sprintf("%.2f", v/bound*100)
	}
	return pct(pc.X, pc.BoundW), pct(pc.Y, pc.BoundH), pct(pc.W, pc.BoundW), pct(pc.H, pc.BoundH)
}
