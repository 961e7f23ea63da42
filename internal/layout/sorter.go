package layout

import "sort"

// RectangleSorter orders a group's candidate rectangles before Pass 1 of the
// packer (§4.3): priority descending, then area descending, then anchored
// before unanchored, then anchor position, then insertion order.
type RectangleSorter struct{}

// candidate bundles a component with its per-group resolved constraint and
// pre-computed sort keys; the packer never needs these keys again once
// sorted, so they aren't carried on Rectangle itself.
type candidate struct {
	rect *Rectangle
	area float64
}

// Sort returns rects in packing order and separates out any that provably
// cannot fit on any valid device/region even at MinSize (§4.3's trimming
// step) as notPlaced/incompatible — these never reach the packer.
func (RectangleSorter) Sort(rects []*Rectangle, devices map[string]*Device) (ordered []*Rectangle, trimmed []string) {
	cands := make([]candidate, 0, len(rects))
	for _, r := range rects {
		if r.Constraint.Priority <= 0 {
			trimmed = append(trimmed, r.Component.ID)
			continue
		}
		if !fitsAnyDevice(r, devices) {
			trimmed = append(trimmed, r.Component.ID)
			continue
		}
		cands = append(cands, candidate{rect: r, area: largestCandidateArea(r, devices)})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.rect.Constraint.Priority != b.rect.Constraint.Priority {
			return a.rect.Constraint.Priority > b.rect.Constraint.Priority
		}
		if a.area != b.area {
			return a.area > b.area
		}
		aAnchored := len(a.rect.Constraint.Anchors) > 0
		bAnchored := len(b.rect.Constraint.Anchors) > 0
		if aAnchored != bAnchored {
			return aAnchored
		}
		if aAnchored && bAnchored {
			ar, br := a.rect.Constraint.bestAnchorRank(), b.rect.Constraint.bestAnchorRank()
			if ar != br {
				if ar == -1 {
					return false
				}
				if br == -1 {
					return true
				}
				return ar < br
			}
		}
		return a.rect.InsertionOrder < b.rect.InsertionOrder
	})

	ordered = make([]*Rectangle, len(cands))
	for i, c := range cands {
		ordered[i] = c.rect
	}
	return ordered, trimmed
}

// fitsAnyDevice reports whether rect's declared MinSize fits within at least
// one of its valid regions, ignoring anchors and capacity — a cheap
// pre-filter so hopeless rectangles never occupy a packer attempt.
func fitsAnyDevice(rect *Rectangle, devices map[string]*Device) bool {
	valid := make(map[string]bool, len(rect.Constraint.ValidRegions))
	for _, r := range rect.Constraint.ValidRegions {
		valid[r] = true
	}
	if len(valid) == 0 {
		return false
	}
	for _, d := range devices {
		regions := d.Regions
		if len(regions) == 0 {
			regions = []Region{{ID: d.ID, W: d.DisplayW, H: d.DisplayH}}
		}
		for _, r := range regions {
			if !valid[r.ID] {
				continue
			}
			minW, minH := ResolveSize(rect.ReqMin, r.W, r.H, d.DPI)
			if minW == -1 {
				minW = 0
			}
			if minH == -1 {
				minH = 0
			}
			if minW <= r.W && minH <= r.H {
				return true
			}
		}
	}
	return false
}

// largestCandidateArea resolves rect's preferred size against the largest
// region it may validly target, used as the area sort key (§4.3 rule 2).
func largestCandidateArea(rect *Rectangle, devices map[string]*Device) float64 {
	valid := make(map[string]bool, len(rect.Constraint.ValidRegions))
	for _, r := range rect.Constraint.ValidRegions {
		valid[r] = true
	}
	var bestW, bestH, bestArea, bestDPI float64
	for _, d := range devices {
		regions := d.Regions
		if len(regions) == 0 {
			regions = []Region{{ID: d.ID, W: d.DisplayW, H: d.DisplayH}}
		}
		for _, r := range regions {
			if !valid[r.ID] {
				continue
			}
			if r.W*r.H > bestW*bestH {
				bestW, bestH, bestDPI = r.W, r.H, d.DPI
			}
		}
	}
	w, h := ResolveSize(rect.ReqPref, bestW, bestH, bestDPI)
	if w == -1 {
		w = bestW
	}
	if h == -1 {
		h = bestH
	}
	bestArea = w * h
	return bestArea
}
