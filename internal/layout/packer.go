package layout

import "sort"

// Rectangle is one candidate for placement, carrying the mutable working
// size used across Pass 2's reduction retries (§4.4). ReqPref starts as the
// constraint's declared PrefSize and shrinks by ReduceFactor each retry,
// floored at ReqMin (the declared MinSize, which never changes).
type Rectangle struct {
	Component      *Component
	Constraint     *EffectiveConstraint
	ReqMin         Size
	ReqPref        Size
	InsertionOrder int
}

// Placement is one rectangle's successful placement in a tree (§4.5 input).
type Placement struct {
	ComponentID string
	DeviceID    string
	RegionID    string
	NodeID      NodeID
	X, Y, W, H  float64 // pixels, margin already subtracted
	BoundW      float64
	BoundH      float64
}

// PackResult is the outcome of one packer invocation.
type PackResult struct {
	Placements []Placement
	Failed     map[string]NotPlacedReason // componentId -> reason
}

// Packer implements the three-pass BSP placement algorithm (§4.4).
type Packer struct {
	Devices map[string]*Device
	// LookupOccupant resolves a placed component's EffectiveConstraint,
	// needed when considering splitting an already-occupied node.
	LookupOccupant func(componentID string) *EffectiveConstraint
}

// undoLog is a stack of reversible operations, used to roll back a failed
// placement attempt instead of deep-cloning the whole tree (design note:
// "prefer undo logs ... commit-or-rollback per attempted placement").
type undoLog struct{ ops []func() }

func (u *undoLog) push(f func()) { u.ops = append(u.ops, f) }

func (u *undoLog) rollback() {
	for i := len(u.ops) - 1; i >= 0; i-- {
		u.ops[i]()
	}
	u.ops = nil
}

func (u *undoLog) commit() { u.ops = nil }

// PassOne attempts to place every rectangle once, in order, splitting
// unoccupied (and where necessary occupied) nodes as it goes (§4.4 Pass 1).
func (p *Packer) PassOne(tree *Tree, rects []*Rectangle) PackResult {
	result := PackResult{Failed: make(map[string]NotPlacedReason)}
	placedSet := make(map[string]*Placement)
	var order []string

	for _, rect := range rects {
		if pl, reason, ok := p.tryPlace(tree, rect, placedSet); ok {
			placedSet[rect.Component.ID] = pl
			order = append(order, rect.Component.ID)
			tree.consolidateAround(pl.NodeID)
		} else {
			result.Failed[rect.Component.ID] = reason
		}
	}

	// Placements are read back from placedSet rather than appended inline
	// above, because an occupied-node split (attemptOnOccupiedNode) can
	// relocate and mutate an earlier rectangle's *Placement in place — a
	// copy taken at append time would miss that update.
	for _, id := range order {
		result.Placements = append(result.Placements, *placedSet[id])
	}
	return result
}

// tryPlace attempts a single rectangle against the current tree state,
// rolling back all tree mutations if it ultimately cannot be placed.
func (p *Packer) tryPlace(tree *Tree, rect *Rectangle, placedSet map[string]*Placement) (*Placement, NotPlacedReason, bool) {
	// (vi) dependencies already placed.
	for _, dep := range rect.Constraint.Dependencies {
		depPl, ok := placedSet[dep.ComponentID]
		if !ok {
			return nil, ReasonNoDependent, false
		}
		if dep.SameDevice {
			// open question 3(a): the dependency's device id narrows the
			// candidate's valid-device set for this attempt.
			rect.Constraint.ValidDevices = []string{depPl.DeviceID}
		}
	}

	candidates := p.candidateNodes(tree, rect, false)
	log := &undoLog{}
	for _, id := range candidates {
		if pl, ok := p.attemptOnNode(tree, rect, id, log); ok {
			log.commit()
			return pl, "", true
		}
		log.rollback()
	}

	// (b) try splitting an occupied node.
	occCandidates := p.candidateNodes(tree, rect, true)
	for _, id := range occCandidates {
		if pl, ok := p.attemptOnOccupiedNode(tree, rect, id, placedSet, log); ok {
			log.commit()
			return pl, "", true
		}
		log.rollback()
	}

	if len(candidates) == 0 && len(occCandidates) == 0 {
		if len(rect.Constraint.ValidRegions) == 0 {
			return nil, ReasonNoDevice, false
		}
		return nil, ReasonIncompatible, false
	}
	return nil, ReasonSkipped, false
}

// candidateNodes returns leaf node ids eligible to host rect, in
// deterministic (NodeID ascending) order, filtered to occupied or
// unoccupied per wantOccupied.
func (p *Packer) candidateNodes(tree *Tree, rect *Rectangle, wantOccupied bool) []NodeID {
	var pool []NodeID
	if wantOccupied {
		pool = tree.occupiedLeaves()
	} else {
		pool = tree.unoccupiedLeaves()
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })

	validRegion := make(map[string]bool, len(rect.Constraint.ValidRegions))
	for _, r := range rect.Constraint.ValidRegions {
		validRegion[r] = true
	}
	var validDevice map[string]bool
	if len(rect.Constraint.ValidDevices) > 0 {
		validDevice = make(map[string]bool, len(rect.Constraint.ValidDevices))
		for _, d := range rect.Constraint.ValidDevices {
			validDevice[d] = true
		}
	}

	var out []NodeID
	for _, id := range pool {
		n := tree.nodes[id]
		if len(validRegion) > 0 && !validRegion[n.RegionID] {
			continue
		}
		if validDevice != nil && !validDevice[n.DeviceID] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// attemptOnNode tries to place rect into an unoccupied node n, splitting it
// down to size if it is larger than required. Returns ok=false (with the
// undo log already containing any partial mutations, left for the caller to
// roll back) if the node cannot host the rectangle.
func (p *Packer) attemptOnNode(tree *Tree, rect *Rectangle, id NodeID, log *undoLog) (*Placement, bool) {
	n := tree.nodes[id]
	dev := p.Devices[n.DeviceID]
	if dev == nil {
		return nil, false
	}
	if !p.anchorCompatible(n, rect, nil) {
		return nil, false
	}

	margin := ResolveMargin(rect.Constraint.Margin, n.BoundW, n.BoundH, dev.DPI)
	reqW, reqH := p.requestedPx(rect, n, dev, margin)
	minW, minH := ResolveSize(rect.ReqMin, n.BoundW, n.BoundH, dev.DPI)

	avail := n.W - 2*margin
	availH := n.H - 2*margin
	if avail < minW || availH < minH {
		return nil, false
	}
	if reqW > avail {
		reqW = avail
	}
	if reqH > availH {
		reqH = availH
	}
	if reqW < minW || reqH < minH {
		return nil, false
	}

	leaf := n
	if reqW < n.W-2*margin-1e-6 || reqH < n.H-2*margin-1e-6 {
		split, _, ok := p.splitToSize(tree, n, reqW+2*margin, reqH+2*margin, rect, nil, dev, log)
		if !ok {
			return nil, false
		}
		leaf = split
	}

	if !p.consumeCapacity(tree, n.DeviceID, rect.Constraint.Flags, log) {
		return nil, false
	}
	p.occupy(tree, leaf.ID, rect.Component.ID, log)

	return &Placement{
		ComponentID: rect.Component.ID,
		DeviceID:    n.DeviceID,
		RegionID:    n.RegionID,
		NodeID:      leaf.ID,
		X:           leaf.X + margin,
		Y:           leaf.Y + margin,
		W:           leaf.W - 2*margin,
		H:           leaf.H - 2*margin,
		BoundW:      leaf.BoundW,
		BoundH:      leaf.BoundH,
	}, true
}

// attemptOnOccupiedNode implements Pass 1 step (b): splitting an occupied
// node whose current occupant doesn't care about its missing dimension. The
// evicted occupant's own recorded placement is relocated onto whichever
// remainder node is left over (relocateOccupant) so it never ends up with a
// stale, now-overlapping placement (§3 invariant P2).
func (p *Packer) attemptOnOccupiedNode(tree *Tree, rect *Rectangle, id NodeID, placedSet map[string]*Placement, log *undoLog) (*Placement, bool) {
	n := tree.nodes[id]
	dev := p.Devices[n.DeviceID]
	if dev == nil || n.Occupant == "" {
		return nil, false
	}
	if p.LookupOccupant == nil {
		return nil, false
	}
	occupantID := n.Occupant
	oc := p.LookupOccupant(occupantID)
	if oc == nil {
		return nil, false
	}
	occupantPl, ok := placedSet[occupantID]
	if !ok {
		return nil, false // occupant wasn't placed in this pass; nothing to relocate
	}

	// The occupant must not care about the axis the split would consume.
	flexDim := flexibleAxis(oc)
	if flexDim == axisNone {
		return nil, false
	}
	if !p.anchorCompatible(n, rect, oc) {
		return nil, false
	}

	margin := ResolveMargin(rect.Constraint.Margin, n.BoundW, n.BoundH, dev.DPI)
	reqW, reqH := p.requestedPx(rect, n, dev, margin)
	minW, minH := ResolveSize(rect.ReqMin, n.BoundW, n.BoundH, dev.DPI)
	if reqW < minW {
		reqW = minW
	}
	if reqH < minH {
		reqH = minH
	}

	switch flexDim {
	case axisHorizontal:
		if reqW+2*margin > n.W {
			return nil, false
		}
	case axisVertical:
		if reqH+2*margin > n.H {
			return nil, false
		}
	}

	split, remainder, ok := p.splitToSize(tree, n, reqW+2*margin, reqH+2*margin, rect, oc, dev, log)
	if !ok {
		return nil, false
	}
	if _, ok := p.relocateOccupant(tree, remainder, occupantID, oc, occupantPl, dev, log); !ok {
		return nil, false
	}
	if !p.consumeCapacity(tree, n.DeviceID, rect.Constraint.Flags, log) {
		return nil, false
	}
	p.occupy(tree, split.ID, rect.Component.ID, log)

	return &Placement{
		ComponentID: rect.Component.ID,
		DeviceID:    n.DeviceID,
		RegionID:    n.RegionID,
		NodeID:      split.ID,
		X:           split.X + margin,
		Y:           split.Y + margin,
		W:           split.W - 2*margin,
		H:           split.H - 2*margin,
		BoundW:      split.BoundW,
		BoundH:      split.BoundH,
	}, true
}

// relocateOccupant moves an evicted occupant onto the largest remainder node
// that still satisfies its resolved minSize, mutating its existing
// *Placement in place (PassOne reads placements back from the same pointer,
// so this is visible in the final PackResult) and marking that node
// occupied. Returns false if no remainder node fits it, in which case the
// caller must abandon the occupied-node split entirely.
func (p *Packer) relocateOccupant(tree *Tree, remainder []*Node, occupantID string, oc *EffectiveConstraint, occupantPl *Placement, dev *Device, log *undoLog) (*Node, bool) {
	var best *Node
	var bestMargin float64
	for _, r := range remainder {
		margin := ResolveMargin(oc.Margin, r.BoundW, r.BoundH, dev.DPI)
		minW, minH := ResolveSize(oc.MinSize, r.BoundW, r.BoundH, dev.DPI)
		availW, availH := r.W-2*margin, r.H-2*margin
		if availW < minW || availH < minH {
			continue
		}
		if best == nil || r.W*r.H > best.W*best.H {
			best, bestMargin = r, margin
		}
	}
	if best == nil {
		return nil, false
	}

	old := *occupantPl
	occupantPl.NodeID = best.ID
	occupantPl.X = best.X + bestMargin
	occupantPl.Y = best.Y + bestMargin
	occupantPl.W = best.W - 2*bestMargin
	occupantPl.H = best.H - 2*bestMargin
	occupantPl.BoundW = best.BoundW
	occupantPl.BoundH = best.BoundH
	log.push(func() { *occupantPl = old })

	p.occupy(tree, best.ID, occupantID, log)
	return best, true
}

// axis names which dimension of a node an occupied-node split would give up.
type axis int

const (
	axisNone axis = iota
	axisHorizontal
	axisVertical
)

// flexibleAxis reports which axis (if any) of a constraint is "don't care"
// (prefSize dim == -1) and can be given up to an occupied-node split.
func flexibleAxis(ec *EffectiveConstraint) axis {
	wFlex := ec.PrefSize.W == -1
	hFlex := ec.PrefSize.H == -1
	switch {
	case wFlex && hFlex:
		return axisHorizontal // either axis is free; horizontal split is the conservative default
	case wFlex:
		return axisHorizontal
	case hFlex:
		return axisVertical
	default:
		return axisNone
	}
}

// anchorCompatible checks occupied-node splitting may not occur when the two
// rectangles want mutually exclusive anchors on the same edge (§4.4 Pass 1
// step b). existing is nil when n is unoccupied (no conflict possible).
func (p *Packer) anchorCompatible(n *Node, rect *Rectangle, existing *EffectiveConstraint) bool {
	if existing == nil {
		return true
	}
	opposite := map[Anchor]Anchor{
		AnchorTop: AnchorBottom, AnchorBottom: AnchorTop,
		AnchorLeft: AnchorRight, AnchorRight: AnchorLeft,
	}
	for _, a := range rect.Constraint.Anchors {
		if opp, ok := opposite[a]; ok && existing.HasAnchor(opp) {
			return false
		}
	}
	return true
}

// consumeCapacity reserves a device's remaining audio/video capacity for one
// placement (§3 invariant, §4.4 step iii), returning false (with the tree
// left unmutated) if the device has none left.
func (p *Packer) consumeCapacity(tree *Tree, deviceID string, flags MediaFlags, log *undoLog) bool {
	c := tree.Devices[deviceID]
	if c == nil {
		return true
	}
	if flags.Audio {
		if c.AudioRemaining <= 0 {
			return false
		}
		c.AudioRemaining--
		log.push(func() { c.AudioRemaining++ })
	}
	if flags.Video {
		if c.VideoRemaining <= 0 {
			return false
		}
		c.VideoRemaining--
		log.push(func() { c.VideoRemaining++ })
	}
	return true
}

// occupy marks a leaf node as occupied, recording an undo step.
func (p *Packer) occupy(tree *Tree, id NodeID, componentID string, log *undoLog) {
	n := tree.nodes[id]
	old := n.Occupant
	n.Occupant = componentID
	log.push(func() { n.Occupant = old })
}

// requestedPx resolves the rectangle's current working preferred size into
// pixels against node n, deriving any "don't care" (-1) axis from aspect or
// from available space, per §4.1/§4.4.
func (p *Packer) requestedPx(rect *Rectangle, n *Node, dev *Device, margin float64) (w, h float64) {
	w, h = ResolveSize(rect.ReqPref, n.BoundW, n.BoundH, dev.DPI)
	avail := n.W - 2*margin
	availH := n.H - 2*margin

	aspect := rect.Constraint.Aspect
	switch {
	case w == -1 && h == -1:
		w, h = avail, availH
	case w == -1:
		w = avail
		if aspect != 0 {
			w = h / aspect
		}
	case h == -1:
		h = availH
		if aspect != 0 {
			h = w * aspect
		}
	}
	if aspect != 0 {
		w, h = correctAspect(w, h, aspect)
	}
	return w, h
}

// correctAspect adjusts (w,h) to satisfy h/w == aspect while preserving the
// larger of the two requested dimensions where possible.
func correctAspect(w, h, aspect float64) (float64, float64) {
	if aspect <= 0 {
		return w, h
	}
	wantH := w * aspect
	if absf(wantH-h) < 1e-6 {
		return w, h
	}
	// Prefer constraining by width; if that would grow h beyond what was
	// asked, constrain by height instead.
	if wantH <= h {
		return w, wantH
	}
	return h / aspect, h
}

// splitToSize splits node n down to (targetW, targetH) (including margin),
// producing a leaf sized exactly to fit the rectangle plus the leftover
// sibling node(s) (nil when the node already matched exactly). existing is
// the incumbent occupant's constraint when splitting an occupied node, or
// nil for an unoccupied split. When existing is non-nil, a split that would
// leave no remainder node to relocate the evicted occupant onto fails.
func (p *Packer) splitToSize(tree *Tree, n *Node, targetW, targetH float64, rect *Rectangle, existing *EffectiveConstraint, dev *Device, log *undoLog) (*Node, []*Node, bool) {
	remW := n.W - targetW
	remH := n.H - targetH
	if remW < -1e-6 || remH < -1e-6 {
		return nil, nil, false
	}
	if remW < 1e-6 && remH < 1e-6 {
		if existing != nil {
			return nil, nil, false // no room left to relocate the evicted occupant
		}
		return n, nil, true // node already exactly the right size
	}

	wantsVCenter := rect.Constraint.HasAnchor(AnchorVCenter)
	if wantsVCenter && remH > 1e-6 {
		mid := n.Y + n.H/2
		if mid >= n.Y && mid <= n.Y+n.H {
			if leaf, remainder, ok := p.vcenterSplit(tree, n, targetW, targetH, existing, log); ok {
				return leaf, remainder, true
			}
		}
	}

	// Longer legal axis first: split along whichever axis has more slack,
	// then split the resulting leaf along the other axis if it is still
	// larger than the target there.
	var leaf *Node
	var remainder []*Node
	var ok bool
	if remW >= remH {
		leaf, remainder, ok = p.splitAlong(tree, n, SplitHorizontal, targetW, rect, existing, dev, log)
		if ok && leaf.H-targetH > 1e-6 {
			leaf, _, ok = p.splitAlong(tree, leaf, SplitVertical, targetH, rect, nil, dev, log)
		}
	} else {
		leaf, remainder, ok = p.splitAlong(tree, n, SplitVertical, targetH, rect, existing, dev, log)
		if ok && leaf.W-targetW > 1e-6 {
			leaf, _, ok = p.splitAlong(tree, leaf, SplitHorizontal, targetW, rect, nil, dev, log)
		}
	}
	if !ok {
		return nil, nil, false
	}
	return leaf, remainder, true
}

// splitAlong performs a 2-way split of n along dir, sizing the "near" child
// to extent (width if horizontal, height if vertical) using the pair-priority
// rule (§4.4 node-splitting detail). The near child always hosts the
// incoming rectangle; far is returned as the remainder for the caller to
// either leave unoccupied (existing == nil) or relocate an evicted occupant
// onto (existing != nil).
func (p *Packer) splitAlong(tree *Tree, n *Node, dir SplitDir, extent float64, rect *Rectangle, existing *EffectiveConstraint, dev *Device, log *undoLog) (*Node, []*Node, bool) {
	nearSize, farSize := pairPrioritySplit(dir, extent, n, dev, rect, existing)
	if nearSize <= 0 || farSize < 0 {
		return nil, nil, false
	}
	if existing != nil && farSize < 1e-6 {
		return nil, nil, false // nowhere to relocate the evicted occupant
	}

	var near, far Node
	if dir == SplitHorizontal {
		near = Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X, Y: n.Y, W: nearSize, H: n.H, BoundW: n.BoundW, BoundH: n.BoundH}
		far = Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X + nearSize, Y: n.Y, W: farSize, H: n.H, BoundW: n.BoundW, BoundH: n.BoundH}
	} else {
		near = Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X, Y: n.Y, W: n.W, H: nearSize, BoundW: n.BoundW, BoundH: n.BoundH}
		far = Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X, Y: n.Y + nearSize, W: n.W, H: farSize, BoundW: n.BoundW, BoundH: n.BoundH}
	}

	nearID := tree.newNode(near)
	farID := tree.newNode(far)
	tree.nodes[nearID].Parent, tree.nodes[nearID].HasParent = n.ID, true
	tree.nodes[farID].Parent, tree.nodes[farID].HasParent = n.ID, true

	oldOccupant := n.Occupant
	oldHasChild := n.HasChild
	oldChildren := n.Children
	oldSplitDir := n.SplitDir

	n.HasChild = true
	n.Children = []NodeID{nearID, farID}
	n.SplitDir = dir
	n.Occupant = ""

	log.push(func() {
		delete(tree.nodes, nearID)
		delete(tree.nodes, farID)
		n.HasChild = oldHasChild
		n.Children = oldChildren
		n.SplitDir = oldSplitDir
		n.Occupant = oldOccupant
	})

	if existing == nil {
		return tree.nodes[nearID], nil, true
	}
	return tree.nodes[nearID], []*Node{tree.nodes[farID]}, true
}

// vcenterSplit performs the 3-way vcenter split (top slice, centred
// rectangle, bottom slice, optional right margin) described in §4.4,
// returning the centred leaf plus every other slice as the remainder. When
// existing is non-nil (splitting an occupied node) and centering would
// leave no slice besides the centred one, the split fails — there would be
// nowhere to relocate the evicted occupant.
func (p *Packer) vcenterSplit(tree *Tree, n *Node, targetW, targetH float64, existing *EffectiveConstraint, log *undoLog) (*Node, []*Node, bool) {
	if targetH > n.H || targetW > n.W {
		return nil, nil, false
	}
	centerY := n.Y + (n.H-targetH)/2
	topH := centerY - n.Y
	bottomH := n.H - targetH - topH
	if topH < 0 || bottomH < 0 {
		return nil, nil, false
	}

	var ids []NodeID
	var children []Node
	if topH > 1e-6 {
		children = append(children, Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X, Y: n.Y, W: n.W, H: topH, BoundW: n.BoundW, BoundH: n.BoundH})
	}
	center := Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X, Y: centerY, W: targetW, H: targetH, BoundW: n.BoundW, BoundH: n.BoundH}
	centerIdx := len(children)
	children = append(children, center)
	if bottomH > 1e-6 {
		children = append(children, Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X, Y: centerY + targetH, W: n.W, H: bottomH, BoundW: n.BoundW, BoundH: n.BoundH})
	}
	rightW := n.W - targetW
	if rightW > 1e-6 {
		children = append(children, Node{DeviceID: n.DeviceID, RegionID: n.RegionID, X: n.X + targetW, Y: centerY, W: rightW, H: targetH, BoundW: n.BoundW, BoundH: n.BoundH})
	}

	if existing != nil && len(children) == 1 {
		return nil, nil, false
	}

	for _, c := range children {
		id := tree.newNode(c)
		ids = append(ids, id)
		tree.nodes[id].Parent, tree.nodes[id].HasParent = n.ID, true
	}

	oldOccupant := n.Occupant
	oldHasChild := n.HasChild
	oldChildren := n.Children
	n.HasChild = true
	n.Occupant = ""
	n.Children = ids

	log.push(func() {
		for _, id := range ids {
			delete(tree.nodes, id)
		}
		n.HasChild = oldHasChild
		n.Children = oldChildren
		n.Occupant = oldOccupant
	})

	var remainder []*Node
	for i, id := range ids {
		if i == centerIdx {
			continue
		}
		remainder = append(remainder, tree.nodes[id])
	}
	return tree.nodes[ids[centerIdx]], remainder, true
}

// pairPrioritySplit sizes the near/far children of a 2-way split per §4.4's
// node-splitting detail. With no existing occupant (splitting an unoccupied
// node), near is simply the incoming rectangle's resolved extent and far
// takes whatever remains — there's no occupant to contest space with.
// Splitting an *occupied* node applies the full pair-priority rule between
// the incoming rectangle and the evicted occupant on this axis:
//   - both flexible (prefSize[dim] == -1): the one with the larger minSize
//     wins and takes the rest, the other is pinned to its own minSize;
//     priority breaks ties.
//   - exactly one flexible: the finite one gets exactly its prefSize, the
//     flexible one takes the remainder (floored at its own minSize).
//   - both finite: the higher-priority rectangle gets its prefSize if the
//     other's minSize still fits in what's left; otherwise falls back to
//     the min-based rule above.
func pairPrioritySplit(dir SplitDir, extent float64, n *Node, dev *Device, rect *Rectangle, existing *EffectiveConstraint) (near, far float64) {
	total := n.W
	if dir == SplitVertical {
		total = n.H
	}

	if existing == nil {
		near = extent
		if near > total {
			near = total
		}
		far = total - near
		return near, far
	}

	incomingPref, incomingMin := axisExtent(rect.Constraint, n, dev, dir)
	existingPref, existingMin := axisExtent(existing, n, dev, dir)
	incomingWins := rect.Constraint.Priority >= existing.Priority

	minBased := func() float64 {
		if incomingMin > existingMin || (incomingMin == existingMin && incomingWins) {
			return total - existingMin
		}
		return incomingMin
	}

	switch {
	case incomingPref == -1 && existingPref == -1:
		near = minBased()
	case existingPref == -1:
		near = extent
		if total-near < existingMin {
			near = total - existingMin
		}
	case incomingPref == -1:
		near = total - existingPref
		if near < incomingMin {
			near = incomingMin
		}
	case incomingWins:
		if extent <= total-existingMin {
			near = extent
		} else {
			near = minBased()
		}
	default:
		if total-extent >= existingPref {
			near = extent
		} else if total-existingPref >= incomingMin {
			near = total - existingPref
		} else {
			near = minBased()
		}
	}

	if near < 0 {
		near = 0
	}
	if near > total {
		near = total
	}
	far = total - near
	return near, far
}

// axisExtent resolves a constraint's prefSize/minSize on dir's axis into
// pixels including that constraint's own margin, so occupants with
// different margins still compare on the same footing as the node extents
// they're being fit into. pref is left at -1 (don't-care) unresolved.
func axisExtent(ec *EffectiveConstraint, n *Node, dev *Device, dir SplitDir) (pref, min float64) {
	margin := ResolveMargin(ec.Margin, n.BoundW, n.BoundH, dev.DPI)
	prefW, prefH := ResolveSize(ec.PrefSize, n.BoundW, n.BoundH, dev.DPI)
	minW, minH := ResolveSize(ec.MinSize, n.BoundW, n.BoundH, dev.DPI)
	if dir == SplitHorizontal {
		pref, min = prefW, minW
	} else {
		pref, min = prefH, minH
	}
	if pref != -1 {
		pref += 2 * margin
	}
	min += 2 * margin
	return pref, min
}
