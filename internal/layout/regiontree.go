package layout

// NodeID identifies a BSP node within one evaluation's arena. Nodes never
// own pointers to other nodes or to their host region — everything is an
// index into Tree.nodes, per the arena-plus-index design note.
type NodeID uint32

// SplitDir is the axis a node was divided along.
type SplitDir int

const (
	SplitNone SplitDir = iota
	SplitHorizontal
	SplitVertical
)

// Node is one rectangle in the BSP tree (§3, §4.4). X/Y/W/H is the node's
// current rectangle; BoundW/BoundH is the host region's bounding box, which
// never changes across splits of descendants of that region's root.
type Node struct {
	ID         NodeID
	DeviceID   string
	RegionID   string
	X, Y       float64
	W, H       float64
	BoundW     float64
	BoundH     float64
	Occupant   string // componentId, or "" if unoccupied
	Children   []NodeID // 2 for ordinary splits, up to 4 for a vcenter split
	HasChild   bool
	Parent     NodeID
	HasParent  bool
	SplitDir   SplitDir
}

// DeviceCounters tracks a host device's remaining concurrent-audio/video
// capacity for the duration of one evaluation (§3, §5 — fresh per call).
type DeviceCounters struct {
	DeviceID        string
	Communal        bool
	AudioRemaining  int
	VideoRemaining  int
}

// Tree is the BSP node arena for one group's packing pass.
type Tree struct {
	nodes   map[NodeID]*Node
	nextID  NodeID
	Roots   []NodeID // one per region (or whole-device node)
	Devices map[string]*DeviceCounters
}

// NewTree creates an empty arena.
func NewTree() *Tree {
	return &Tree{
		nodes:   make(map[NodeID]*Node),
		Devices: make(map[string]*DeviceCounters),
	}
}

// Node returns a node by id.
func (t *Tree) Node(id NodeID) *Node { return t.nodes[id] }

// newNode allocates and stores a node, returning its id.
func (t *Tree) newNode(n Node) NodeID {
	t.nextID++
	n.ID = t.nextID
	t.nodes[n.ID] = &n
	return n.ID
}

// Clone deep-copies the tree. The packer's retry passes do not use it: they
// rebuild a fresh tree with RegionTreeBuilder, and per-placement rollback
// within a pass uses the undo log in packer.go.
func (t *Tree) Clone() *Tree {
	out := NewTree()
	out.nextID = t.nextID
	for id, n := range t.nodes {
		cp := *n
		out.nodes[id] = &cp
	}
	out.Roots = append([]NodeID(nil), t.Roots...)
	for k, v := range t.Devices {
		cp := *v
		out.Devices[k] = &cp
	}
	return out
}

// RegionTreeBuilder builds the initial BSP root node list for a group (§4.2).
type RegionTreeBuilder struct{}

// Build creates one root node per device region (or one whole-device node
// for devices that declare no regions), plus the per-device audio/video
// counters, for every device in the given group.
func (RegionTreeBuilder) Build(group *Group, devices map[string]*Device) *Tree {
	t := NewTree()
	for _, devID := range group.DeviceIDs {
		d, ok := devices[devID]
		if !ok {
			continue
		}
		t.Devices[d.ID] = &DeviceCounters{
			DeviceID:       d.ID,
			Communal:       d.Communal,
			AudioRemaining: d.ConcurrentAudio,
			VideoRemaining: d.ConcurrentVideo,
		}

		regions := d.Regions
		if len(regions) == 0 {
			regions = []Region{{ID: d.ID, W: d.DisplayW, H: d.DisplayH, Resizable: false}}
		}
		for _, r := range regions {
			id := t.newNode(Node{
				DeviceID: d.ID,
				RegionID: r.ID,
				X:        0,
				Y:        0,
				W:        r.W,
				H:        r.H,
				BoundW:   r.W,
				BoundH:   r.H,
			})
			t.Roots = append(t.Roots, id)
		}
	}
	return t
}

// leaves returns every unsplit node id, occupied or not, across the tree's
// roots.
func (t *Tree) leaves() []NodeID {
	var out []NodeID
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := t.nodes[id]
		if n == nil {
			return
		}
		if n.HasChild {
			for _, c := range n.Children {
				if c != 0 {
					walk(c)
				}
			}
			return
		}
		out = append(out, id)
	}
	for _, r := range t.Roots {
		walk(r)
	}
	return out
}

// occupiedLeaves returns leaf nodes currently holding a component.
func (t *Tree) occupiedLeaves() []NodeID {
	var out []NodeID
	for _, id := range t.leaves() {
		if t.nodes[id].Occupant != "" {
			out = append(out, id)
		}
	}
	return out
}

// unoccupiedLeaves returns leaf nodes with no occupant.
func (t *Tree) unoccupiedLeaves() []NodeID {
	var out []NodeID
	for _, id := range t.leaves() {
		if t.nodes[id].Occupant == "" {
			out = append(out, id)
		}
	}
	return out
}

// adjacent reports whether b shares the full length of one edge with a and
// has an identical length on the orthogonal axis — the legality rule shared
// by split-neighbour consolidation.
func adjacent(a, b *Node) (shared bool, horiz bool) {
	const eps = 1e-6
	// a-left / b-right share a vertical edge
	sameVertSpan := absf(a.Y-b.Y) < eps && absf(a.H-b.H) < eps
	sameHorizSpan := absf(a.X-b.X) < eps && absf(a.W-b.W) < eps

	if sameVertSpan && (absf(a.X+a.W-b.X) < eps || absf(b.X+b.W-a.X) < eps) {
		return true, true // side-by-side, merge horizontally
	}
	if sameHorizSpan && (absf(a.Y+a.H-b.Y) < eps || absf(b.Y+b.H-a.Y) < eps) {
		return true, false // stacked, merge vertically
	}
	return false, false
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// consolidateAround reduces fragmentation after each placement (§4.4 pass-1
// step e) by merging pairs of unoccupied leaves in the same region that are
// legally adjacent (left/right/top/bottom), repeating until no pair is left.
// It considers every unoccupied leaf of the tree, not only the neighbours of
// placed, which is not consulted. Only ever merges two unoccupied leaves.
func (t *Tree) consolidateAround(placed NodeID) {
	changed := true
	for changed {
		changed = false
		unocc := t.unoccupiedLeaves()
		for i := 0; i < len(unocc); i++ {
			for j := i + 1; j < len(unocc); j++ {
				a, b := t.nodes[unocc[i]], t.nodes[unocc[j]]
				if a.DeviceID != b.DeviceID || a.RegionID != b.RegionID {
					continue
				}
				shared, horiz := adjacent(a, b)
				if !shared {
					continue
				}
				t.mergeInto(a, b, horiz)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}
}

// mergeInto collapses b into a, producing one unoccupied rectangle spanning
// both. Both a and b become leaves again in place of their (non-existent)
// parents — in this implementation unoccupied siblings are simply leaves at
// the same tree level, so merging replaces a's rectangle with the union and
// removes b from the leaf set by marking it occupied-by-nothing/pruned.
func (t *Tree) mergeInto(a, b *Node, horiz bool) {
	x0 := minf(a.X, b.X)
	y0 := minf(a.Y, b.Y)
	x1 := maxf(a.X+a.W, b.X+b.W)
	y1 := maxf(a.Y+a.H, b.Y+b.H)
	a.X, a.Y = x0, y0
	a.W, a.H = x1-x0, y1-y0
	t.prune(b.ID)
}

// prune removes a node from consideration by marking it as a child of
// nothing reachable from Roots; simplest correct approach is to replace the
// node's parent's child slot, but unoccupied siblings produced by splitNode
// share a synthetic parent we track implicitly via Roots replacement.
func (t *Tree) prune(id NodeID) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	if n.HasParent {
		p := t.nodes[n.Parent]
		if p != nil {
			for i, c := range p.Children {
				if c == id {
					p.Children[i] = 0
				}
			}
		}
	}
	for i, r := range t.Roots {
		if r == id {
			t.Roots = append(t.Roots[:i], t.Roots[i+1:]...)
			return
		}
	}
	delete(t.nodes, id)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
