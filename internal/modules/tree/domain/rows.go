package domain

// Row is one rendered line of a tree: a visible node with the branch layout
// needed to draw it.
type Row struct {
	Node  *Node
	Depth int
	Last  bool
	// Rails[i] is true when the ancestor at depth i has visible siblings
	// below it, so a vertical guide is drawn in that column.
	Rails []bool
}

func (t *Tree) FindAll(match MatchFunc) []*Node {
	return t.NodesMatching(match)
}

// VisibleRows projects the tree onto its visible lines: non-hidden nodes
// whose ancestors are all non-hidden and open.
func (t *Tree) VisibleRows() []Row {
	rows := make([]Row, 0, t.size)
	seen := make(map[*Node]struct{}, t.size)
	stack := pushVisible(nil, visibleOnly(t.roots), 0, nil)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[f.node]; ok {
			continue
		}
		seen[f.node] = struct{}{}
		rows = append(rows, Row{Node: f.node, Depth: f.depth, Last: f.last, Rails: f.rails})
		if !f.node.IsParent || !f.node.open {
			continue
		}
		rails := make([]bool, len(f.rails)+1)
		copy(rails, f.rails)
		rails[len(f.rails)] = !f.last
		stack = pushVisible(stack, visibleOnly(f.node.children), f.depth+1, rails)
	}
	return rows
}

type rowFrame struct {
	node  *Node
	depth int
	last  bool
	rails []bool
}

func pushVisible(stack []rowFrame, nodes []*Node, depth int, rails []bool) []rowFrame {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, rowFrame{node: nodes[i], depth: depth, last: i == len(nodes)-1, rails: rails})
	}
	return stack
}

func visibleOnly(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.hidden {
			out = append(out, n)
		}
	}
	return out
}
