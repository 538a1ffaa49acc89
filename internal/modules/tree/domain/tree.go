package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDanglingParent = errors.New("dangling parent reference")
	ErrCycle          = errors.New("cycle in tree")
	ErrForeignNode    = errors.New("node does not belong to tree")
)

// Tree is a mutable rooted forest. All node state changes go through its
// methods; it is not safe for concurrent use and is owned by a single event
// loop.
type Tree struct {
	roots []*Node
	size  int
}

func NewTree() *Tree {
	return &Tree{}
}

// Build materialises a tree from a flat descriptor list.
func Build(descriptors []Descriptor) (*Tree, error) {
	t := NewTree()
	if _, err := t.AddNodes(nil, descriptors); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) Len() int { return t.size }

func (t *Tree) Roots() []*Node {
	out := make([]*Node, len(t.roots))
	copy(out, t.roots)
	return out
}

func (t *Tree) FirstRoot() *Node {
	if len(t.roots) == 0 {
		return nil
	}
	return t.roots[0]
}

// AllNodes returns every attached node in pre-order, hidden ones included.
func (t *Tree) AllNodes() []*Node {
	return t.NodesMatching(func(*Node) bool { return true })
}

func (t *Tree) NodesMatching(match MatchFunc) []*Node {
	out := make([]*Node, 0, t.size)
	seen := make(map[*Node]struct{}, t.size)
	stack := make([]*Node, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, t.roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		if match(n) {
			out = append(out, n)
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

func (t *Tree) FindByID(id string) *Node {
	found := t.NodesMatching(func(n *Node) bool { return n.ID == id })
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (t *Tree) Contains(n *Node) bool {
	return n != nil && n.tree == t
}

// ParentOf returns nil for a true root. A node whose parent reference does
// not resolve inside this tree is reported as ErrDanglingParent.
func (t *Tree) ParentOf(n *Node) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrForeignNode, nodeID(n))
	}
	if !t.Contains(n) {
		if n.ParentID != "" {
			return nil, fmt.Errorf("%w: detached node %q", ErrDanglingParent, n.ID)
		}
		return nil, fmt.Errorf("%w: %s", ErrForeignNode, n.ID)
	}
	if n.ParentID == "" {
		return nil, nil
	}
	p := n.parent
	if p == nil || p.tree != t || p.ID != n.ParentID {
		return nil, fmt.Errorf("%w: node %q parent %q", ErrDanglingParent, n.ID, n.ParentID)
	}
	return p, nil
}

func (t *Tree) ChildrenOf(n *Node) []*Node {
	if !t.Contains(n) {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (t *Tree) Hidden(n *Node) bool {
	return n != nil && n.hidden
}

func (t *Tree) Show(nodes ...*Node) {
	for _, n := range nodes {
		if n != nil {
			n.hidden = false
		}
	}
}

func (t *Tree) Hide(nodes ...*Node) {
	for _, n := range nodes {
		if n != nil {
			n.hidden = true
		}
	}
}

// Expand opens or collapses a parent node; leaves are left untouched.
func (t *Tree) Expand(n *Node, open bool) {
	if n == nil || !n.IsParent {
		return
	}
	n.open = open
}

// AddNodes attaches descriptors with simple-data semantics: a descriptor whose
// PID names another descriptor of the same batch goes under that node, every
// other descriptor goes under parent (or at top level when parent is nil).
// It returns the created nodes in descriptor order.
func (t *Tree) AddNodes(parent *Node, descriptors []Descriptor) ([]*Node, error) {
	if parent != nil && !t.Contains(parent) {
		return nil, fmt.Errorf("%w: %s", ErrForeignNode, parent.ID)
	}
	index := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		if _, ok := index[d.ID]; !ok {
			index[d.ID] = i
		}
	}
	if err := checkBatchCycles(descriptors, index); err != nil {
		return nil, err
	}

	created := make([]*Node, len(descriptors))
	for i, d := range descriptors {
		created[i] = &Node{
			ID:        d.ID,
			Name:      d.Name,
			Title:     d.Title,
			IsParent:  d.IsParent,
			Meta:      d.Meta,
			open:      d.IsParent && d.Open,
			populated: !d.IsParent,
			tree:      t,
		}
	}
	for i, d := range descriptors {
		n := created[i]
		if j, ok := index[d.PID]; ok && d.PID != "" && j != i {
			t.attach(created[j], n)
			created[j].populated = true
			continue
		}
		t.attach(parent, n)
	}
	if parent != nil {
		parent.populated = true
	}
	return created, nil
}

// RemoveNode detaches n and its whole subtree.
func (t *Tree) RemoveNode(n *Node) {
	if !t.Contains(n) {
		return
	}
	if n.parent != nil {
		n.parent.children = without(n.parent.children, n)
	} else {
		t.roots = without(t.roots, n)
	}
	t.detach(n)
}

func (t *Tree) RemoveChildrenOf(n *Node) {
	if !t.Contains(n) {
		return
	}
	children := n.children
	n.children = nil
	for _, c := range children {
		t.detach(c)
	}
}

func (t *Tree) attach(parent, n *Node) {
	if parent == nil {
		n.ParentID = ""
		n.parent = nil
		t.roots = append(t.roots, n)
	} else {
		n.ParentID = parent.ID
		n.parent = parent
		parent.children = append(parent.children, n)
	}
	t.size++
}

func (t *Tree) detach(root *Node) {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.tree != t {
			continue
		}
		n.tree = nil
		t.size--
		stack = append(stack, n.children...)
	}
	root.parent = nil
}

func checkBatchCycles(descriptors []Descriptor, index map[string]int) error {
	for i := range descriptors {
		visited := map[int]struct{}{i: {}}
		cur := i
		for {
			pid := descriptors[cur].PID
			j, ok := index[pid]
			if pid == "" || !ok || j == cur {
				break
			}
			if _, seen := visited[j]; seen {
				return fmt.Errorf("%w: descriptor %q", ErrCycle, descriptors[i].ID)
			}
			visited[j] = struct{}{}
			cur = j
		}
	}
	return nil
}

func without(nodes []*Node, n *Node) []*Node {
	out := nodes[:0]
	for _, item := range nodes {
		if item != n {
			out = append(out, item)
		}
	}
	return out
}

func nodeID(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.ID
}
