package domain

import (
	"fmt"
	"strings"
)

type MatchFunc func(*Node) bool

// MatchAsset matches host leaves whose hostname or IP contains keyword,
// ignoring case.
func MatchAsset(keyword string) MatchFunc {
	kw := strings.ToLower(keyword)
	return func(n *Node) bool {
		if n == nil || n.IsParent {
			return false
		}
		meta, ok := n.Asset()
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(meta.Hostname), kw) ||
			strings.Contains(strings.ToLower(meta.IP), kw)
	}
}

// MatchRemoteApp matches remote-app leaves by display name, ignoring case.
func MatchRemoteApp(keyword string) MatchFunc {
	kw := strings.ToLower(keyword)
	return func(n *Node) bool {
		if n == nil || n.IsParent {
			return false
		}
		return strings.Contains(strings.ToLower(n.Name), kw)
	}
}

// ApplyLocalFilter hides every node that is neither a match, an ancestor of a
// match nor a descendant of a match, and force-expands the visible parents.
// An empty keyword restores the tree as it was before the filter. Nothing is
// mutated when the closures fail.
func ApplyLocalFilter(t *Tree, s *FilterSession, keyword string, match MatchFunc) error {
	if t == nil || s == nil {
		return nil
	}
	if keyword == "" {
		clearFilter(t, s)
		return nil
	}
	if s.Active() {
		clearFilter(t, s)
	}

	all := t.AllNodes()
	matched := t.NodesMatching(func(n *Node) bool {
		return !n.IsParent && match != nil && match(n)
	})
	visible, err := visibleClosure(t, matched)
	if err != nil {
		return fmt.Errorf("filter tree: %w", err)
	}

	wasHidden := make(map[*Node]struct{})
	for _, n := range all {
		if n.hidden {
			wasHidden[n] = struct{}{}
		}
	}
	wasOpen := make(map[*Node]struct{})
	for _, n := range visible {
		if n.IsParent && n.open {
			wasOpen[n] = struct{}{}
		}
	}

	s.keyword = keyword
	s.hidden = all
	s.expanded = visible
	s.wasHidden = wasHidden
	s.wasOpen = wasOpen

	t.Hide(all...)
	t.Show(visible...)
	for _, n := range visible {
		if n.IsParent {
			t.Expand(n, true)
		}
	}
	return nil
}

// ClearLocalFilter is ApplyLocalFilter with an empty keyword.
func ClearLocalFilter(t *Tree, s *FilterSession) {
	if t == nil || s == nil {
		return
	}
	clearFilter(t, s)
}

func clearFilter(t *Tree, s *FilterSession) {
	if s.hidden != nil {
		for _, n := range s.hidden {
			if _, ok := s.wasHidden[n]; ok {
				t.Hide(n)
				continue
			}
			t.Show(n)
		}
	}
	if s.expanded != nil {
		first := t.FirstRoot()
		for _, n := range s.expanded {
			if first != nil && n.ID == first.ID {
				continue
			}
			if _, ok := s.wasOpen[n]; ok {
				continue
			}
			t.Expand(n, false)
		}
	}
	s.reset()
}

// Ancestors walks ParentOf from n up to its root, nearest first.
func Ancestors(t *Tree, n *Node) ([]*Node, error) {
	out := []*Node{}
	visited := map[*Node]struct{}{n: {}}
	cur := n
	for {
		p, err := t.ParentOf(cur)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return out, nil
		}
		if _, seen := visited[p]; seen || len(visited) > t.Len() {
			return nil, fmt.Errorf("%w: ancestors of %q", ErrCycle, n.ID)
		}
		visited[p] = struct{}{}
		out = append(out, p)
		cur = p
	}
}

// Descendants returns every node below n in pre-order. Leaves have none.
func Descendants(t *Tree, n *Node) ([]*Node, error) {
	if !t.Contains(n) {
		return nil, fmt.Errorf("%w: %s", ErrForeignNode, nodeID(n))
	}
	out := []*Node{}
	if !n.IsParent {
		return out, nil
	}
	visited := map[*Node]struct{}{n: {}}
	stack := reversed(n.children)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[cur]; seen {
			return nil, fmt.Errorf("%w: descendants of %q", ErrCycle, n.ID)
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
		stack = append(stack, reversed(cur.children)...)
	}
	return out, nil
}

func visibleClosure(t *Tree, matched []*Node) ([]*Node, error) {
	seen := make(map[*Node]struct{})
	out := make([]*Node, 0, len(matched))
	add := func(nodes ...*Node) {
		for _, n := range nodes {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for _, m := range matched {
		ancestors, err := Ancestors(t, m)
		if err != nil {
			return nil, err
		}
		descendants, err := Descendants(t, m)
		if err != nil {
			return nil, err
		}
		add(m)
		add(ancestors...)
		add(descendants...)
	}
	return out, nil
}

func reversed(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}
