package domain

import "fmt"

const (
	SearchRootID   = "search"
	SearchRootName = "Search"
)

// RemoveSearchRoots drops every synthetic search root and its subtree.
func RemoveSearchRoots(t *Tree) int {
	if t == nil {
		return 0
	}
	roots := t.NodesMatching(func(n *Node) bool { return n.ID == SearchRootID })
	for _, n := range roots {
		t.RemoveChildrenOf(n)
		t.RemoveNode(n)
	}
	return len(roots)
}

// BeginRemoteFilter tears down any previous search subtree and reports
// whether a fetch is needed. An empty keyword re-shows the original top-level
// node; any other keyword hides it until results arrive.
func BeginRemoteFilter(t *Tree, keyword string) bool {
	if t == nil {
		return false
	}
	RemoveSearchRoots(t)
	first := t.FirstRoot()
	if keyword == "" {
		if first != nil {
			t.Show(first)
		}
		return false
	}
	if first != nil {
		t.Hide(first)
	}
	return true
}

// GraftSearchResults adds the synthetic search root at top level and attaches
// descriptors beneath it.
func GraftSearchResults(t *Tree, descriptors []Descriptor) (*Node, error) {
	if t == nil {
		return nil, nil
	}
	RemoveSearchRoots(t)
	if first := t.FirstRoot(); first != nil {
		t.Hide(first)
	}
	created, err := t.AddNodes(nil, []Descriptor{{
		ID:       SearchRootID,
		Name:     SearchRootName,
		IsParent: true,
		Open:     true,
	}})
	if err != nil {
		return nil, fmt.Errorf("create search root: %w", err)
	}
	root := created[0]
	if _, err := t.AddNodes(root, descriptors); err != nil {
		t.RemoveNode(root)
		return nil, fmt.Errorf("graft search results: %w", err)
	}
	t.Expand(root, true)
	return root, nil
}

func SearchRoot(t *Tree) *Node {
	if t == nil {
		return nil
	}
	return t.FindByID(SearchRootID)
}
