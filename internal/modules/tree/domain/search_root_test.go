package domain_test

import (
	"testing"

	"hostnav/internal/modules/tree/domain"
)

func searchResults() []domain.Descriptor {
	return []domain.Descriptor{
		{ID: "X", PID: "1:1", Name: "web-01", Meta: domain.AssetMeta{Hostname: "web-01"}},
		{ID: "Y", PID: "1:2", Name: "web-02", Meta: domain.AssetMeta{Hostname: "web-02"}},
	}
}

func countSearchRoots(tree *domain.Tree) int {
	return len(tree.FindAll(func(n *domain.Node) bool { return n.ID == domain.SearchRootID }))
}

func TestScenarioDGraftsSearchRoot(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	r := tree.FirstRoot()
	if !domain.BeginRemoteFilter(tree, "web") {
		t.Fatalf("expected fetch for non-empty keyword")
	}
	root, err := domain.GraftSearchResults(tree, searchResults())
	if err != nil {
		t.Fatalf("graft: %v", err)
	}
	if !tree.Hidden(r) || !tree.Contains(r) {
		t.Fatalf("original root must be hidden, not removed")
	}
	if tree.Hidden(root) || !root.IsOpen() || !root.IsPopulated() {
		t.Fatalf("search root must be visible, open and populated")
	}
	if got := ids(tree.ChildrenOf(root)); !equalIDs(got, []string{"X", "Y"}) {
		t.Fatalf("unexpected search children: %v", got)
	}
	rows := tree.VisibleRows()
	if len(rows) != 3 || rows[0].Node != root {
		t.Fatalf("expected search subtree only, got %d rows", len(rows))
	}
}

func TestScenarioEClearRemovesSearchRoot(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	r := tree.FirstRoot()
	domain.BeginRemoteFilter(tree, "web")
	if _, err := domain.GraftSearchResults(tree, searchResults()); err != nil {
		t.Fatalf("graft: %v", err)
	}
	if domain.BeginRemoteFilter(tree, "") {
		t.Fatalf("empty keyword must not fetch")
	}
	if countSearchRoots(tree) != 0 {
		t.Fatalf("expected search root removed")
	}
	if tree.Hidden(r) {
		t.Fatalf("expected original root re-shown")
	}
	if tree.Len() != 8 {
		t.Fatalf("expected original node count, got %d", tree.Len())
	}
}

func TestRepeatedGraftKeepsOneSearchRoot(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	for _, kw := range []string{"w", "we", "web"} {
		domain.BeginRemoteFilter(tree, kw)
		if _, err := domain.GraftSearchResults(tree, searchResults()); err != nil {
			t.Fatalf("graft: %v", err)
		}
	}
	if got := countSearchRoots(tree); got != 1 {
		t.Fatalf("expected one search root, got %d", got)
	}
	if tree.Len() != 11 {
		t.Fatalf("expected 8 original + 3 search nodes, got %d", tree.Len())
	}
}

func TestRemoteFilterOnEmptyTree(t *testing.T) {
	t.Parallel()
	tree := domain.NewTree()
	if !domain.BeginRemoteFilter(tree, "web") {
		t.Fatalf("expected fetch")
	}
	root, err := domain.GraftSearchResults(tree, nil)
	if err != nil {
		t.Fatalf("graft: %v", err)
	}
	if tree.FirstRoot() != root || len(tree.ChildrenOf(root)) != 0 {
		t.Fatalf("expected lone empty search root")
	}
	if domain.BeginRemoteFilter(nil, "web") {
		t.Fatalf("nil tree must not fetch")
	}
}
