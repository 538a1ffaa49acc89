package domain_test

import (
	"errors"
	"strings"
	"testing"

	"hostnav/internal/modules/tree/domain"
)

// root(open) -> [A(leaf,"alpha"), B(parent) -> [C(leaf,"beta")]]
func scenarioTree(t *testing.T) *domain.Tree {
	t.Helper()
	tree, err := domain.Build([]domain.Descriptor{
		{ID: "root", Name: "root", IsParent: true, Open: true},
		{ID: "A", PID: "root", Name: "alpha"},
		{ID: "B", PID: "root", Name: "group", IsParent: true},
		{ID: "C", PID: "B", Name: "beta"},
	})
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func byName(keyword string) domain.MatchFunc {
	return func(n *domain.Node) bool {
		return strings.Contains(n.Name, keyword)
	}
}

func visibleIDs(tree *domain.Tree) []string {
	out := []string{}
	for _, n := range tree.AllNodes() {
		if !tree.Hidden(n) {
			out = append(out, n.ID)
		}
	}
	return out
}

func TestScenarioAMatchOneLeaf(t *testing.T) {
	t.Parallel()
	tree := scenarioTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "alpha", byName("alpha")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got := visibleIDs(tree); !equalIDs(got, []string{"root", "A"}) {
		t.Fatalf("unexpected visible set: %v", got)
	}
	if !session.Active() || session.Keyword() != "alpha" {
		t.Fatalf("expected active session")
	}
}

func TestScenarioBExpandsAncestors(t *testing.T) {
	t.Parallel()
	tree := scenarioTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "beta", byName("beta")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got := visibleIDs(tree); !equalIDs(got, []string{"root", "B", "C"}) {
		t.Fatalf("unexpected visible set: %v", got)
	}
	if !mustFind(t, tree, "B").IsOpen() {
		t.Fatalf("expected B force-expanded")
	}
}

func TestScenarioCClearRestores(t *testing.T) {
	t.Parallel()
	tree := scenarioTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "beta", byName("beta")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if err := domain.ApplyLocalFilter(tree, session, "", nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := visibleIDs(tree); !equalIDs(got, []string{"root", "A", "B", "C"}) {
		t.Fatalf("unexpected visible set: %v", got)
	}
	if mustFind(t, tree, "B").IsOpen() {
		t.Fatalf("expected B collapsed again")
	}
	if !mustFind(t, tree, "root").IsOpen() {
		t.Fatalf("first root must stay open")
	}
	if session.Active() {
		t.Fatalf("expected session reset")
	}
}

func TestClearKeepsParentsThatWereOpen(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "web-dev", domain.MatchAsset("web-dev")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !mustFind(t, tree, "1:2:1").IsOpen() {
		t.Fatalf("expected team expanded")
	}
	domain.ClearLocalFilter(tree, session)
	if !mustFind(t, tree, "1:2").IsOpen() {
		t.Fatalf("dev was open before the filter")
	}
	if mustFind(t, tree, "1:2:1").IsOpen() {
		t.Fatalf("team was closed before the filter")
	}
}

func TestClearKeepsPreviouslyHiddenNodes(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	prod := mustFind(t, tree, "1:1")
	tree.Hide(prod)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "cache", domain.MatchAsset("cache")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	domain.ClearLocalFilter(tree, session)
	if !tree.Hidden(prod) {
		t.Fatalf("prod was hidden before the filter")
	}
	if tree.Hidden(mustFind(t, tree, "a1")) {
		t.Fatalf("a1 was visible before the filter")
	}
}

func TestParentMatchesAreIgnored(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	session := domain.NewFilterSession()
	// The engine never treats parents as matches, so a predicate that only
	// accepts a parent hides everything.
	if err := domain.ApplyLocalFilter(tree, session, "prod", byName("prod")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got := visibleIDs(tree); len(got) != 0 {
		t.Fatalf("expected nothing visible, got %v", got)
	}
	domain.ClearLocalFilter(tree, session)
	if got := visibleIDs(tree); len(got) != tree.Len() {
		t.Fatalf("expected full restore, got %v", got)
	}
}

func TestSiblingsOfMatchStayHidden(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "10.0.0.1", domain.MatchAsset("10.0.0.1")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got := visibleIDs(tree); !equalIDs(got, []string{"1", "1:1", "a1"}) {
		t.Fatalf("siblings must stay hidden, got %v", got)
	}
}

func TestMatchAssetIgnoresCase(t *testing.T) {
	t.Parallel()
	tree := hostsTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "WEB", domain.MatchAsset("WEB")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	got := visibleIDs(tree)
	want := []string{"1", "1:1", "a1", "1:2", "1:2:1", "a3"}
	if !equalIDs(got, want) {
		t.Fatalf("unexpected visible set: %v", got)
	}
}

func TestMatchRemoteAppByName(t *testing.T) {
	t.Parallel()
	match := domain.MatchRemoteApp("chrome")
	leaf := &domain.Node{Name: "Chrome-Admin", Meta: domain.RemoteAppMeta{AppType: "chrome"}}
	group := &domain.Node{Name: "chrome apps", IsParent: true}
	if !match(leaf) {
		t.Fatalf("expected leaf match")
	}
	if match(group) {
		t.Fatalf("parents never match")
	}
}

func TestReapplySwitchesKeyword(t *testing.T) {
	t.Parallel()
	tree := scenarioTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "alpha", byName("alpha")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if err := domain.ApplyLocalFilter(tree, session, "beta", byName("beta")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got := visibleIDs(tree); !equalIDs(got, []string{"root", "B", "C"}) {
		t.Fatalf("unexpected visible set: %v", got)
	}
	domain.ClearLocalFilter(tree, session)
	if got := visibleIDs(tree); !equalIDs(got, []string{"root", "A", "B", "C"}) {
		t.Fatalf("expected full restore, got %v", got)
	}
	if mustFind(t, tree, "B").IsOpen() {
		t.Fatalf("expected B collapsed")
	}
}

func TestClearOnInactiveSessionIsNoop(t *testing.T) {
	t.Parallel()
	tree := scenarioTree(t)
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "", nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := visibleIDs(tree); len(got) != 4 {
		t.Fatalf("expected untouched tree, got %v", got)
	}
	if err := domain.ApplyLocalFilter(nil, session, "alpha", byName("alpha")); err != nil {
		t.Fatalf("nil tree must be a no-op, got %v", err)
	}
}

func TestDanglingParentLeavesTreeUntouched(t *testing.T) {
	t.Parallel()
	tree := scenarioTree(t)
	mustFind(t, tree, "C").ParentID = "ghost"
	session := domain.NewFilterSession()
	err := domain.ApplyLocalFilter(tree, session, "beta", byName("beta"))
	if !errors.Is(err, domain.ErrDanglingParent) {
		t.Fatalf("expected ErrDanglingParent, got %v", err)
	}
	if session.Active() {
		t.Fatalf("session must stay inactive on error")
	}
	if got := visibleIDs(tree); len(got) != 4 {
		t.Fatalf("expected no visibility change, got %v", got)
	}
}

func TestEmptyTreeFilter(t *testing.T) {
	t.Parallel()
	tree := domain.NewTree()
	session := domain.NewFilterSession()
	if err := domain.ApplyLocalFilter(tree, session, "x", byName("x")); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !session.Active() {
		t.Fatalf("expected active session on empty tree")
	}
	domain.ClearLocalFilter(tree, session)
	if session.Active() {
		t.Fatalf("expected reset")
	}
}
