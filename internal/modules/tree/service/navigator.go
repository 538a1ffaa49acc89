package service

import (
	"fmt"

	"hostnav/internal/modules/tree/domain"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type SearchRequest struct {
	Kind       domain.Kind
	Keyword    string
	Generation uint64
}

type ExpandRequest struct {
	Kind  domain.Kind
	Token uint64
	Key   string
}

// Navigator owns one tree and its filter state. The mode is fixed for its
// lifetime. It is driven from a single event loop.
type Navigator struct {
	kind       domain.Kind
	mode       Mode
	match      func(keyword string) domain.MatchFunc
	tree       *domain.Tree
	session    *domain.FilterSession
	keyword    string
	generation uint64
	nextToken  uint64
	pending    map[uint64]*domain.Node
}

func NewNavigator(kind domain.Kind, mode Mode) *Navigator {
	match := domain.MatchAsset
	if kind == domain.KindRemoteApps {
		match = domain.MatchRemoteApp
	}
	return &Navigator{
		kind:    kind,
		mode:    mode,
		match:   match,
		session: domain.NewFilterSession(),
		pending: map[uint64]*domain.Node{},
	}
}

func (n *Navigator) Kind() domain.Kind { return n.kind }

func (n *Navigator) Mode() Mode { return n.mode }

func (n *Navigator) Tree() *domain.Tree { return n.tree }

func (n *Navigator) Keyword() string { return n.keyword }

func (n *Navigator) Loaded() bool { return n.tree != nil }

// Load replaces the tree with a freshly built one. In-flight searches and
// expansions become stale and the current keyword is applied again.
func (n *Navigator) Load(descriptors []domain.Descriptor) (*SearchRequest, error) {
	tree, err := domain.Build(descriptors)
	if err != nil {
		return nil, fmt.Errorf("build %s tree: %w", n.kind, err)
	}
	n.tree = tree
	n.session = domain.NewFilterSession()
	n.pending = map[uint64]*domain.Node{}
	n.generation++
	if n.keyword == "" {
		return nil, nil
	}
	return n.Filter(n.keyword)
}

// Filter applies keyword in the navigator's mode. In remote mode a non-nil
// request means results must be fetched and handed to Graft.
func (n *Navigator) Filter(keyword string) (*SearchRequest, error) {
	n.keyword = keyword
	if n.tree == nil {
		return nil, nil
	}
	if n.mode == ModeRemote {
		n.generation++
		if !domain.BeginRemoteFilter(n.tree, keyword) {
			return nil, nil
		}
		return &SearchRequest{Kind: n.kind, Keyword: keyword, Generation: n.generation}, nil
	}
	if err := domain.ApplyLocalFilter(n.tree, n.session, keyword, n.match(keyword)); err != nil {
		return nil, fmt.Errorf("filter %s tree: %w", n.kind, err)
	}
	return nil, nil
}

// Graft attaches search results unless a later Filter or Load superseded req.
func (n *Navigator) Graft(req SearchRequest, descriptors []domain.Descriptor) (*domain.Node, bool, error) {
	if n.tree == nil || req.Generation != n.generation {
		return nil, false, nil
	}
	root, err := domain.GraftSearchResults(n.tree, descriptors)
	if err != nil {
		return nil, false, fmt.Errorf("graft %s search: %w", n.kind, err)
	}
	return root, true, nil
}

// Toggle flips a parent's expansion. A parent whose children were never
// loaded yields an ExpandRequest instead.
func (n *Navigator) Toggle(node *domain.Node) *ExpandRequest {
	if n.tree == nil || node == nil || !node.IsParent || !n.tree.Contains(node) {
		return nil
	}
	if n.mode == ModeRemote && !node.IsPopulated() {
		n.nextToken++
		n.pending[n.nextToken] = node
		return &ExpandRequest{Kind: n.kind, Token: n.nextToken, Key: node.ID}
	}
	n.tree.Expand(node, !node.IsOpen())
	return nil
}

func (n *Navigator) AttachChildren(req ExpandRequest, descriptors []domain.Descriptor) error {
	node, ok := n.pending[req.Token]
	delete(n.pending, req.Token)
	if !ok || n.tree == nil || !n.tree.Contains(node) {
		return nil
	}
	if !node.IsPopulated() {
		if _, err := n.tree.AddNodes(node, descriptors); err != nil {
			return fmt.Errorf("attach children of %q: %w", node.ID, err)
		}
	}
	n.tree.Expand(node, true)
	return nil
}

func (n *Navigator) Rows() []domain.Row {
	if n.tree == nil {
		return nil
	}
	return n.tree.VisibleRows()
}

func (n *Navigator) NodeAt(row int) *domain.Node {
	rows := n.Rows()
	if row < 0 || row >= len(rows) {
		return nil
	}
	return rows[row].Node
}
