package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	treeoutadapter "hostnav/internal/modules/tree/adapter/out"
	"hostnav/internal/modules/tree/domain"
)

const fixtureYAML = `
hosts:
  - id: "1"
    name: Default
    isParent: true
    open: true
  - id: "1:1"
    pId: "1"
    name: prod
    isParent: true
  - id: a1
    pId: "1:1"
    name: web-01
    meta:
      type: asset
      asset:
        hostname: web-01
        ip: 10.0.0.1
        platform: Linux
        protocols: [ssh/22]
  - id: a2
    pId: "1"
    name: DB-01
    meta:
      type: asset
      asset:
        hostname: DB-01
        ip: 10.0.0.2
remote_apps:
  - id: r
    name: Remote apps
    isParent: true
    open: true
  - id: app1
    pId: r
    name: chrome
    meta:
      type: remote_app
      remote_app:
        type: chrome
        asset_ip: 10.0.0.9
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFileSourceLoadsTrees(t *testing.T) {
	t.Parallel()
	source := treeoutadapter.NewFileNodeSource(writeFixture(t, fixtureYAML))
	ctx := context.Background()

	hosts, err := source.FetchGrantedNodes(ctx, false, false)
	if err != nil {
		t.Fatalf("hosts: %v", err)
	}
	tree, err := domain.Build(hosts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Len() != 4 {
		t.Fatalf("expected 4 nodes, got %d", tree.Len())
	}
	apps, err := source.FetchGrantedRemoteApps(ctx, false)
	if err != nil {
		t.Fatalf("apps: %v", err)
	}
	if _, ok := apps[1].Meta.(domain.RemoteAppMeta); !ok {
		t.Fatalf("expected remote app meta, got %#v", apps[1].Meta)
	}
}

func TestFileSourceAsyncLevels(t *testing.T) {
	t.Parallel()
	source := treeoutadapter.NewFileNodeSource(writeFixture(t, fixtureYAML))
	ctx := context.Background()

	first, err := source.FetchGrantedNodes(ctx, true, false)
	if err != nil {
		t.Fatalf("hosts: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected root plus two children, got %d", len(first))
	}
	children, err := source.FetchNodeChildren(ctx, "1:1")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(children) != 1 || children[0].ID != "a1" {
		t.Fatalf("unexpected children: %+v", children)
	}
}

func TestFileSourceSearchMatchesHostnameAndIP(t *testing.T) {
	t.Parallel()
	source := treeoutadapter.NewFileNodeSource(writeFixture(t, fixtureYAML))
	found, err := source.FetchMatchingAssets(context.Background(), "db")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != "a2" {
		t.Fatalf("unexpected hostname matches: %+v", found)
	}
	found, err = source.FetchMatchingAssets(context.Background(), "10.0.0")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected two ip matches, got %d", len(found))
	}
}

func TestFileSourceRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	source := treeoutadapter.NewFileNodeSource(writeFixture(t, "hosts:\n  - id: x\n    colour: red\n"))
	if _, err := source.FetchGrantedNodes(context.Background(), false, false); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
