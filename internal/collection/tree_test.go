package collection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

func newNamed(name string) request.Request {
	req := request.NewRequest(name)
	req.URL = "https://api.test/" + name
	return req
}

func TestTreeAppendOrCreate(t *testing.T) {
	tree := NewTree()

	idx, created, err := tree.AppendOrCreate("", newNamed("users"))
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, Index{Collection: 0, Path: []int{0}}, idx)

	idx, created, err = tree.AppendOrCreate("USERS", newNamed("orders"))
	require.NoError(t, err)
	require.False(t, created, "lookup by name is case-insensitive")
	require.Equal(t, []int{1}, idx.Path)

	_, created, err = tree.AppendOrCreate("billing", newNamed("invoices"))
	require.NoError(t, err)
	require.True(t, created)

	infos := tree.Collections()
	require.Len(t, infos, 2)
	require.Equal(t, "users", infos[0].Name)
	require.Equal(t, 2, infos[0].Requests)
	require.NotEmpty(t, infos[0].ID)
}

func TestTreeResolveErrors(t *testing.T) {
	tree := NewTree()
	ci := tree.CreateCollection("api")
	_, err := tree.AppendRequest(ci, newNamed("a"))
	require.NoError(t, err)

	tree.mu.Lock()
	tree.collections[ci].Items = append(tree.collections[ci].Items, &Item{Name: "folder"})
	tree.mu.Unlock()

	cases := []struct {
		idx  Index
		want error
	}{
		{Index{Collection: 1, Path: []int{0}}, ErrIndexOutOfRange},
		{Index{Collection: 0}, ErrNoSelection},
		{Index{Collection: 9}, ErrNoSelection},
		{Index{Collection: 0, Path: []int{5}}, ErrIndexOutOfRange},
		{Index{Collection: 0, Path: []int{1}}, ErrNotRequest},
	}
	for _, tc := range cases {
		_, err := tree.Resolve(tc.idx)
		require.ErrorIs(t, err, tc.want, "index %s", tc.idx)
	}

	require.Panics(t, func() {
		tree.MustResolve(Index{Collection: 3, Path: []int{0}})
	})
	_, err = tree.AppendRequest(7, newNamed("x"))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestTreeNestedFoldersAndWrite(t *testing.T) {
	tree := NewTree()
	ci := tree.CreateCollection("api")
	leaf := tree.Records().Insert(newNamed("deep"))

	tree.mu.Lock()
	tree.collections[ci].Items = []*Item{
		{Name: "v1", Children: []*Item{
			{Name: "users", Children: []*Item{{Name: "deep", Record: leaf}}},
		}},
	}
	tree.mu.Unlock()

	idx := Index{Collection: ci, Path: []int{0, 0, 0}}
	require.Equal(t, []Index{idx}, tree.Requests(ci))

	require.NoError(t, tree.Write(idx, func(r *request.Request) {
		r.Name = "renamed"
		r.Auth = request.Bearer("tok")
	}))

	var got request.Request
	require.NoError(t, tree.Read(idx, func(r request.Request) { got = r }))
	require.Equal(t, request.Bearer("tok"), got.Auth)

	var names []string
	tree.Walk(ci, func(depth int, _ Index, item *Item) {
		names = append(names, strings.Repeat(" ", depth)+item.Name)
	})
	require.Equal(t, []string{"v1", " users", "  renamed"}, names)
}

func TestTreeRemoveRequestInvalidatesHandle(t *testing.T) {
	tree := NewTree()
	ci := tree.CreateCollection("api")
	first, err := tree.AppendRequest(ci, newNamed("a"))
	require.NoError(t, err)
	_, err = tree.AppendRequest(ci, newNamed("b"))
	require.NoError(t, err)

	id := tree.MustResolve(first)
	require.NoError(t, tree.RemoveRequest(first))
	require.ErrorIs(t, tree.Records().Read(id, func(request.Request) {}), ErrStaleRecord)

	var name string
	require.NoError(t, tree.Read(first, func(r request.Request) { name = r.Name }))
	require.Equal(t, "b", name)
}

func TestFileStoreRoundTripYAML(t *testing.T) {
	dir := t.TempDir()
	tree := NewTree()
	store := NewFileStore(tree, dir, FormatYAML, nil)

	req := newNamed("login")
	req.Method = request.MethodPost
	req.Params = []request.KeyValue{request.Pair("x", "1")}
	req.Headers = []request.KeyValue{request.Pair("X-Foo", "bar")}
	req.Auth = request.Basic("alice", "secret")
	req.Body = request.RawBody(`{"a":1}`)
	idx, _, err := tree.AppendOrCreate("My API", req)
	require.NoError(t, err)

	require.NoError(t, store.Write(idx.Collection))
	path := filepath.Join(dir, "My_API.yaml")
	require.FileExists(t, path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "kind: basic")

	loaded := NewTree()
	require.NoError(t, NewFileStore(loaded, dir, FormatYAML, nil).LoadDir())
	require.Equal(t, 1, loaded.Len())
	info := loaded.Collections()[0]
	require.Equal(t, "My API", info.Name)
	require.Equal(t, path, info.Path)

	var got request.Request
	require.NoError(t, loaded.Read(Index{Collection: 0, Path: []int{0}}, func(r request.Request) {
		got = r.Clone()
	}))
	require.Equal(t, req, got)
}

func TestFileStoreLoadNormalizesHandEditedJSON(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "name": "legacy",
  "items": [
    {"name": "group", "items": [
      {"name": "get", "request": {
        "name": "get",
        "method": "GET",
        "url": "https://h/p?q=1",
        "headers": [{"enabled": true, "key": "Authorization", "value": "Bearer abc"}]
      }}
    ]}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	tree := NewTree()
	require.NoError(t, NewFileStore(tree, dir, FormatJSON, nil).LoadDir())

	var got request.Request
	require.NoError(t, tree.Read(Index{Collection: 0, Path: []int{0, 0}}, func(r request.Request) { got = r }))
	require.Equal(t, "https://h/p", got.URL)
	require.Equal(t, []request.KeyValue{request.Pair("q", "1")}, got.Params)
	require.Empty(t, got.Headers)
	require.Equal(t, request.Bearer("abc"), got.Auth)
}

func TestFileStoreMissingDirAndBadFile(t *testing.T) {
	tree := NewTree()
	require.NoError(t, NewFileStore(tree, filepath.Join(t.TempDir(), "absent"), "", nil).LoadDir())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("items: [\n"), 0o644))
	require.Error(t, NewFileStore(tree, dir, "", nil).LoadDir())

	require.Error(t, NewFileStore(tree, dir, "", nil).Write(4))
}

func TestFileStoreSameNameCollectionsKeepSeparateFiles(t *testing.T) {
	dir := t.TempDir()
	tree := NewTree()
	store := NewFileStore(tree, dir, FormatYAML, nil)

	for i := 0; i < 2; i++ {
		idx, created, err := tree.AppendOrCreate("", newNamed("login"))
		require.NoError(t, err)
		require.True(t, created)
		store.Save(idx.Collection)
	}
	infos := tree.Collections()
	require.Equal(t, filepath.Join(dir, "login.yaml"), infos[0].Path)
	require.NotEqual(t, infos[0].Path, infos[1].Path)
	require.True(t, strings.HasPrefix(filepath.Base(infos[1].Path), "login-"))

	reloaded := NewTree()
	reStore := NewFileStore(reloaded, dir, FormatYAML, nil)
	require.NoError(t, reStore.LoadDir())
	require.Equal(t, 2, reloaded.Len())

	// a later run must not reuse a file another collection was loaded from
	idx, created, err := reloaded.AppendOrCreate("", newNamed("login"))
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, reStore.Write(idx.Collection))

	final := NewTree()
	require.NoError(t, NewFileStore(final, dir, FormatYAML, nil).LoadDir())
	require.Equal(t, 3, final.Len())
	total := 0
	for _, info := range final.Collections() {
		require.Equal(t, "login", info.Name)
		total += info.Requests
	}
	require.Equal(t, 3, total)
}

func TestFileStoreSkipsPathsPresentOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.yaml"), []byte("name: other\n"), 0o644))

	tree := NewTree()
	idx, _, err := tree.AppendOrCreate("api", newNamed("a"))
	require.NoError(t, err)
	require.NoError(t, NewFileStore(tree, dir, FormatYAML, nil).Write(idx.Collection))

	raw, err := os.ReadFile(filepath.Join(dir, "api.yaml"))
	require.NoError(t, err)
	require.Equal(t, "name: other\n", string(raw))
	require.NotEqual(t, filepath.Join(dir, "api.yaml"), tree.Collections()[0].Path)
}
