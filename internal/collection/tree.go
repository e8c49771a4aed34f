package collection

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

var (
	ErrNoSelection     = errors.New("collection: no request selected")
	ErrIndexOutOfRange = errors.New("collection: index out of range")
	ErrNotRequest      = errors.New("collection: index points at a folder")
)

// Item is either a folder (Children) or a request leaf (Record).
type Item struct {
	Name     string
	Record   RecordID
	Children []*Item
}

func (i *Item) IsFolder() bool {
	return !i.Record.Valid()
}

type Collection struct {
	ID    string
	Name  string
	Path  string
	Items []*Item
}

// Index locates one request: a collection position and the item path inside it.
type Index struct {
	Collection int
	Path       []int
}

func (idx Index) String() string {
	parts := make([]string, 0, len(idx.Path))
	for _, p := range idx.Path {
		parts = append(parts, fmt.Sprint(p))
	}
	return fmt.Sprintf("%d:%s", idx.Collection, strings.Join(parts, "/"))
}

// Tree owns all collections. Request data lives in the Registry; the tree only
// stores handles, so structural locking and record locking never nest the
// other way round.
type Tree struct {
	mu          sync.RWMutex
	collections []*Collection
	records     *Registry
}

func NewTree() *Tree {
	return &Tree{records: NewRegistry()}
}

func (t *Tree) Records() *Registry {
	return t.records
}

func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.collections)
}

type Info struct {
	Index    int
	ID       string
	Name     string
	Path     string
	Requests int
}

func (t *Tree) Collections() []Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Info, 0, len(t.collections))
	for i, c := range t.collections {
		out = append(out, Info{
			Index:    i,
			ID:       c.ID,
			Name:     c.Name,
			Path:     c.Path,
			Requests: countLeaves(c.Items),
		})
	}
	return out
}

// Find returns the first collection with the given name (case-insensitive).
func (t *Tree) Find(name string) (int, bool) {
	name = strings.TrimSpace(name)
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, c := range t.collections {
		if strings.EqualFold(c.Name, name) {
			return i, true
		}
	}
	return 0, false
}

func (t *Tree) Resolve(idx Index) (RecordID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolveLocked(idx)
}

// MustResolve treats an invalid index as a programming error. UI handlers only
// run after a valid selection was made.
func (t *Tree) MustResolve(idx Index) RecordID {
	id, err := t.Resolve(idx)
	if err != nil {
		panic(fmt.Sprintf("resolve request %s: %v", idx, err))
	}
	return id
}

func (t *Tree) resolveLocked(idx Index) (RecordID, error) {
	if len(idx.Path) == 0 {
		return RecordID{}, ErrNoSelection
	}
	if idx.Collection < 0 || idx.Collection >= len(t.collections) {
		return RecordID{}, ErrIndexOutOfRange
	}
	items := t.collections[idx.Collection].Items
	var cur *Item
	for _, p := range idx.Path {
		if p < 0 || p >= len(items) {
			return RecordID{}, ErrIndexOutOfRange
		}
		cur = items[p]
		items = cur.Children
	}
	if cur.IsFolder() {
		return RecordID{}, ErrNotRequest
	}
	return cur.Record, nil
}

// Read resolves idx and grants shared access to the request for fn only.
func (t *Tree) Read(idx Index, fn func(request.Request)) error {
	id, err := t.Resolve(idx)
	if err != nil {
		return err
	}
	return t.records.Read(id, fn)
}

// Write resolves idx and grants exclusive access to the request for fn only.
// The lock is released before Write returns, so persisting afterwards never
// blocks readers.
func (t *Tree) Write(idx Index, fn func(*request.Request)) error {
	id, err := t.Resolve(idx)
	if err != nil {
		return err
	}
	err = t.records.Write(id, fn)
	if err == nil {
		t.syncName(idx, id)
	}
	return err
}

func (t *Tree) syncName(idx Index, id RecordID) {
	var name string
	if err := t.records.Read(id, func(r request.Request) { name = r.Name }); err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if item := t.itemLocked(idx); item != nil && item.Record == id {
		item.Name = name
	}
}

func (t *Tree) itemLocked(idx Index) *Item {
	if idx.Collection < 0 || idx.Collection >= len(t.collections) {
		return nil
	}
	items := t.collections[idx.Collection].Items
	var cur *Item
	for _, p := range idx.Path {
		if p < 0 || p >= len(items) {
			return nil
		}
		cur = items[p]
		items = cur.Children
	}
	return cur
}

func (t *Tree) CreateCollection(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.collections = append(t.collections, &Collection{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(name),
	})
	return len(t.collections) - 1
}

// AppendRequest inserts req as a top-level leaf of collection ci.
func (t *Tree) AppendRequest(ci int, req request.Request) (Index, error) {
	t.mu.RLock()
	ok := ci >= 0 && ci < len(t.collections)
	t.mu.RUnlock()
	if !ok {
		return Index{}, ErrIndexOutOfRange
	}

	id := t.records.Insert(req)

	// collections are never removed, so ci stays valid
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.collections[ci]
	c.Items = append(c.Items, &Item{Name: req.Name, Record: id})
	return Index{Collection: ci, Path: []int{len(c.Items) - 1}}, nil
}

// AppendOrCreate appends req to the collection named target, creating it when
// it does not exist yet. An empty target creates a collection named after req.
func (t *Tree) AppendOrCreate(target string, req request.Request) (Index, bool, error) {
	target = strings.TrimSpace(target)
	created := false
	ci, ok := 0, false
	if target != "" {
		ci, ok = t.Find(target)
	} else {
		target = req.Name
	}
	if !ok {
		ci = t.CreateCollection(target)
		created = true
	}
	idx, err := t.AppendRequest(ci, req)
	return idx, created, err
}

// RemoveRequest drops the leaf at idx and invalidates its handle.
func (t *Tree) RemoveRequest(idx Index) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, err := t.resolveLocked(idx)
	if err != nil {
		return err
	}
	items := &t.collections[idx.Collection].Items
	for _, p := range idx.Path[:len(idx.Path)-1] {
		items = &(*items)[p].Children
	}
	last := idx.Path[len(idx.Path)-1]
	*items = append((*items)[:last], (*items)[last+1:]...)
	return t.records.Remove(id)
}

// Requests lists every request leaf of collection ci in depth-first order.
func (t *Tree) Requests(ci int) []Index {
	var out []Index
	t.Walk(ci, func(_ int, idx Index, item *Item) {
		if !item.IsFolder() {
			out = append(out, idx)
		}
	})
	return out
}

// Walk visits items of collection ci depth-first. fn must not call back into
// the Tree; it may use Records() to read leaves.
func (t *Tree) Walk(ci int, fn func(depth int, idx Index, item *Item)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if ci < 0 || ci >= len(t.collections) {
		return
	}
	walkItems(t.collections[ci].Items, ci, nil, 0, fn)
}

func walkItems(items []*Item, ci int, prefix []int, depth int, fn func(int, Index, *Item)) {
	for i, item := range items {
		path := append(append([]int(nil), prefix...), i)
		fn(depth, Index{Collection: ci, Path: path}, item)
		if item.IsFolder() {
			walkItems(item.Children, ci, path, depth+1, fn)
		}
	}
}

func countLeaves(items []*Item) int {
	n := 0
	for _, item := range items {
		if item.IsFolder() {
			n += countLeaves(item.Children)
		} else {
			n++
		}
	}
	return n
}

func (t *Tree) pathTakenLocked(path string) bool {
	clean := filepath.Clean(path)
	for _, c := range t.collections {
		if c.Path != "" && strings.EqualFold(filepath.Clean(c.Path), clean) {
			return true
		}
	}
	return false
}

func (t *Tree) addCollection(c *Collection) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	t.collections = append(t.collections, c)
	return len(t.collections) - 1
}
