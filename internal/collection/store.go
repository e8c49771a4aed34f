package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
	"github.com/unkn0wn-root/reqtree/internal/fsutil"
	"github.com/unkn0wn-root/reqtree/internal/logging"
	"github.com/unkn0wn-root/reqtree/internal/request"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Saver persists one collection. It is a fire-and-forget signal: failures are
// the saver's to report.
type Saver interface {
	Save(collection int)
}

type collectionFile struct {
	ID    string     `json:"id"    yaml:"id"`
	Name  string     `json:"name"  yaml:"name"`
	Items []itemFile `json:"items" yaml:"items"`
}

type itemFile struct {
	Name    string           `json:"name"              yaml:"name"`
	Request *request.Request `json:"request,omitempty" yaml:"request,omitempty"`
	Items   []itemFile       `json:"items,omitempty"   yaml:"items,omitempty"`
}

type FileStore struct {
	tree   *Tree
	dir    string
	format string
	log    *zap.Logger
}

func NewFileStore(tree *Tree, dir, format string, log *zap.Logger) *FileStore {
	if !strings.EqualFold(format, FormatJSON) {
		format = FormatYAML
	}
	return &FileStore{tree: tree, dir: dir, format: strings.ToLower(format), log: logging.OrNop(log)}
}

func (s *FileStore) Save(ci int) {
	if err := s.Write(ci); err != nil {
		s.log.Error("save collection failed", zap.Int("collection", ci), zap.Error(err))
	}
}

// Write snapshots the collection under shared record access, then encodes and
// writes it with every lock released.
func (s *FileStore) Write(ci int) error {
	snap, path, err := s.snapshot(ci)
	if err != nil {
		return err
	}
	if path == "" {
		path = s.claimPath(ci, snap)
	}

	var data []byte
	if isJSONPath(path) {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		data, err = yaml.Marshal(snap)
	}
	if err != nil {
		return errdef.Wrap(errdef.CodeCollection, err, "encode collection %q", snap.Name)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write collection %s", path)
	}
	s.log.Debug("collection saved", zap.String("name", snap.Name), zap.String("path", path))
	return nil
}

func (s *FileStore) snapshot(ci int) (collectionFile, string, error) {
	t := s.tree
	t.mu.RLock()
	defer t.mu.RUnlock()
	if ci < 0 || ci >= len(t.collections) {
		return collectionFile{}, "", errdef.Wrap(
			errdef.CodeCollection,
			ErrIndexOutOfRange,
			"save collection %d",
			ci,
		)
	}
	c := t.collections[ci]
	items, err := s.snapshotItems(c.Items)
	if err != nil {
		return collectionFile{}, "", errdef.Wrap(errdef.CodeCollection, err, "snapshot %q", c.Name)
	}
	return collectionFile{ID: c.ID, Name: c.Name, Items: items}, c.Path, nil
}

func (s *FileStore) snapshotItems(items []*Item) ([]itemFile, error) {
	out := make([]itemFile, 0, len(items))
	for _, item := range items {
		if item.IsFolder() {
			children, err := s.snapshotItems(item.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, itemFile{Name: item.Name, Items: children})
			continue
		}
		req, err := s.tree.records.Snapshot(item.Record)
		if err != nil {
			return nil, err
		}
		out = append(out, itemFile{Name: item.Name, Request: &req})
	}
	return out, nil
}

// LoadDir reads every collection file in the store directory into the tree.
// A missing directory is not an error.
func (s *FileStore) LoadDir() error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "read collections dir %s", s.dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isCollectionFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := s.Load(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errdef.Wrap(errdef.CodeFilesystem, err, "read collection %s", path)
	}
	var file collectionFile
	if isJSONPath(path) {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return 0, errdef.Wrap(errdef.CodeParse, err, "parse collection %s", path)
	}
	if strings.TrimSpace(file.Name) == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	c := &Collection{ID: file.ID, Name: file.Name, Path: path}
	c.Items = s.buildItems(file.Items)
	ci := s.tree.addCollection(c)
	s.log.Debug("collection loaded", zap.String("name", c.Name), zap.Int("requests", countLeaves(c.Items)))
	return ci, nil
}

func (s *FileStore) buildItems(files []itemFile) []*Item {
	out := make([]*Item, 0, len(files))
	for _, f := range files {
		if f.Request == nil {
			out = append(out, &Item{Name: f.Name, Children: s.buildItems(f.Items)})
			continue
		}
		req := *f.Request
		req.Normalize()
		if req.Name == "" {
			req.Name = f.Name
		}
		out = append(out, &Item{Name: req.Name, Record: s.tree.records.Insert(req)})
	}
	return out
}

// claimPath picks a file for a collection that has none yet. A path already
// owned by another collection, or present on disk, gets the short ID and then
// a counter appended.
func (s *FileStore) claimPath(ci int, snap collectionFile) string {
	t := s.tree
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.collections[ci]
	if c.Path != "" {
		return c.Path
	}

	base := fileName(snap.Name, snap.ID)
	short := shortID(snap.ID)
	for n := 0; ; n++ {
		name := base
		switch {
		case n == 1 && short != "":
			name = base + "-" + short
		case n > 0:
			name = fmt.Sprintf("%s-%s-%d", base, short, n)
		}
		path := filepath.Join(s.dir, name+"."+s.format)
		if t.pathTakenLocked(path) || fileExists(path) {
			continue
		}
		c.Path = path
		return path
	}
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileName(name, id string) string {
	clean := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_"), "._")
	if clean == "" {
		clean = id
	}
	return clean
}

func isCollectionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
