package filesvc

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unkn0wn-root/reqtree/internal/vars"
)

const (
	extCurl = ".curl"
	extSh   = ".sh"
)

type Kind int

const (
	KindCurl Kind = iota + 1
	KindEnvironment
)

type FileEntry struct {
	Name string
	Path string
	Kind Kind
}

func IsCurlFile(path string) bool {
	switch fileExt(path) {
	case extCurl, extSh:
		return true
	default:
		return false
	}
}

// KindOf classifies path by name alone. Environment names win over
// extensions, so "api.env.sh" is an environment.
func KindOf(path string) (Kind, bool) {
	switch {
	case vars.IsEnvironmentFile(path):
		return KindEnvironment, true
	case IsCurlFile(path):
		return KindCurl, true
	default:
		return 0, false
	}
}

// ListImportFiles lists importable files under root sorted by relative name.
// A zero kinds filter accepts every kind. Hidden directories below root are
// skipped when walking recursively.
func ListImportFiles(root string, recursive bool, kinds ...Kind) ([]FileEntry, error) {
	var entries []FileEntry
	include := func(name string) (Kind, bool) {
		k, ok := KindOf(name)
		if !ok {
			return 0, false
		}
		if len(kinds) == 0 {
			return k, true
		}
		for _, want := range kinds {
			if want == k {
				return k, true
			}
		}
		return 0, false
	}

	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			k, ok := include(d.Name())
			if !ok {
				return nil
			}
			rel := d.Name()
			if r, relErr := filepath.Rel(root, path); relErr == nil {
				rel = r
			}
			entries = append(entries, FileEntry{Name: rel, Path: path, Kind: k})
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		dirEntries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range dirEntries {
			if entry.IsDir() {
				continue
			}
			k, ok := include(entry.Name())
			if !ok {
				continue
			}
			entries = append(entries, FileEntry{
				Name: entry.Name(),
				Path: filepath.Join(root, entry.Name()),
				Kind: k,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func fileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
