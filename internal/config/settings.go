package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/unkn0wn-root/reqtree/internal/fsutil"
	"github.com/unkn0wn-root/reqtree/internal/logging"
)

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatJSON SettingsFormat = "json"
)

const (
	CollectionFormatYAML = "yaml"
	CollectionFormatJSON = "json"
)

const envConfigDir = "REQTREE_CONFIG_DIR"

const defaultHistoryMax = 200

type Settings struct {
	CollectionsDir   string         `json:"collections_dir"   toml:"collections_dir"`
	CollectionFormat string         `json:"collection_format" toml:"collection_format"`
	HistoryDB        string         `json:"history_db"        toml:"history_db"`
	HistoryMax       int            `json:"history_max"       toml:"history_max"`
	Log              logging.Config `json:"log"               toml:"log"`
}

type SettingsFormat string
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

// Dir returns the configuration directory, honouring REQTREE_CONFIG_DIR.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(envConfigDir)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, "reqtree")
	}
	return filepath.Join(".", ".reqtree")
}

// DefaultSettingsIn returns defaults with every path rooted at dir.
func DefaultSettingsIn(dir string) Settings {
	return Settings{
		CollectionsDir:   filepath.Join(dir, "collections"),
		CollectionFormat: CollectionFormatYAML,
		HistoryDB:        filepath.Join(dir, "history.db"),
		HistoryMax:       defaultHistoryMax,
		Log:              logging.DefaultConfig(),
	}
}

// LoadSettings tries settings.toml, then settings.json, then falls back to defaults.
// Parse errors fail immediately but missing files just skip to the next format.
func LoadSettings() (Settings, SettingsHandle, error) {
	return LoadSettingsFrom(Dir())
}

func LoadSettingsFrom(dir string) (Settings, SettingsHandle, error) {
	candidates := []SettingsHandle{
		{Path: filepath.Join(dir, "settings.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(dir, "settings.json"), Format: SettingsFormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				fmt.Errorf("read settings %q: %w", candidate.Path, err),
			)
			continue
		}

		settings, err := decodeSettings(data, candidate.Format)
		if err != nil {
			return Settings{}, SettingsHandle{}, fmt.Errorf(
				"parse settings %q: %w",
				candidate.Path,
				err,
			)
		}
		return normaliseIn(settings, dir), candidate, nil
	}

	if accumulated != nil {
		return Settings{}, SettingsHandle{}, accumulated
	}
	return DefaultSettingsIn(dir), candidates[0], nil
}

// normaliseIn fills blanks with defaults rooted at dir and lowercases
// enumerations.
func normaliseIn(in Settings, dir string) Settings {
	out := in
	def := DefaultSettingsIn(dir)
	if strings.TrimSpace(out.CollectionsDir) == "" {
		out.CollectionsDir = def.CollectionsDir
	}
	if strings.TrimSpace(out.HistoryDB) == "" {
		out.HistoryDB = def.HistoryDB
	}
	if out.HistoryMax <= 0 {
		out.HistoryMax = def.HistoryMax
	}
	switch strings.ToLower(strings.TrimSpace(out.CollectionFormat)) {
	case CollectionFormatJSON:
		out.CollectionFormat = CollectionFormatJSON
	default:
		out.CollectionFormat = CollectionFormatYAML
	}
	if strings.TrimSpace(out.Log.Level) == "" {
		out.Log.Level = def.Log.Level
	}
	if strings.TrimSpace(out.Log.Format) == "" {
		out.Log.Format = def.Log.Format
	}
	if out.Log.MaxSizeMB <= 0 {
		out.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if out.Log.MaxBackups <= 0 {
		out.Log.MaxBackups = def.Log.MaxBackups
	}
	return out
}

func decodeSettings(data []byte, format SettingsFormat) (Settings, error) {
	var settings Settings
	switch format {
	case SettingsFormatTOML:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return Settings{}, err
		}
	case SettingsFormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&settings); err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
	return settings, nil
}

// SaveSettings writes settings to handle.Path (default <Dir()>/settings.toml).
// Blank fields are filled with defaults rooted next to the file.
func SaveSettings(settings Settings, handle SettingsHandle) error {
	path := handle.Path
	if path == "" {
		path = filepath.Join(Dir(), "settings.toml")
	}
	format := handle.Format
	if format == "" {
		format = SettingsFormatTOML
	}

	data, err := EncodeSettings(normaliseIn(settings, filepath.Dir(path)), format)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %q: %w", path, err)
	}
	return nil
}

func EncodeSettings(settings Settings, format SettingsFormat) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case SettingsFormatTOML:
		data, err = toml.Marshal(settings)
	case SettingsFormatJSON:
		data, err = json.MarshalIndent(settings, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported settings format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}
