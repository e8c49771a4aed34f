package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/reqtree/internal/app"
	"github.com/unkn0wn-root/reqtree/internal/collection"
	"github.com/unkn0wn-root/reqtree/internal/config"
	"github.com/unkn0wn-root/reqtree/internal/errdef"
	"github.com/unkn0wn-root/reqtree/internal/history"
	"github.com/unkn0wn-root/reqtree/internal/logging"
	"github.com/unkn0wn-root/reqtree/internal/vars"
)

type rootOptions struct {
	configDir string
	debug     bool
	noColor   bool
}

// session is everything a command needs: loaded settings, the collection
// tree backed by its file store, and the app handlers on top.
type session struct {
	settings config.Settings
	log      *zap.Logger
	tree     *collection.Tree
	store    *collection.FileStore
	history  *history.Store
	app      *app.App
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "reqtree",
		Short:         "Manage HTTP request collections from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "", "configuration directory (default: $REQTREE_CONFIG_DIR or the user config dir)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.PersistentPreRun = func(*cobra.Command, []string) {
		if opts.noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newImportCmd(opts),
		newTreeCmd(opts),
		newAuthCmd(opts),
		newShowCmd(opts),
		newHistoryCmd(opts),
		newRmCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

func (o *rootOptions) dir() string {
	if o.configDir != "" {
		return o.configDir
	}
	return config.Dir()
}

func (o *rootOptions) open() (*session, error) {
	settings, _, err := config.LoadSettingsFrom(o.dir())
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeConfig, err, "load settings")
	}
	if o.debug {
		settings.Log.Level = "debug"
	}
	log := logging.New(settings.Log)

	tree := collection.NewTree()
	store := collection.NewFileStore(tree, settings.CollectionsDir, settings.CollectionFormat, log.Named("store"))
	if err := store.LoadDir(); err != nil {
		return nil, err
	}
	log.Debug("collections loaded", zap.String("dir", settings.CollectionsDir), zap.Int("count", tree.Len()))

	hist, err := history.Open(settings.HistoryDB, settings.HistoryMax)
	if err != nil {
		return nil, err
	}

	a := app.New(tree, store, vars.Default, log)
	a.History = hist
	return &session{
		settings: settings,
		log:      log,
		tree:     tree,
		store:    store,
		history:  hist,
		app:      a,
	}, nil
}

func (s *session) close() {
	if err := s.history.Close(); err != nil {
		s.log.Warn("close history", zap.Error(err))
	}
	_ = s.log.Sync()
}

// locate turns "<collection> <path>" arguments into an index. The collection
// is a name or a position; the path is slash-separated item positions.
func (s *session) locate(collectionArg, pathArg string) (collection.Index, error) {
	ci, ok := s.tree.Find(collectionArg)
	if !ok {
		n, err := strconv.Atoi(collectionArg)
		if err != nil || n < 0 || n >= s.tree.Len() {
			return collection.Index{}, errdef.New(errdef.CodeCollection, "unknown collection %q", collectionArg)
		}
		ci = n
	}
	var path []int
	for _, part := range strings.Split(strings.Trim(pathArg, "/"), "/") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return collection.Index{}, errdef.New(errdef.CodeCollection, "invalid request path %q", pathArg)
		}
		path = append(path, n)
	}
	idx := collection.Index{Collection: ci, Path: path}
	if _, err := s.tree.Resolve(idx); err != nil {
		return collection.Index{}, errdef.Wrap(errdef.CodeCollection, err, "request %s", pathArg)
	}
	return idx, nil
}
