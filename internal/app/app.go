package app

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/reqtree/internal/collection"
	"github.com/unkn0wn-root/reqtree/internal/curl/importer"
	"github.com/unkn0wn-root/reqtree/internal/errdef"
	"github.com/unkn0wn-root/reqtree/internal/history"
	"github.com/unkn0wn-root/reqtree/internal/logging"
	"github.com/unkn0wn-root/reqtree/internal/request"
	"github.com/unkn0wn-root/reqtree/internal/vars"
)

// App holds the state shared by the views: the collection tree, loaded
// environments and the current selection. Handlers run on the UI goroutine;
// each mutation holds the record lock only while editing and persists after
// the lock is released.
type App struct {
	Tree      *collection.Tree
	Saver     collection.Saver
	Envs      *vars.Registry
	EnvReader vars.Reader
	Importer  *importer.Service
	Logger    *zap.Logger
	// History records successful imports. Nil disables the log.
	History History

	selected  *collection.Index
	authInput int
}

// History is the import log the app writes to.
type History interface {
	Append(history.Entry) error
}

func New(tree *collection.Tree, saver collection.Saver, envs *vars.Registry, log *zap.Logger) *App {
	log = logging.OrNop(log)
	if envs == nil {
		envs = vars.Default
	}
	return &App{
		Tree:      tree,
		Saver:     saver,
		Envs:      envs,
		EnvReader: vars.DotEnvReader{},
		Importer:  importer.NewService(tree, saver, log.Named("curl")),
		Logger:    log,
	}
}

// Select makes idx the current request. idx must name a request leaf.
func (a *App) Select(idx collection.Index) tea.Cmd {
	a.Tree.MustResolve(idx)
	sel := collection.Index{Collection: idx.Collection, Path: append([]int(nil), idx.Path...)}
	a.selected = &sel
	a.authInput = 0
	return changed(sel)
}

func (a *App) Selected() (collection.Index, bool) {
	if a.selected == nil {
		return collection.Index{}, false
	}
	return *a.selected, true
}

func (a *App) selection() collection.Index {
	if a.selected == nil {
		panic(collection.ErrNoSelection)
	}
	return *a.selected
}

// SelectedRequest returns a copy of the current request.
func (a *App) SelectedRequest() request.Request {
	id := a.Tree.MustResolve(a.selection())
	req, err := a.Tree.Records().Snapshot(id)
	if err != nil {
		panic(err)
	}
	return req
}

func (a *App) CycleAuth() tea.Cmd {
	a.authInput = 0
	return a.mutate("cycle auth", func(r *request.Request) {
		r.Auth = request.NextAuth(r.Auth)
	})
}

func (a *App) SetBasicUsername(text string) tea.Cmd {
	return a.mutate("set username", func(r *request.Request) {
		r.Auth = request.PatchUsername(r.Auth, text)
	})
}

func (a *App) SetBasicPassword(text string) tea.Cmd {
	return a.mutate("set password", func(r *request.Request) {
		r.Auth = request.PatchPassword(r.Auth, text)
	})
}

func (a *App) SetBearerToken(text string) tea.Cmd {
	return a.mutate("set bearer token", func(r *request.Request) {
		r.Auth = request.PatchBearerToken(r.Auth, text)
	})
}

// mutate runs fn under exclusive access to the selected request, then signals
// the saver once the lock is gone.
func (a *App) mutate(op string, fn func(*request.Request)) tea.Cmd {
	idx := a.selection()
	id := a.Tree.MustResolve(idx)
	if err := a.Tree.Records().Write(id, fn); err != nil {
		panic(err)
	}
	a.Logger.Debug(op, zap.Stringer("request", idx))
	if a.Saver != nil {
		a.Saver.Save(idx.Collection)
	}
	return changed(idx)
}

// NextAuthInput moves the focused auth input, wrapping around.
func (a *App) NextAuthInput() AuthField {
	auth := a.SelectedRequest().Auth
	if n := auth.InputCount(); n > 0 {
		a.authInput = (a.authInput + 1) % n
	}
	return a.SelectAuthInput()
}

// SelectAuthInput reports which input the focused slot edits for the current
// auth variant. NoAuth exposes none.
func (a *App) SelectAuthInput() AuthField {
	var field AuthField
	id := a.Tree.MustResolve(a.selection())
	err := a.Tree.Records().Read(id, func(r request.Request) {
		switch r.Auth.Kind {
		case request.AuthBasic:
			switch a.authInput {
			case 0:
				field = AuthFieldUsername
			case 1:
				field = AuthFieldPassword
			}
		case request.AuthBearer:
			if a.authInput == 0 {
				field = AuthFieldToken
			}
		}
	})
	if err != nil {
		panic(err)
	}
	return field
}

// ImportCurlFile imports the first curl command in path and appends it to the
// collection named target, or to a new collection when none matches.
func (a *App) ImportCurlFile(path, target string) (tea.Cmd, error) {
	if _, err := a.Importer.ImportFile(path); err != nil {
		return nil, err
	}
	return a.appendPending(path, target)
}

func (a *App) ImportCurlClipboard(name, target string) (tea.Cmd, error) {
	if _, err := a.Importer.ImportClipboard(name); err != nil {
		return nil, err
	}
	return a.appendPending("clipboard", target)
}

func (a *App) appendPending(source, target string) (tea.Cmd, error) {
	req, _ := a.Importer.Pending()
	idx, created, err := a.Importer.AppendPending(target)
	if err != nil {
		return nil, err
	}
	a.record(history.Entry{
		Kind:       history.KindCurl,
		Name:       req.Name,
		Source:     source,
		Collection: a.Tree.Collections()[idx.Collection].Name,
		Method:     req.Method.String(),
		URL:        req.FullURL(),
	})
	msg := CollectionChangedMsg{Collection: idx.Collection, Created: created, Added: idx}
	return func() tea.Msg { return msg }, nil
}

// RemoveRequest deletes the leaf at idx and persists its collection. A
// selection on idx is cleared; later siblings shift up by one.
func (a *App) RemoveRequest(idx collection.Index) (tea.Cmd, error) {
	if err := a.Tree.RemoveRequest(idx); err != nil {
		return nil, errdef.Wrap(errdef.CodeCollection, err, "remove request %s", idx)
	}
	a.shiftSelection(idx)
	a.Logger.Info("request removed", zap.Stringer("request", idx))
	if a.Saver != nil {
		a.Saver.Save(idx.Collection)
	}
	removed := collection.Index{Collection: idx.Collection, Path: append([]int(nil), idx.Path...)}
	msg := CollectionChangedMsg{Collection: idx.Collection, Removed: &removed}
	return func() tea.Msg { return msg }, nil
}

func (a *App) shiftSelection(removed collection.Index) {
	sel := a.selected
	if sel == nil || sel.Collection != removed.Collection {
		return
	}
	depth := len(removed.Path) - 1
	if len(sel.Path) <= depth || !slices.Equal(sel.Path[:depth], removed.Path[:depth]) {
		return
	}
	switch {
	case sel.Path[depth] == removed.Path[depth]:
		a.selected = nil
		a.authInput = 0
	case sel.Path[depth] > removed.Path[depth]:
		sel.Path[depth]--
	}
}

// ImportEnvironmentFile loads path into the registry and records the import.
func (a *App) ImportEnvironmentFile(path string) (tea.Cmd, error) {
	env, err := a.LoadEnvironmentFile(path)
	if err != nil {
		return nil, err
	}
	a.record(history.Entry{Kind: history.KindEnvironment, Name: env.Name, Source: path})
	msg := EnvironmentAddedMsg{Name: env.Name, Environment: env}
	return func() tea.Msg { return msg }, nil
}

// LoadEnvironmentFile adds the environment in path without touching the
// import log.
func (a *App) LoadEnvironmentFile(path string) (vars.Environment, error) {
	env, err := vars.ImportFile(a.EnvReader, a.Envs, path)
	if err != nil {
		return vars.Environment{}, err
	}
	a.Logger.Info("environment added", zap.String("name", env.Name), zap.Int("values", len(env.Values)))
	return env, nil
}

// record never fails the import it describes.
func (a *App) record(e history.Entry) {
	if a.History == nil {
		return
	}
	if err := a.History.Append(e); err != nil {
		a.Logger.Warn("history append failed", zap.String("name", e.Name), zap.Error(err))
	}
}

// ResolveSelected expands templates in the current request against the named
// environment, or against every loaded environment when name is empty.
func (a *App) ResolveSelected(name string) (request.Request, error) {
	envs := a.Envs.All()
	if name != "" {
		env, ok := a.Envs.ByName(name)
		if !ok {
			return request.Request{}, errdef.New(errdef.CodeEnvironment, "unknown environment %q", name)
		}
		envs = []vars.Environment{env}
	}
	return vars.ExpandRequest(vars.ForEnvironments(envs...), a.SelectedRequest())
}

func changed(idx collection.Index) tea.Cmd {
	return func() tea.Msg { return RequestChangedMsg{Index: idx} }
}
