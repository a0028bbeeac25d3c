// Package workspace is the client core: it keeps the active project's tree,
// the selection and the open request editor in step with the persistence service.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/format"
	"lumina/internal/service/collection"
)

// DefaultProjectName names the project created when a workspace opens on an empty store.
const DefaultProjectName = "My Project"

// Options tunes a Workspace. Zero values fall back to the defaults below.
type Options struct {
	AutosaveInterval   time.Duration // 5s
	PersistenceTimeout time.Duration // 10s
	OpQueueDepth       int           // 8
}

func (o Options) withDefaults() Options {
	if o.AutosaveInterval == 0 {
		o.AutosaveInterval = 5 * time.Second
	}
	if o.PersistenceTimeout == 0 {
		o.PersistenceTimeout = 10 * time.Second
	}
	if o.OpQueueDepth == 0 {
		o.OpQueueDepth = 8
	}
	return o
}

// Workspace owns every piece of client state for one user session.
type Workspace struct {
	store    collectionSvc.Persistence
	executor collectionSvc.Executor
	registry *format.Registry
	timeout  time.Duration
	queue    *opQueue
	logger   *slog.Logger

	Tree         *TreeStore
	Selection    *SelectionController
	Editor       *EditorSync
	History      *HistoryLog
	Projects     *ProjectManager
	Environments *EnvironmentManager
	Moves        *MoveEngine

	mu      sync.RWMutex
	project *models.Project
}

func New(
	store collectionSvc.Persistence,
	executor collectionSvc.Executor,
	registry *format.Registry,
	opts Options,
	logger *slog.Logger,
) *Workspace {
	opts = opts.withDefaults()
	w := &Workspace{
		store:    store,
		executor: executor,
		registry: registry,
		timeout:  opts.PersistenceTimeout,
		queue:    newOpQueue(opts.OpQueueDepth),
		logger:   logger,
	}
	w.Tree = NewTreeStore(store, opts.PersistenceTimeout)
	w.Selection = NewSelectionController()
	w.Editor = NewEditorSync(store, opts.AutosaveInterval, opts.PersistenceTimeout, logger)
	w.History = NewHistoryLog(store, w.Editor, opts.PersistenceTimeout)
	w.Projects = NewProjectManager(store, opts.PersistenceTimeout)
	w.Environments = NewEnvironmentManager(store, opts.PersistenceTimeout)
	w.Moves = NewMoveEngine(w.Tree, store, w.mutate)
	return w
}

// Project is the loaded project, or nil
func (w *Workspace) Project() *models.Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.project
}

func (w *Workspace) setProject(p *models.Project) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.project = p
}

// Open loads the active project, creating a first project when there is none
func (w *Workspace) Open(ctx context.Context) (*models.Project, error) {
	return w.loadActive(ctx, true)
}

func (w *Workspace) loadActive(ctx context.Context, create bool) (*models.Project, error) {
	active, err := w.Projects.Active(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		if !create {
			w.unload()
			return nil, nil
		}
		if active, err = w.Projects.Create(ctx, DefaultProjectName); err != nil {
			return nil, err
		}
	}
	if err := w.load(ctx, active); err != nil {
		return nil, err
	}
	return active, nil
}

func (w *Workspace) load(ctx context.Context, p *models.Project) error {
	if _, err := w.Tree.Load(ctx, p.ID); err != nil {
		return err
	}
	w.setProject(p)
	w.Selection.Clear()
	w.logger.Info("project loaded", "project_id", p.ID, "name", p.Name)
	return nil
}

func (w *Workspace) unload() {
	w.Editor.Discard()
	w.Selection.Clear()
	w.Tree.Reset()
	w.setProject(nil)
}

// Close writes pending edits and stops the autosave timer
func (w *Workspace) Close(ctx context.Context) error {
	return w.Editor.Close(ctx)
}

// SwitchProject activates id and loads its tree. Pending edits of the open
// request are written first; a failed write is logged and does not stop the switch.
func (w *Workspace) SwitchProject(ctx context.Context, id string) (*models.Project, error) {
	if err := w.Editor.Close(ctx); err != nil {
		w.logger.Warn("pending edits lost on project switch", "error", err)
	}
	p, err := w.Projects.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.load(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject creates a project and loads it when it became the active one
func (w *Workspace) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	p, err := w.Projects.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	if p.IsActive {
		if err := w.load(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DeleteProject deletes id. Deleting the loaded project loads whichever project
// the store made active, or leaves the workspace empty.
func (w *Workspace) DeleteProject(ctx context.Context, id string) error {
	current := w.Project()
	loaded := current != nil && current.ID == id
	if err := w.Projects.Delete(ctx, id); err != nil {
		return err
	}
	if loaded {
		w.Editor.Discard()
		_, err := w.loadActive(ctx, false)
		return err
	}
	return nil
}

// mutate runs fn in the loaded project's queue, then reloads the tree and
// re-resolves selection against it. Nothing is reloaded when fn fails.
func (w *Workspace) mutate(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	projectID := w.Tree.ProjectID()
	if projectID == "" {
		return &domain.ValidationError{Message: "no project loaded"}
	}

	return w.queue.Do(ctx, projectID, func() error {
		if err := callErr(ctx, w.timeout, op, fn); err != nil {
			w.logger.Warn("tree operation failed", "op", op, "project_id", projectID, "error", err)
			return err
		}
		if _, err := w.Tree.Reload(ctx); err != nil {
			return err
		}
		w.reconcile()
		return nil
	})
}

func (w *Workspace) reconcile() {
	w.Selection.Reconcile(w.Tree)
	if id := w.Editor.RequestID(); id != "" && !w.Tree.HasRequest(id) {
		w.Editor.Discard()
	}
}

func (w *Workspace) CreateFolder(ctx context.Context, parentID, name string) (*models.Folder, error) {
	var created *models.Folder
	err := w.mutate(ctx, "create folder", func(ctx context.Context) error {
		if _, err := w.Tree.GetFolder(parentID); err != nil {
			return err
		}
		f, err := w.store.CreateFolder(ctx, name, parentID)
		created = f
		return err
	})
	return created, err
}

func (w *Workspace) RenameFolder(ctx context.Context, id, name string) error {
	return w.mutate(ctx, "rename folder", func(ctx context.Context) error {
		folder, err := w.Tree.GetFolder(id)
		if err != nil {
			return err
		}
		if folder.IsRoot() {
			return &domain.RootFolderError{Op: "rename", FolderID: id}
		}
		_, err = w.store.RenameFolder(ctx, id, name)
		return err
	})
}

// DeleteFolder removes a folder with everything below it
func (w *Workspace) DeleteFolder(ctx context.Context, id string) error {
	return w.mutate(ctx, "delete folder", func(ctx context.Context) error {
		folder, err := w.Tree.GetFolder(id)
		if err != nil {
			return err
		}
		if folder.IsRoot() {
			return &domain.RootFolderError{Op: "delete", FolderID: id}
		}
		within := w.editorWithin(folder)
		if err := w.store.DeleteFolder(ctx, id); err != nil {
			return err
		}
		if within {
			w.Editor.Discard()
		}
		w.Selection.OnDeleted(id)
		return nil
	})
}

func (w *Workspace) editorWithin(folder *models.FolderNode) bool {
	id := w.Editor.RequestID()
	if id == "" {
		return false
	}
	req, _ := folder.FindRequest(id)
	return req != nil
}

func (w *Workspace) CreateRequest(ctx context.Context, folderID, name, method, url string) (*models.Request, error) {
	var created *models.Request
	err := w.mutate(ctx, "create request", func(ctx context.Context) error {
		if _, err := w.Tree.GetFolder(folderID); err != nil {
			return err
		}
		r, err := w.store.CreateRequest(ctx, folderID, name, method, url)
		created = r
		return err
	})
	return created, err
}

func (w *Workspace) DeleteRequest(ctx context.Context, id string) error {
	return w.mutate(ctx, "delete request", func(ctx context.Context) error {
		if _, err := w.Tree.GetRequest(id); err != nil {
			return err
		}
		if err := w.store.DeleteRequest(ctx, id); err != nil {
			return err
		}
		if w.Editor.RequestID() == id {
			w.Editor.Discard()
		}
		w.Editor.Forget(id)
		w.Selection.OnDeleted(id)
		return nil
	})
}

// SelectFolder selects a folder and closes the request editor
func (w *Workspace) SelectFolder(ctx context.Context, id string) error {
	if _, err := w.Tree.GetFolder(id); err != nil {
		return err
	}
	closeErr := w.Editor.Close(ctx)
	w.Selection.SelectFolder(id)
	return closeErr
}

// SelectRequest opens the stored request in the editor. The previous request's
// pending edits are written first; their failure is returned after the switch.
func (w *Workspace) SelectRequest(ctx context.Context, id string) error {
	if _, err := w.Tree.GetRequest(id); err != nil {
		return err
	}
	req, err := call(ctx, w.timeout, "get request", func(ctx context.Context) (*models.Request, error) {
		return w.store.GetRequest(ctx, id)
	})
	if err != nil {
		return err
	}
	closeErr := w.Editor.Open(ctx, req)
	w.Selection.SelectRequest(id)
	return closeErr
}

func (w *Workspace) ClearSelection(ctx context.Context) error {
	err := w.Editor.Close(ctx)
	w.Selection.Clear()
	return err
}

// Send flushes the open request and executes what was stored with the
// project's variables substituted. The result is appended to history and
// shown when the request is still selected.
func (w *Workspace) Send(ctx context.Context) (*models.HistoryEntry, error) {
	sel := w.Selection.Current()
	if sel.Kind != RequestSelected {
		return nil, &domain.ValidationError{Message: "no request selected"}
	}

	saved, err := w.Editor.Flush(ctx)
	if err != nil {
		return nil, err
	}

	vars, err := w.Environments.Variables(ctx, saved.ProjectID)
	if err != nil {
		return nil, err
	}

	entry, err := collection.RecordExecution(ctx, w.executor, timedHistory{w.store, w.timeout}, saved, vars, w.logger)
	if entry != nil {
		w.Selection.ShowResponse(entry)
	}
	return entry, err
}

type timedHistory struct {
	store   collectionSvc.Persistence
	timeout time.Duration
}

func (h timedHistory) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	return callErr(ctx, h.timeout, "append history", func(ctx context.Context) error {
		return h.store.AppendHistory(ctx, entry)
	})
}

// Import parses data and adds its tree beneath folderID, or the root when empty,
// together with any environments the document carries.
// Every failure other than an unknown folder is an ImportError and leaves the
// tree untouched.
func (w *Workspace) Import(ctx context.Context, formatName string, data []byte, folderID string) (*collectionSvc.ImportSummary, error) {
	f, err := format.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	if folderID != "" {
		if _, err := w.Tree.GetFolder(folderID); err != nil {
			return nil, err
		}
	}

	tree, err := w.registry.Import(f, data)
	if err != nil {
		return nil, &domain.ImportError{Format: string(f), Reason: err.Error(), Err: err}
	}
	envs, err := w.registry.ImportEnvironments(f, data)
	if err != nil {
		return nil, &domain.ImportError{Format: string(f), Reason: err.Error(), Err: err}
	}

	var summary *collectionSvc.ImportSummary
	err = w.mutate(ctx, "import "+string(f), func(ctx context.Context) error {
		s, err := w.store.ImportDocument(ctx, w.Tree.ProjectID(), folderID, tree, envs)
		summary = s
		return err
	})
	if err != nil {
		var notFound *domain.NotFoundError
		var busy *domain.BusyError
		if errors.As(err, &notFound) || errors.As(err, &busy) {
			return nil, err
		}
		return nil, &domain.ImportError{Format: string(f), Reason: "persist imported tree", Err: err}
	}
	return summary, nil
}

// Export converts the loaded tree
func (w *Workspace) Export(formatName string) ([]byte, error) {
	f, err := format.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	p := w.Project()
	root := w.Tree.Root()
	if p == nil || root == nil {
		return nil, &domain.ValidationError{Message: "no project loaded"}
	}
	return w.registry.Export(f, p.Name, root)
}

// Share snapshots the loaded project
func (w *Workspace) Share(ctx context.Context, readOnly bool, expiresAt *time.Time) (*models.ShareToken, error) {
	p := w.Project()
	if p == nil {
		return nil, &domain.ValidationError{Message: "no project loaded"}
	}
	return call(ctx, w.timeout, "create share", func(ctx context.Context) (*models.ShareToken, error) {
		return w.store.CreateShare(ctx, p.ID, readOnly, expiresAt)
	})
}

// ImportShare materializes a share as a new project. The loaded project stays loaded.
func (w *Workspace) ImportShare(ctx context.Context, token string) (*models.Project, error) {
	return call(ctx, w.timeout, "import share", func(ctx context.Context) (*models.Project, error) {
		return w.store.ImportShare(ctx, token)
	})
}
