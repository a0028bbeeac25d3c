package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
)

func TestWorkspace_OpenCreatesFirstProject(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	p := ws.Project()
	if p == nil || p.Name != DefaultProjectName || !p.IsActive {
		t.Fatalf("project = %+v", p)
	}
	if root := ws.Tree.Root(); root == nil || !root.IsRoot() || root.ID != p.RootFolderID {
		t.Fatalf("root = %+v", root)
	}
}

func TestWorkspace_Selection(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	f := mustFolder(t, ws, root, "F")
	r := mustRequest(t, ws, f, "r")

	if err := ws.SelectFolder(ctx, f); err != nil {
		t.Fatalf("SelectFolder: %v", err)
	}
	if got := ws.Selection.Current(); got.Kind != FolderSelected || got.ID != f {
		t.Errorf("selection = %+v", got)
	}

	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}
	if _, err := ws.Send(ctx); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ws.Selection.Response() == nil {
		t.Fatal("response not shown after send")
	}

	// reselecting a request clears the shown response
	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}
	got := ws.Selection.Current()
	if got.Kind != RequestSelected || got.ID != r || ws.Selection.Response() != nil {
		t.Errorf("selection = %+v response = %v", got, ws.Selection.Response())
	}
	if ws.Editor.RequestID() != r {
		t.Errorf("editor holds %q", ws.Editor.RequestID())
	}

	if err := ws.SelectFolder(ctx, f); err != nil {
		t.Fatalf("SelectFolder: %v", err)
	}
	if ws.Editor.RequestID() != "" {
		t.Error("editor still open with a folder selected")
	}

	if err := ws.SelectRequest(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestWorkspace_DeletingSelectionClearsIt(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	f := mustFolder(t, ws, root, "F")
	r := mustRequest(t, ws, f, "r")

	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}
	if err := ws.DeleteFolder(ctx, f); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if got := ws.Selection.Current(); got.Kind != NoSelection {
		t.Errorf("selection = %+v", got)
	}
	if ws.Editor.RequestID() != "" {
		t.Error("editor still holds a deleted request")
	}
	if got := shape(ws.Tree.Root()); got != "Root{}" {
		t.Errorf("tree = %s", got)
	}

	if err := ws.DeleteFolder(ctx, root); !errors.Is(err, domain.ErrInvalidMove) {
		t.Errorf("delete root: expected invalid move, got %v", err)
	}
	if err := ws.RenameFolder(ctx, root, "x"); !errors.Is(err, domain.ErrInvalidMove) {
		t.Errorf("rename root: expected invalid move, got %v", err)
	}
}

// rejectingDeletes refuses every delete
type rejectingDeletes struct {
	collectionSvc.Persistence
	err error
}

func (r rejectingDeletes) DeleteFolder(ctx context.Context, id string) error  { return r.err }
func (r rejectingDeletes) DeleteRequest(ctx context.Context, id string) error { return r.err }
func (r rejectingDeletes) DeleteProject(ctx context.Context, id string) error { return r.err }

func TestWorkspace_RejectedDeleteKeepsEdits(t *testing.T) {
	refused := &domain.TransportError{Op: "delete", Err: context.DeadlineExceeded}
	ws, _ := newTestWorkspaceWith(t, func(p collectionSvc.Persistence) collectionSvc.Persistence {
		return rejectingDeletes{Persistence: p, err: refused}
	})
	ctx := context.Background()
	root := ws.Tree.Root().ID
	f := mustFolder(t, ws, root, "F")
	r := mustRequest(t, ws, f, "r")

	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}
	ws.Editor.LoadSnapshot(models.RequestSnapshot{Method: "PATCH", URL: "https://example.test/unsaved"})

	deletes := []struct {
		name string
		run  func() error
	}{
		{"request", func() error { return ws.DeleteRequest(ctx, r) }},
		{"folder", func() error { return ws.DeleteFolder(ctx, f) }},
		{"project", func() error { return ws.DeleteProject(ctx, ws.Project().ID) }},
	}
	for _, d := range deletes {
		t.Run(d.name, func(t *testing.T) {
			if err := d.run(); !errors.Is(err, domain.ErrTransport) {
				t.Fatalf("expected the rejection, got %v", err)
			}
			if ws.Editor.RequestID() != r {
				t.Fatalf("editor closed after a rejected delete")
			}
			if got := ws.Editor.Fields(); got.URL != "https://example.test/unsaved" || !ws.Editor.Dirty() {
				t.Errorf("unsaved edits lost: %+v", got)
			}
			if got := ws.Selection.Current(); got.Kind != RequestSelected {
				t.Errorf("selection = %+v", got)
			}
		})
	}
}

func TestWorkspace_SendThenHistory(t *testing.T) {
	ws, exec := newTestWorkspace(t)
	ctx := context.Background()
	r := mustRequest(t, ws, ws.Tree.Root().ID, "ping")

	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}
	if err := ws.Editor.SetHeader(ctx, 0, "X-Run", "1"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	persisted := ws.Editor.Fields()

	if _, err := ws.Send(ctx); err != nil {
		t.Fatalf("Send: %v", err)
	}

	entries, err := ws.History.List(ctx, r, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	snap := entries[0].Request
	if entries[0].Response.ElapsedMS < 0 {
		t.Errorf("elapsed_ms = %d", entries[0].Response.ElapsedMS)
	}
	if snap.Method != persisted.Method || snap.URL != persisted.URL || !snap.Headers.Equal(persisted.Headers) || snap.Body != persisted.Body {
		t.Errorf("snapshot %+v, persisted %+v", snap, persisted)
	}
	if len(exec.sent) != 1 || !exec.sent[0].Headers.Equal(persisted.Headers) {
		t.Errorf("executor saw %+v", exec.sent)
	}
}

func TestWorkspace_SendTransportFailure(t *testing.T) {
	ws, exec := newTestWorkspace(t)
	ctx := context.Background()
	r := mustRequest(t, ws, ws.Tree.Root().ID, "down")
	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}

	exec.err = &domain.TransportError{Op: "send", Err: context.DeadlineExceeded}
	entry, err := ws.Send(ctx)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if entry == nil || entry.Response.Error == "" || ws.Selection.Response() != entry {
		t.Errorf("failure not recorded: %+v", entry)
	}

	if err := ws.ClearSelection(ctx); err != nil {
		t.Fatalf("ClearSelection: %v", err)
	}
	if _, err := ws.Send(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("send without selection: expected validation error, got %v", err)
	}
}

func TestHistoryLog_LoadIsConfirmedAndUnsaved(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	r := mustRequest(t, ws, ws.Tree.Root().ID, "r")
	if err := ws.SelectRequest(ctx, r); err != nil {
		t.Fatalf("SelectRequest: %v", err)
	}
	if _, err := ws.Send(ctx); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := ws.Editor.SetURL(ctx, "https://example.test/changed"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}

	entries, err := ws.History.List(ctx, r, 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("List: %v %d", err, len(entries))
	}
	detail, err := ws.History.Detail(ctx, r, entries[0].ID, 0)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}

	loaded, err := ws.History.Load(detail, func(*models.HistoryEntry) bool { return false })
	if err != nil || loaded {
		t.Fatalf("declined load: loaded=%v err=%v", loaded, err)
	}
	if ws.Editor.Fields().URL != "https://example.test/changed" {
		t.Error("declined load changed the editor")
	}

	loaded, err = ws.History.Load(detail, func(*models.HistoryEntry) bool { return true })
	if err != nil || !loaded {
		t.Fatalf("confirmed load: loaded=%v err=%v", loaded, err)
	}
	if ws.Editor.Fields().URL != "https://example.test/r" || !ws.Editor.Dirty() {
		t.Errorf("editor = %+v dirty=%v", ws.Editor.Fields(), ws.Editor.Dirty())
	}
	stored, err := ws.store.GetRequest(ctx, r)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if stored.URL != "https://example.test/changed" {
		t.Errorf("load wrote to the store: %s", stored.URL)
	}
}

func TestWorkspace_ImportExport(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	root := ws.Tree.Root().ID
	a := mustFolder(t, ws, root, "A")
	mustRequest(t, ws, a, "one")
	mustRequest(t, ws, root, "two")

	doc, err := ws.Export("postman")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	target := mustFolder(t, ws, root, "Copy")
	summary, err := ws.Import(ctx, "postman", doc, target)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.ImportedCount != 2 || summary.FolderCount != 1 {
		t.Errorf("summary %+v", summary)
	}
	if got := shape(ws.Tree.Root()); got != "Root{A{one;}Copy{A{one;}two;}two;}" {
		t.Errorf("tree = %s", got)
	}

	before := shape(ws.Tree.Root())
	_, err = ws.Import(ctx, "postman", []byte(`{"item": 7}`), "")
	var importErr *domain.ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("expected *ImportError, got %v", err)
	}
	if after := shape(ws.Tree.Root()); after != before {
		t.Errorf("failed import changed the tree: %s", after)
	}

	if _, err := ws.Import(ctx, "postman", doc, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown folder: expected not found, got %v", err)
	}
	if _, err := ws.Export("openapi"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("openapi export: expected validation error, got %v", err)
	}
}

func TestWorkspace_Projects(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	first := ws.Project()
	mustRequest(t, ws, ws.Tree.Root().ID, "kept")

	second, err := ws.CreateProject(ctx, "Second")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if second.IsActive || ws.Project().ID != first.ID {
		t.Fatal("creating a second project switched projects")
	}

	if _, err := ws.SwitchProject(ctx, second.ID); err != nil {
		t.Fatalf("SwitchProject: %v", err)
	}
	if ws.Tree.ProjectID() != second.ID || shape(ws.Tree.Root()) != "Root{}" {
		t.Errorf("loaded %s: %s", ws.Tree.ProjectID(), shape(ws.Tree.Root()))
	}

	share, err := ws.Share(ctx, true, nil)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	copied, err := ws.ImportShare(ctx, share.ID)
	if err != nil || copied.ID == second.ID {
		t.Fatalf("ImportShare: %+v %v", copied, err)
	}

	if err := ws.DeleteProject(ctx, second.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	p := ws.Project()
	if p == nil || p.ID == second.ID {
		t.Fatalf("after delete loaded %+v", p)
	}

	projects, err := ws.Projects.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range projects {
		if err := ws.DeleteProject(ctx, p.ID); err != nil {
			t.Fatalf("DeleteProject(%s): %v", p.ID, err)
		}
	}
	if ws.Project() != nil || ws.Tree.Root() != nil {
		t.Error("workspace still loaded after deleting every project")
	}
	if _, err := ws.CreateFolder(ctx, "x", "y"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("mutation without project: expected validation error, got %v", err)
	}
}

func TestOpQueue_SerializesAndRejects(t *testing.T) {
	q := newOpQueue(1)
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 2)

	go func() {
		done <- q.Do(ctx, "p", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	order := make(chan string, 1)
	go func() {
		done <- q.Do(ctx, "p", func() error {
			order <- "second"
			return nil
		})
	}()

	// wait until the second call holds the only waiting slot
	if !eventually(t, func() bool { return len(q.lane("p").pending) == 2 }) {
		t.Fatal("second operation never queued")
	}
	select {
	case <-order:
		t.Fatal("second operation ran before the first finished")
	default:
	}

	if err := q.Do(ctx, "p", func() error { return nil }); !errors.Is(err, domain.ErrBusy) {
		t.Errorf("expected busy, got %v", err)
	}
	if err := q.Do(ctx, "other", func() error { return nil }); err != nil {
		t.Errorf("other project blocked: %v", err)
	}

	close(release)
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Errorf("queued op: %v", err)
		}
	}
}

func TestCall_DeadlineIsTransportError(t *testing.T) {
	_, err := call(context.Background(), 10*time.Millisecond, "slow op", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) || transportErr.Op != "slow op" || !transportErr.Retryable() {
		t.Errorf("expected retryable TransportError, got %v", err)
	}

	notFound := domain.NewNotFound("folder", "x")
	if err := callErr(context.Background(), time.Second, "op", func(context.Context) error { return notFound }); err != notFound {
		t.Errorf("other errors must pass through, got %v", err)
	}
}
