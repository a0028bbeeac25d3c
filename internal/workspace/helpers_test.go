package workspace

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"lumina/internal/config"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/format"
	"lumina/internal/repository/memory"
	"lumina/internal/service/collection"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeExecutor struct {
	mu   sync.Mutex
	sent []models.Request
	err  error
}

func (f *fakeExecutor) Execute(ctx context.Context, req *models.Request) (*models.ResponseSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *req.Clone())
	if f.err != nil {
		return nil, f.err
	}
	return &models.ResponseSnapshot{StatusCode: 200, StatusText: "OK", Headers: models.KeyValues{}, Body: "ok", SizeBytes: 2}, nil
}

// newTestWorkspace opens a workspace over a fresh in-memory store with autosave off
func newTestWorkspace(t *testing.T) (*Workspace, *fakeExecutor) {
	t.Helper()
	return newTestWorkspaceWith(t, nil)
}

// newTestWorkspaceWith lets wrap decorate the persistence the workspace talks to
func newTestWorkspaceWith(t *testing.T, wrap func(collectionSvc.Persistence) collectionSvc.Persistence) (*Workspace, *fakeExecutor) {
	t.Helper()
	store := memory.NewStore()
	tm := memory.NewTransactionManager(store)
	svc := collection.SetupServices(collection.Repositories{
		Projects:     memory.NewProjectRepository(store),
		Folders:      memory.NewFolderRepository(store),
		Requests:     memory.NewRequestRepository(store),
		History:      memory.NewHistoryRepository(store),
		Shares:       memory.NewShareRepository(store),
		Environments: memory.NewEnvironmentRepository(store),
		TxManager:    tm,
		Locker:       tm,
	}, nil, &config.Config{}, testLogger())

	var persistence collectionSvc.Persistence = collection.NewPersistence(svc)
	if wrap != nil {
		persistence = wrap(persistence)
	}
	exec := &fakeExecutor{}
	ws := New(persistence, exec, format.NewRegistry(), Options{AutosaveInterval: -1, PersistenceTimeout: time.Second}, testLogger())
	if _, err := ws.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	return ws, exec
}

func mustFolder(t *testing.T, ws *Workspace, parentID, name string) string {
	t.Helper()
	f, err := ws.CreateFolder(context.Background(), parentID, name)
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return f.ID
}

func mustRequest(t *testing.T, ws *Workspace, folderID, name string) string {
	t.Helper()
	r, err := ws.CreateRequest(context.Background(), folderID, name, "GET", "https://example.test/"+name)
	if err != nil {
		t.Fatalf("CreateRequest(%q): %v", name, err)
	}
	return r.ID
}

// shape renders folder names and nesting for before/after comparisons
func shape(n *models.FolderNode) string {
	s := n.Name + "{"
	for _, f := range n.Folders {
		s += shape(f)
	}
	for _, r := range n.Requests {
		s += r.Name + ";"
	}
	return s + "}"
}

// eventually polls cond until it holds or a second passes
func eventually(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
