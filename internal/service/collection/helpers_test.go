package collection

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"lumina/internal/config"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
	"lumina/internal/repository/memory"
)

// fakeExecutor returns a canned response, or err when set
type fakeExecutor struct {
	mu   sync.Mutex
	sent []models.Request
	resp *models.ResponseSnapshot
	err  error
}

func (f *fakeExecutor) Execute(ctx context.Context, req *models.Request) (*models.ResponseSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *req.Clone())
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	return &resp, nil
}

type testEnv struct {
	store    *memory.Store
	svc      *Services
	executor *fakeExecutor
	cfg      *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	tm := memory.NewTransactionManager(store)
	repos := Repositories{
		Projects:     memory.NewProjectRepository(store),
		Folders:      memory.NewFolderRepository(store),
		Requests:     memory.NewRequestRepository(store),
		History:      memory.NewHistoryRepository(store),
		Shares:       memory.NewShareRepository(store),
		Environments: memory.NewEnvironmentRepository(store),
		TxManager:    tm,
		Locker:       tm,
	}
	cfg := &config.Config{
		HistoryMaxEntries:   5,
		HistoryMaxBodyBytes: 16,
	}
	exec := &fakeExecutor{resp: &models.ResponseSnapshot{
		StatusCode: 200,
		StatusText: "OK",
		Headers:    models.KeyValues{{Key: "Content-Type", Value: "application/json"}},
		Body:       `{"ok":true}`,
		ElapsedMS:  3,
		SizeBytes:  11,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		store:    store,
		svc:      SetupServices(repos, exec, cfg, logger),
		executor: exec,
		cfg:      cfg,
	}
}

func (e *testEnv) createProject(t *testing.T, name string) *models.Project {
	t.Helper()
	p, err := e.svc.Projects.CreateProject(context.Background(), &collectionSvc.CreateProjectRequest{Name: name})
	if err != nil {
		t.Fatalf("CreateProject(%q): %v", name, err)
	}
	return p
}

func (e *testEnv) createFolder(t *testing.T, parentID, name string) *models.Folder {
	t.Helper()
	f, err := e.svc.Folders.CreateFolder(context.Background(), &collectionSvc.CreateFolderRequest{ParentID: parentID, Name: name})
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return f
}

func (e *testEnv) createRequest(t *testing.T, folderID, name string) *models.Request {
	t.Helper()
	r, err := e.svc.Requests.CreateRequest(context.Background(), &collectionSvc.CreateRequestRequest{
		FolderID: folderID,
		Name:     name,
		Method:   "GET",
		URL:      "https://example.test/" + name,
	})
	if err != nil {
		t.Fatalf("CreateRequest(%q): %v", name, err)
	}
	return r
}

func (e *testEnv) tree(t *testing.T, projectID string) *models.FolderNode {
	t.Helper()
	root, err := e.svc.Tree.GetProjectTree(context.Background(), projectID)
	if err != nil {
		t.Fatalf("GetProjectTree: %v", err)
	}
	return root
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
