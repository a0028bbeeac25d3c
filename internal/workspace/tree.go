package workspace

import (
	"context"
	"sync"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

type treeLoader interface {
	GetFolderTree(ctx context.Context, projectID string) (*models.FolderNode, error)
}

// TreeStore holds the folder tree of the active project exactly as last loaded.
// It is never edited in place: every mutation is followed by Load.
type TreeStore struct {
	loader  treeLoader
	timeout time.Duration

	mu        sync.RWMutex
	projectID string
	root      *models.FolderNode
	folders   map[string]*models.FolderNode
	parents   map[string]string // folder id -> parent folder id
	requests  map[string]*models.Request
}

// NewTreeStore creates an empty store reading through loader
func NewTreeStore(loader treeLoader, timeout time.Duration) *TreeStore {
	return &TreeStore{loader: loader, timeout: timeout}
}

// Load replaces the held tree with projectID's tree from the store
func (t *TreeStore) Load(ctx context.Context, projectID string) (*models.FolderNode, error) {
	root, err := call(ctx, t.timeout, "load tree", func(ctx context.Context) (*models.FolderNode, error) {
		return t.loader.GetFolderTree(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}

	folders := make(map[string]*models.FolderNode)
	parents := make(map[string]string)
	requests := make(map[string]*models.Request)
	var index func(n *models.FolderNode, parentID string)
	index = func(n *models.FolderNode, parentID string) {
		folders[n.ID] = n
		if parentID != "" {
			parents[n.ID] = parentID
		}
		for _, r := range n.Requests {
			requests[r.ID] = r
		}
		for _, child := range n.Folders {
			index(child, n.ID)
		}
	}
	index(root, "")

	t.mu.Lock()
	t.projectID = projectID
	t.root = root
	t.folders = folders
	t.parents = parents
	t.requests = requests
	t.mu.Unlock()

	return root, nil
}

// Reload loads the current project again
func (t *TreeStore) Reload(ctx context.Context) (*models.FolderNode, error) {
	projectID := t.ProjectID()
	if projectID == "" {
		return nil, &domain.ValidationError{Message: "no project loaded"}
	}
	return t.Load(ctx, projectID)
}

// Reset forgets the held tree
func (t *TreeStore) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.projectID = ""
	t.root = nil
	t.folders = nil
	t.parents = nil
	t.requests = nil
}

func (t *TreeStore) ProjectID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.projectID
}

// Root returns the loaded root, or nil before the first Load
func (t *TreeStore) Root() *models.FolderNode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

func (t *TreeStore) GetFolder(id string) (*models.FolderNode, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.folders[id]
	if !ok {
		return nil, domain.NewNotFound("folder", id)
	}
	return f, nil
}

func (t *TreeStore) GetRequest(id string) (*models.Request, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.requests[id]
	if !ok {
		return nil, domain.NewNotFound("request", id)
	}
	return r, nil
}

// HasFolder and HasRequest report membership in the loaded tree
func (t *TreeStore) HasFolder(id string) bool {
	_, err := t.GetFolder(id)
	return err == nil
}

func (t *TreeStore) HasRequest(id string) bool {
	_, err := t.GetRequest(id)
	return err == nil
}

// Ancestors returns the chain from id's parent up to the root, nearest first
func (t *TreeStore) Ancestors(id string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var chain []string
	seen := map[string]bool{id: true}
	for cur, ok := t.parents[id]; ok; cur, ok = t.parents[cur] {
		if seen[cur] {
			break
		}
		seen[cur] = true
		chain = append(chain, cur)
	}
	return chain
}
