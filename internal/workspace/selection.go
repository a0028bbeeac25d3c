package workspace

import (
	"sync"

	models "lumina/internal/domain/models/collection"
)

// SelectionKind is the state of the SelectionController.
type SelectionKind int

const (
	NoSelection SelectionKind = iota
	FolderSelected
	RequestSelected
)

func (k SelectionKind) String() string {
	switch k {
	case FolderSelected:
		return "folder"
	case RequestSelected:
		return "request"
	default:
		return "none"
	}
}

// Selection is a snapshot of the controller state. ID is empty for NoSelection.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// SelectionController keeps at most one folder or one request selected, never both.
// It also holds the response shown for the selected request.
type SelectionController struct {
	mu       sync.RWMutex
	current  Selection
	response *models.HistoryEntry
}

func NewSelectionController() *SelectionController {
	return &SelectionController{}
}

func (s *SelectionController) Current() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SelectionController) SelectFolder(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Selection{Kind: FolderSelected, ID: id}
	s.response = nil
}

// SelectRequest also clears any displayed response
func (s *SelectionController) SelectRequest(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Selection{Kind: RequestSelected, ID: id}
	s.response = nil
}

func (s *SelectionController) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Selection{}
	s.response = nil
}

// OnDeleted drops the selection when id is the selected node
func (s *SelectionController) OnDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.ID == id {
		s.current = Selection{}
		s.response = nil
	}
}

// Reconcile re-resolves the selection by id against a freshly loaded tree and
// reports whether it survived.
func (s *SelectionController) Reconcile(tree *TreeStore) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alive bool
	switch s.current.Kind {
	case FolderSelected:
		alive = tree.HasFolder(s.current.ID)
	case RequestSelected:
		alive = tree.HasRequest(s.current.ID)
	default:
		return true
	}
	if !alive {
		s.current = Selection{}
		s.response = nil
	}
	return alive
}

// ShowResponse records the response for the selected request. It is ignored
// when the selection moved on while the request was in flight.
func (s *SelectionController) ShowResponse(entry *models.HistoryEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Kind != RequestSelected || entry == nil || s.current.ID != entry.RequestID {
		return false
	}
	s.response = entry
	return true
}

func (s *SelectionController) Response() *models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.response
}
