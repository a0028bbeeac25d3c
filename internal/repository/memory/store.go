// Package memory implements every repository interface on in-process maps.
// It backs the test suites and STORAGE_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	models "lumina/internal/domain/models/collection"

	"github.com/google/uuid"
)

type folderRecord struct {
	models.Folder
	seq int64
}

type requestRecord struct {
	models.Request
	seq int64
}

type environmentRecord struct {
	models.Environment
	seq int64
}

type historyRecord struct {
	models.HistoryEntry
	seq int64
}

// state is everything a transaction may need to roll back
type state struct {
	projects map[string]models.Project
	folders  map[string]folderRecord
	requests map[string]requestRecord
	history  map[string][]historyRecord
	shares   map[string]models.ShareToken
	envs     map[string]environmentRecord
}

// Store holds all collections. Repositories created from the same Store share data.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	seq  int64
	now  func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		data: state{
			projects: make(map[string]models.Project),
			folders:  make(map[string]folderRecord),
			requests: make(map[string]requestRecord),
			history:  make(map[string][]historyRecord),
			shares:   make(map[string]models.ShareToken),
			envs:     make(map[string]environmentRecord),
		},
		now: time.Now,
	}
}

// SetClock replaces the store's time source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// lock takes the write lock and returns its release. A write outside a
// transaction also waits for any running transaction, so a rollback never
// discards it.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func newID() string {
	return uuid.NewString()
}

// snapshot deep-copies the state. Caller holds mu.
func (s *Store) snapshot() state {
	cp := state{
		projects: make(map[string]models.Project, len(s.data.projects)),
		folders:  make(map[string]folderRecord, len(s.data.folders)),
		requests: make(map[string]requestRecord, len(s.data.requests)),
		history:  make(map[string][]historyRecord, len(s.data.history)),
		shares:   make(map[string]models.ShareToken, len(s.data.shares)),
		envs:     make(map[string]environmentRecord, len(s.data.envs)),
	}
	for k, v := range s.data.projects {
		cp.projects[k] = v
	}
	for k, v := range s.data.folders {
		cp.folders[k] = v
	}
	for k, v := range s.data.requests {
		v.Request = *v.Request.Clone()
		cp.requests[k] = v
	}
	for k, v := range s.data.history {
		cp.history[k] = append([]historyRecord(nil), v...)
	}
	for k, v := range s.data.shares {
		cp.shares[k] = v
	}
	for k, v := range s.data.envs {
		v.Environment = *v.Environment.Clone()
		cp.envs[k] = v
	}
	return cp
}

// deleteFolderTree removes a folder with its descendants, requests and history.
// Caller holds mu.
func (s *Store) deleteFolderTree(id string) {
	for childID, child := range s.data.folders {
		if child.ParentID != nil && *child.ParentID == id {
			s.deleteFolderTree(childID)
		}
	}
	for reqID, req := range s.data.requests {
		if req.FolderID == id {
			delete(s.data.requests, reqID)
			delete(s.data.history, reqID)
		}
	}
	delete(s.data.folders, id)
}

func sortFolders(records []folderRecord) []models.Folder {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Position != records[j].Position {
			return records[i].Position < records[j].Position
		}
		return records[i].seq < records[j].seq
	})
	out := make([]models.Folder, len(records))
	for i, r := range records {
		out[i] = r.Folder
	}
	return out
}

func sortRequests(records []requestRecord) []models.Request {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Position != records[j].Position {
			return records[i].Position < records[j].Position
		}
		return records[i].seq < records[j].seq
	})
	out := make([]models.Request, len(records))
	for i, r := range records {
		out[i] = *r.Request.Clone()
	}
	return out
}
