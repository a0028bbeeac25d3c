package workspace

import (
	"context"

	"lumina/internal/domain"
)

type moveStore interface {
	MoveFolder(ctx context.Context, id, newParentID string) error
	MoveRequest(ctx context.Context, id, newFolderID string) error
}

// mutator runs fn through the project queue and reloads the tree after it succeeds
type mutator func(ctx context.Context, op string, fn func(ctx context.Context) error) error

// MoveEngine reparents folders and requests. Moves are checked against the
// loaded tree before anything is written, then the tree is reloaded.
type MoveEngine struct {
	tree  *TreeStore
	store moveStore
	run   mutator
}

func NewMoveEngine(tree *TreeStore, store moveStore, run mutator) *MoveEngine {
	return &MoveEngine{tree: tree, store: store, run: run}
}

// MoveFolder appends folderID to targetFolderID's children
func (m *MoveEngine) MoveFolder(ctx context.Context, folderID, targetFolderID string) error {
	return m.run(ctx, "move folder", func(ctx context.Context) error {
		if err := m.CheckFolderMove(folderID, targetFolderID); err != nil {
			return err
		}
		return m.store.MoveFolder(ctx, folderID, targetFolderID)
	})
}

// MoveRequest appends requestID to targetFolderID's requests
func (m *MoveEngine) MoveRequest(ctx context.Context, requestID, targetFolderID string) error {
	return m.run(ctx, "move request", func(ctx context.Context) error {
		if err := m.CheckRequestMove(requestID, targetFolderID); err != nil {
			return err
		}
		return m.store.MoveRequest(ctx, requestID, targetFolderID)
	})
}

// CheckFolderMove reports why moving folderID under targetFolderID is not allowed
func (m *MoveEngine) CheckFolderMove(folderID, targetFolderID string) error {
	if _, err := m.tree.GetFolder(targetFolderID); err != nil {
		return err
	}
	if folderID == targetFolderID {
		return &domain.SelfMoveError{FolderID: folderID}
	}
	folder, err := m.tree.GetFolder(folderID)
	if err != nil {
		return err
	}
	if folder.IsRoot() {
		return &domain.RootFolderError{Op: "move", FolderID: folderID}
	}
	for _, ancestor := range m.tree.Ancestors(targetFolderID) {
		if ancestor == folderID {
			return &domain.CycleError{FolderID: folderID, TargetID: targetFolderID}
		}
	}
	return nil
}

func (m *MoveEngine) CheckRequestMove(requestID, targetFolderID string) error {
	if _, err := m.tree.GetFolder(targetFolderID); err != nil {
		return err
	}
	_, err := m.tree.GetRequest(requestID)
	return err
}
