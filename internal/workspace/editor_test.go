package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

type write struct {
	id     string
	fields models.RequestFields
}

// recordingStore records every UpdateRequest and fails while err is set
type recordingStore struct {
	mu     sync.Mutex
	writes []write
	err    error
}

func (s *recordingStore) UpdateRequest(ctx context.Context, id string, fields models.RequestFields) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.writes = append(s.writes, write{id: id, fields: fields})
	req := &models.Request{ID: id}
	req.Apply(fields)
	return req, nil
}

func (s *recordingStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingStore) count(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.writes {
		if w.id == id {
			n++
		}
	}
	return n
}

func (s *recordingStore) last() write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[len(s.writes)-1]
}

func openRequest(id string) *models.Request {
	return &models.Request{
		ID:      id,
		Name:    id,
		Method:  "GET",
		URL:     "https://example.test/" + id,
		Headers: models.KeyValues{{Key: "Accept", Value: "*/*"}},
		Params:  models.KeyValues{},
		Body:    models.RawBody(""),
		Auth:    models.NoAuth{},
	}
}

func TestEditorSync_ChangePersistsFullSnapshot(t *testing.T) {
	store := &recordingStore{}
	ed := NewEditorSync(store, 0, time.Second, testLogger())
	ctx := context.Background()

	if err := ed.Open(ctx, openRequest("r1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ed.SetURL(ctx, "https://example.test/v2"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	if err := ed.SetHeader(ctx, 1, "X-Trace", "on"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if err := ed.SetParam(ctx, 0, "", "dropped"); err != nil {
		t.Fatalf("SetParam: %v", err)
	}

	if n := store.count("r1"); n != 3 {
		t.Fatalf("writes = %d, want 3", n)
	}
	got := store.last().fields
	if got.URL != "https://example.test/v2" || got.Name != "r1" || got.Method != "GET" {
		t.Errorf("snapshot %+v", got)
	}
	if !got.Headers.Equal(models.KeyValues{{Key: "Accept", Value: "*/*"}, {Key: "X-Trace", Value: "on"}}) {
		t.Errorf("headers %+v", got.Headers)
	}
	if len(got.Params) != 0 {
		t.Errorf("empty-key param persisted: %+v", got.Params)
	}
	if rows := ed.Params(); len(rows) != 2 || rows[0].Value != "dropped" {
		t.Errorf("param rows %+v", rows)
	}
	if ed.Dirty() {
		t.Error("editor still dirty after successful write")
	}
}

func TestEditorSync_FailedWriteKeepsEdits(t *testing.T) {
	store := &recordingStore{}
	ed := NewEditorSync(store, 0, time.Second, testLogger())
	ctx := context.Background()
	if err := ed.Open(ctx, openRequest("r1")); err != nil {
		t.Fatalf("Open: %v", err)
	}

	var reported error
	ed.OnError(func(err error) { reported = err })
	store.setErr(&domain.TransportError{Op: "save", Err: context.DeadlineExceeded})

	err := ed.SetName(ctx, "renamed")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if reported == nil || ed.LastError() == nil {
		t.Error("failure was not surfaced")
	}
	if ed.Fields().Name != "renamed" || !ed.Dirty() {
		t.Error("edit was reverted")
	}

	store.setErr(nil)
	if err := ed.SetMethod(ctx, "DELETE"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	got := store.last().fields
	if got.Name != "renamed" || got.Method != "DELETE" {
		t.Errorf("retry wrote %+v", got)
	}
	if ed.LastError() != nil || ed.Dirty() {
		t.Error("state not cleared after successful retry")
	}
}

func TestEditorSync_TimerWritesEveryTick(t *testing.T) {
	store := &recordingStore{}
	ed := NewEditorSync(store, 10*time.Millisecond, time.Second, testLogger())
	ctx := context.Background()
	if err := ed.Open(ctx, openRequest("r1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ed.Discard()

	if !eventually(t, func() bool { return store.count("r1") >= 2 }) {
		t.Fatalf("timer did not write the open request, writes = %d", store.count("r1"))
	}

	if err := ed.LoadSnapshot(models.RequestSnapshot{Method: "POST", URL: "https://example.test/replay", Body: models.RawBody("x")}); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if !eventually(t, func() bool { return store.last().fields.URL == "https://example.test/replay" }) {
		t.Fatalf("timer did not write the loaded snapshot, last = %+v", store.last().fields)
	}
	if got := store.last().fields; got.Method != "POST" {
		t.Errorf("timer wrote %+v", got)
	}
}

func TestEditorSync_SwitchCancelsTimer(t *testing.T) {
	store := &recordingStore{}
	ed := NewEditorSync(store, 10*time.Millisecond, time.Second, testLogger())
	ctx := context.Background()

	if err := ed.Open(ctx, openRequest("a")); err != nil {
		t.Fatalf("Open a: %v", err)
	}
	ed.Discard()
	time.Sleep(20 * time.Millisecond)
	before := store.count("a")

	if err := ed.Open(ctx, openRequest("b")); err != nil {
		t.Fatalf("Open b: %v", err)
	}
	defer ed.Discard()

	time.Sleep(60 * time.Millisecond)
	if n := store.count("a"); n != before {
		t.Errorf("stale timer wrote to a: %d writes after switch", n-before)
	}
	if n := store.count("b"); n == 0 {
		t.Error("timer of b never ran")
	}
	if ed.RequestID() != "b" {
		t.Errorf("open request = %q", ed.RequestID())
	}
}

func TestEditorSync_FailedCloseParksEdits(t *testing.T) {
	ctx := context.Background()
	offline := errors.New("offline")

	t.Run("retried on next close", func(t *testing.T) {
		store := &recordingStore{}
		ed := NewEditorSync(store, 0, time.Second, testLogger())
		if err := ed.Open(ctx, openRequest("a")); err != nil {
			t.Fatalf("Open a: %v", err)
		}
		store.setErr(offline)
		_ = ed.SetURL(ctx, "https://example.test/pending")

		if err := ed.Open(ctx, openRequest("b")); !errors.Is(err, offline) {
			t.Fatalf("switch: expected the failed write, got %v", err)
		}
		if got := ed.Pending(); len(got) != 1 || got[0] != "a" {
			t.Fatalf("pending = %v, want [a]", got)
		}

		store.setErr(nil)
		if err := ed.Close(ctx); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if len(ed.Pending()) != 0 {
			t.Errorf("pending after successful retry = %v", ed.Pending())
		}
		if n := store.count("a"); n != 1 {
			t.Fatalf("writes to a = %d, want 1", n)
		}
		if got := store.last().fields; got.URL != "https://example.test/pending" {
			t.Errorf("retry wrote %+v", got)
		}
	})

	t.Run("restored on reopen", func(t *testing.T) {
		store := &recordingStore{}
		ed := NewEditorSync(store, 0, time.Second, testLogger())
		if err := ed.Open(ctx, openRequest("a")); err != nil {
			t.Fatalf("Open a: %v", err)
		}
		store.setErr(offline)
		_ = ed.SetName(ctx, "kept")
		_ = ed.Open(ctx, openRequest("b"))

		_ = ed.Open(ctx, openRequest("a"))
		if ed.Fields().Name != "kept" || !ed.Dirty() {
			t.Errorf("reopened a lost its edits: %+v dirty=%v", ed.Fields(), ed.Dirty())
		}
		if len(ed.Pending()) != 0 {
			t.Errorf("pending after reopen = %v", ed.Pending())
		}
	})

	t.Run("dropped when forgotten", func(t *testing.T) {
		store := &recordingStore{}
		ed := NewEditorSync(store, 0, time.Second, testLogger())
		_ = ed.Open(ctx, openRequest("a"))
		store.setErr(offline)
		_ = ed.SetName(ctx, "gone")
		_ = ed.Close(ctx)

		ed.Forget("a")
		store.setErr(nil)
		if err := ed.RetryPending(ctx); err != nil {
			t.Fatalf("RetryPending: %v", err)
		}
		if n := store.count("a"); n != 0 {
			t.Errorf("forgotten edits were written %d times", n)
		}
	})
}

func TestEditorSync_FlushAlwaysWrites(t *testing.T) {
	store := &recordingStore{}
	ed := NewEditorSync(store, 0, time.Second, testLogger())
	ctx := context.Background()

	if _, err := ed.Flush(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("flush with nothing open: expected validation error, got %v", err)
	}

	if err := ed.Open(ctx, openRequest("r1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	saved, err := ed.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saved.ID != "r1" || store.count("r1") != 1 {
		t.Errorf("flush saved %+v, writes %d", saved, store.count("r1"))
	}
}

func TestEditorSync_DiscardDoesNotWrite(t *testing.T) {
	store := &recordingStore{}
	ed := NewEditorSync(store, 0, time.Second, testLogger())
	ctx := context.Background()
	if err := ed.Open(ctx, openRequest("r1")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ed.LoadSnapshot(models.RequestSnapshot{Method: "PUT"}); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	ed.Discard()
	if err := ed.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := store.count("r1"); n != 0 {
		t.Errorf("discarded edits were written %d times", n)
	}
	if err := ed.SetURL(ctx, "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("edit with nothing open: expected validation error, got %v", err)
	}
}
