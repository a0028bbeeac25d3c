package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

type requestStore interface {
	UpdateRequest(ctx context.Context, id string, fields models.RequestFields) (*models.Request, error)
}

// EditorSync holds the open request's fields and writes them back as a full
// snapshot on every change, on every autosave tick, and before every send. A
// failed write keeps the edits and the dirty flag; the next trigger retries it.
// Edits that could not be written when their request was closed are parked and
// retried on later ticks and closes until a write succeeds.
type EditorSync struct {
	store    requestStore
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger

	// persistMu orders writes so an older snapshot never lands after a newer one
	persistMu sync.Mutex

	mu      sync.Mutex
	id      string
	draft   models.RequestFields
	headers *KVTable
	params  *KVTable
	dirty   bool
	edits   uint64
	gen     uint64
	stop    context.CancelFunc
	lastErr error
	onError func(error)
	pending map[string]models.RequestFields
}

func NewEditorSync(store requestStore, interval, timeout time.Duration, logger *slog.Logger) *EditorSync {
	return &EditorSync{
		store:    store,
		timeout:  timeout,
		interval: interval,
		logger:   logger,
		pending:  make(map[string]models.RequestFields),
	}
}

// OnError registers a callback for failed writes
func (e *EditorSync) OnError(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onError = fn
}

// Open closes the current request and starts editing req. Parked edits of req
// are restored over the stored fields.
func (e *EditorSync) Open(ctx context.Context, req *models.Request) error {
	closeErr := e.Close(ctx)

	e.mu.Lock()
	fields := req.Fields()
	parked, ok := e.pending[req.ID]
	if ok {
		fields = parked
		delete(e.pending, req.ID)
	}
	e.id = req.ID
	e.draft = fields
	e.headers = NewKVTable(fields.Headers)
	e.params = NewKVTable(fields.Params)
	e.dirty = ok
	e.lastErr = nil
	e.startTimerLocked()
	e.mu.Unlock()

	return closeErr
}

// Close stops the autosave timer and writes pending edits. Edits that fail to
// write are parked for a later retry.
func (e *EditorSync) Close(ctx context.Context) error {
	e.mu.Lock()
	e.stopTimerLocked()
	open := e.id != ""
	dirty := e.dirty
	e.mu.Unlock()

	var err error
	if open && dirty {
		_, err = e.persist(ctx, false, 0)
	}

	e.mu.Lock()
	if err != nil && e.id != "" {
		e.pending[e.id] = e.snapshotLocked()
	}
	e.clearLocked()
	e.mu.Unlock()

	if retryErr := e.RetryPending(ctx); err == nil {
		err = retryErr
	}
	return err
}

// Discard stops editing without writing, for a request that no longer exists
func (e *EditorSync) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	delete(e.pending, e.id)
	e.clearLocked()
}

// Forget drops parked edits of a request that no longer exists
func (e *EditorSync) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, id)
}

// Pending lists the requests whose edits are parked
func (e *EditorSync) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.pending))
	for id := range e.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RetryPending writes every parked draft. A request that no longer exists is
// dropped; other failures stay parked and the first one is returned.
func (e *EditorSync) RetryPending(ctx context.Context) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	var first error
	for _, id := range e.Pending() {
		e.mu.Lock()
		fields, ok := e.pending[id]
		e.mu.Unlock()
		if !ok {
			continue
		}

		_, err := call(ctx, e.timeout, "save request", func(ctx context.Context) (*models.Request, error) {
			return e.store.UpdateRequest(ctx, id, fields)
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			e.logger.Warn("parked request save failed", "request_id", id, "error", err)
			if first == nil {
				first = err
			}
			continue
		}
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
	}
	return first
}

func (e *EditorSync) clearLocked() {
	e.id = ""
	e.draft = models.RequestFields{}
	e.headers = nil
	e.params = nil
	e.dirty = false
}

func (e *EditorSync) startTimerLocked() {
	e.gen++
	if e.interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.stop = cancel
	go e.autosave(ctx, e.gen)
}

func (e *EditorSync) stopTimerLocked() {
	e.gen++
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
}

func (e *EditorSync) autosave(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = e.persist(ctx, true, gen)
			_ = e.RetryPending(ctx)
		}
	}
}

// RequestID is the open request, or "" when nothing is open
func (e *EditorSync) RequestID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

func (e *EditorSync) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// LastError is the most recent failed write, cleared by the next success
func (e *EditorSync) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Fields returns the fields as they would be written now
func (e *EditorSync) Fields() models.RequestFields {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *EditorSync) Headers() []KVRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.headers == nil {
		return nil
	}
	return e.headers.Rows()
}

func (e *EditorSync) Params() []KVRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.params == nil {
		return nil
	}
	return e.params.Rows()
}

func (e *EditorSync) snapshotLocked() models.RequestFields {
	f := e.draft
	if e.headers != nil {
		f.Headers = e.headers.Pairs()
	}
	if e.params != nil {
		f.Params = e.params.Pairs()
	}
	return f
}

func (e *EditorSync) SetName(ctx context.Context, name string) error {
	return e.change(ctx, func() error { e.draft.Name = name; return nil })
}

func (e *EditorSync) SetMethod(ctx context.Context, method string) error {
	return e.change(ctx, func() error { e.draft.Method = method; return nil })
}

func (e *EditorSync) SetURL(ctx context.Context, url string) error {
	return e.change(ctx, func() error { e.draft.URL = url; return nil })
}

func (e *EditorSync) SetBody(ctx context.Context, raw string) error {
	return e.change(ctx, func() error { e.draft.Body = models.RawBody(raw); return nil })
}

func (e *EditorSync) SetAuth(ctx context.Context, auth models.Auth) error {
	return e.change(ctx, func() error { e.draft.Auth = models.AuthOrNone(auth); return nil })
}

func (e *EditorSync) SetDocumentation(ctx context.Context, doc string) error {
	return e.change(ctx, func() error { e.draft.Documentation = doc; return nil })
}

func (e *EditorSync) SetHeader(ctx context.Context, row int, key, value string) error {
	return e.change(ctx, func() error { return e.headers.Set(row, key, value) })
}

func (e *EditorSync) RemoveHeader(ctx context.Context, row int) error {
	return e.change(ctx, func() error { return e.headers.Remove(row) })
}

func (e *EditorSync) SetParam(ctx context.Context, row int, key, value string) error {
	return e.change(ctx, func() error { return e.params.Set(row, key, value) })
}

func (e *EditorSync) RemoveParam(ctx context.Context, row int) error {
	return e.change(ctx, func() error { return e.params.Remove(row) })
}

// LoadSnapshot overwrites the editable request fields with a history snapshot.
// Nothing is written; the next change or tick persists it.
func (e *EditorSync) LoadSnapshot(snap models.RequestSnapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.id == "" {
		return &domain.ValidationError{Message: "no request open"}
	}
	e.draft.Method = snap.Method
	e.draft.URL = snap.URL
	e.draft.Body = snap.Body
	e.headers = NewKVTable(snap.Headers)
	e.params = NewKVTable(snap.Params)
	e.dirty = true
	e.edits++
	return nil
}

// change applies edit to the draft and writes the result
func (e *EditorSync) change(ctx context.Context, edit func() error) error {
	e.mu.Lock()
	if e.id == "" {
		e.mu.Unlock()
		return &domain.ValidationError{Message: "no request open"}
	}
	if err := edit(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.dirty = true
	e.edits++
	e.mu.Unlock()

	_, err := e.persist(ctx, false, 0)
	return err
}

// Flush writes the current fields even when nothing changed and returns the
// stored request. Sending always goes through here first.
func (e *EditorSync) Flush(ctx context.Context) (*models.Request, error) {
	return e.persist(ctx, true, 0)
}

// persist writes the draft. Without force it only writes when dirty. A non-zero
// gen ties the write to one autosave timer and skips it once that timer is stopped.
func (e *EditorSync) persist(ctx context.Context, force bool, gen uint64) (*models.Request, error) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	if e.id == "" {
		e.mu.Unlock()
		if force {
			return nil, &domain.ValidationError{Message: "no request open"}
		}
		return nil, nil
	}
	if (gen != 0 && gen != e.gen) || (!force && !e.dirty) {
		e.mu.Unlock()
		return nil, nil
	}
	id := e.id
	edits := e.edits
	fields := e.snapshotLocked()
	e.mu.Unlock()

	saved, err := call(ctx, e.timeout, "save request", func(ctx context.Context) (*models.Request, error) {
		return e.store.UpdateRequest(ctx, id, fields)
	})

	e.mu.Lock()
	if err != nil {
		e.lastErr = err
		onError := e.onError
		e.mu.Unlock()
		e.logger.Warn("request save failed", "request_id", id, "error", err)
		if onError != nil {
			onError(err)
		}
		return nil, err
	}
	if e.id == id && e.edits == edits {
		e.dirty = false
	}
	e.lastErr = nil
	e.mu.Unlock()

	e.logger.Debug("request saved", "request_id", id, "forced", force)
	return saved, nil
}
