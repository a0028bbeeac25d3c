package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

func TestHistoryService_RetentionAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	req := env.createRequest(t, p.RootFolderID, "r")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		entry := &models.HistoryEntry{
			RequestID: req.ID,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Request:   req.Snapshot(),
			Response:  models.ResponseSnapshot{StatusCode: 200 + i},
		}
		if err := env.svc.History.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("AppendHistory %d: %v", i, err)
		}
	}

	entries, err := env.svc.History.ListHistory(ctx, req.ID, 100)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(entries) != env.cfg.HistoryMaxEntries {
		t.Fatalf("expected %d retained entries, got %d", env.cfg.HistoryMaxEntries, len(entries))
	}
	if entries[0].Response.StatusCode != 207 {
		t.Errorf("expected newest first, got status %d", entries[0].Response.StatusCode)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("entries out of order at %d", i)
		}
	}

	limited, _ := env.svc.History.ListHistory(ctx, req.ID, 2)
	if len(limited) != 2 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

func TestHistoryService_TruncatesBody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	req := env.createRequest(t, p.RootFolderID, "r")

	body := "0123456789abcdef-tail"
	entry := &models.HistoryEntry{
		RequestID: req.ID,
		Response:  models.ResponseSnapshot{StatusCode: 200, Body: body, SizeBytes: int64(len(body))},
	}
	if err := env.svc.History.AppendHistory(ctx, entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	entries, _ := env.svc.History.ListHistory(ctx, req.ID, 1)
	if got := entries[0].Response.Body; got != "0123456789abcdef" {
		t.Errorf("body = %q", got)
	}
	if entries[0].Response.SizeBytes != int64(len(body)) {
		t.Errorf("size_bytes should keep the original size, got %d", entries[0].Response.SizeBytes)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be filled in")
	}
}

func TestHistoryService_RejectsBadEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	req := env.createRequest(t, p.RootFolderID, "r")

	if err := env.svc.History.AppendHistory(ctx, &models.HistoryEntry{RequestID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown request: expected not found, got %v", err)
	}
	bad := &models.HistoryEntry{RequestID: req.ID, Response: models.ResponseSnapshot{ElapsedMS: -1}}
	if err := env.svc.History.AppendHistory(ctx, bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative elapsed: expected validation error, got %v", err)
	}
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"héllo", 2, "h"},
	}
	for _, tt := range tests {
		if got := truncateBody(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateBody(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
