package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"lumina/internal/config"
	collectionSvc "lumina/internal/domain/services/collection"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StorageBackend: "memory", HistoryMaxEntries: 5}
	a, err := Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	p, err := a.Services.Projects.CreateProject(ctx, &collectionSvc.CreateProjectRequest{Name: "P"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.RootFolderID == "" {
		t.Error("project has no root folder")
	}
}

func TestOpen_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"unknown backend", &config.Config{StorageBackend: "sqlite"}},
		{"postgres without url", &config.Config{StorageBackend: "postgres"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(context.Background(), tt.cfg, logger); err == nil {
				t.Fatal("Open succeeded, want error")
			}
		})
	}
}
