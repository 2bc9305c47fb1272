package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
	"github.com/recallhq/recall/internal/services/crawler"
	"github.com/recallhq/recall/internal/services/embeddings"
	"github.com/recallhq/recall/internal/services/indexer"
	"github.com/recallhq/recall/internal/services/retriever"
	"github.com/recallhq/recall/internal/services/scheduler"
	"github.com/recallhq/recall/internal/services/splitter"
	"github.com/recallhq/recall/internal/services/watcher"
	"github.com/recallhq/recall/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	ctx       context.Context
	cancelCtx context.CancelFunc

	StorageManager   interfaces.StorageManager
	EmbeddingService interfaces.EmbeddingService
	Splitter         *splitter.Splitter

	NoteIndexer interfaces.NoteIndexer
	TodoIndexer interfaces.TodoIndexer
	WebIndexer  interfaces.WebIndexer
	Retriever   interfaces.Retriever

	Watcher   *watcher.Service
	Scheduler *scheduler.Service
}

// New wires the application from configuration. Background services (watcher,
// scheduler) are constructed but not started; call StartBackground for that.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	if err := app.initServices(); err != nil {
		cancel()
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) initServices() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager
	vectorStorage := storageManager.VectorStorage()

	embedder, err := embeddings.NewFromConfig(a.ctx, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embedding service: %w", err)
	}
	a.EmbeddingService = embedder

	split, err := splitter.New(a.Config.Splitter.ChunkSize, a.Config.Splitter.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("failed to initialize splitter: %w", err)
	}
	a.Splitter = split

	noteIndexer, err := indexer.NewNotesService(vectorStorage, embedder, split, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize note indexer: %w", err)
	}
	a.NoteIndexer = noteIndexer

	todoIndexer, err := indexer.NewTodosService(vectorStorage, embedder, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize todo indexer: %w", err)
	}
	a.TodoIndexer = todoIndexer

	fetcher := crawler.NewFetcher(&a.Config.Crawler, a.Logger)
	extractor := crawler.NewExtractor(a.Logger)
	webIndexer, err := indexer.NewWebService(vectorStorage, embedder, split, fetcher, extractor, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize web indexer: %w", err)
	}
	a.WebIndexer = webIndexer

	a.Retriever = retriever.NewService(vectorStorage, embedder, &a.Config.Retriever, a.Logger)

	if a.Config.Notes.Watch && a.Config.Notes.Dir != "" {
		watchService, err := watcher.NewService(noteIndexer, a.Config.Notes.Dir, a.Config.Notes.Extensions, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize notes watcher: %w", err)
		}
		a.Watcher = watchService
	}

	if a.Config.Notes.ReindexSchedule != "" && a.Config.Notes.Dir != "" {
		a.Scheduler = scheduler.NewService(noteIndexer, a.Config.Notes.Dir, a.Config.Notes.Extensions, a.Logger)
	}

	return nil
}

// StartBackground launches the notes watcher and re-index scheduler when
// configured.
func (a *App) StartBackground() error {
	if a.Watcher != nil {
		if err := a.Watcher.Start(a.ctx); err != nil {
			return fmt.Errorf("failed to start notes watcher: %w", err)
		}
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Start(a.ctx, a.Config.Notes.ReindexSchedule); err != nil {
			return fmt.Errorf("failed to start re-index scheduler: %w", err)
		}
	}
	return nil
}

// Close stops background services and releases storage
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Watcher != nil {
		if err := a.Watcher.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop notes watcher")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
