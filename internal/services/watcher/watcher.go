package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/interfaces"
)

const debounceDelay = 500 * time.Millisecond

// Service watches the notes directory and keeps the notes index in sync with
// file changes. Writes are debounced so editors that save in several steps
// trigger a single re-index.
type Service struct {
	indexer    interfaces.NoteIndexer
	dir        string
	extensions []string
	logger     arbor.ILogger
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	pending    map[string]*time.Timer
	done       chan struct{}
	closeOnce  sync.Once
}

// NewService creates a notes directory watcher
func NewService(indexer interfaces.NoteIndexer, dir string, extensions []string, logger arbor.ILogger) (*Service, error) {
	if indexer == nil {
		return nil, fmt.Errorf("indexer is required")
	}
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if len(extensions) == 0 {
		extensions = []string{".md"}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Service{
		indexer:    indexer,
		dir:        dir,
		extensions: extensions,
		logger:     logger,
		watcher:    fsWatcher,
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins processing events until the
// context is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if err := s.addRecursive(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	s.logger.Info().Str("dir", s.dir).Msg("Watching notes directory")
	go s.loop(ctx)
	return nil
}

// Stop shuts down the watcher and cancels pending re-indexes
func (s *Service) Stop() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		for path, timer := range s.pending {
			timer.Stop()
			delete(s.pending, path)
		}
		s.mu.Unlock()
		err = s.watcher.Close()
	})
	return err
}

func (s *Service) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(ctx, event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, event fsnotify.Event) {
	// New subdirectories need their own watch
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := s.addRecursive(event.Name); err != nil {
				s.logger.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
			}
			return
		}
	}

	if !s.matches(event.Name) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		s.cancelPending(event.Name)
		if _, err := s.indexer.Delete(ctx, event.Name); err != nil {
			s.logger.Warn().Err(err).Str("file_path", event.Name).Msg("Failed to remove note from index")
		}
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		s.scheduleIndex(ctx, event.Name)
	}
}

// scheduleIndex arms (or re-arms) the debounce timer for a file
func (s *Service) scheduleIndex(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, exists := s.pending[path]; exists {
		timer.Stop()
	}
	s.pending[path] = time.AfterFunc(debounceDelay, func() {
		s.mu.Lock()
		delete(s.pending, path)
		s.mu.Unlock()
		s.indexFile(ctx, path)
	})
}

func (s *Service) cancelPending(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, exists := s.pending[path]; exists {
		timer.Stop()
		delete(s.pending, path)
	}
}

func (s *Service) indexFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		// File may have been removed between the event and the debounce firing
		if os.IsNotExist(err) {
			return
		}
		s.logger.Warn().Err(err).Str("file_path", path).Msg("Failed to read changed note")
		return
	}

	metadata := map[string]interface{}{}
	if info, err := os.Stat(path); err == nil {
		metadata["modified_at"] = info.ModTime()
	}

	if _, err := s.indexer.Index(ctx, path, string(content), metadata); err != nil {
		s.logger.Warn().Err(err).Str("file_path", path).Msg("Failed to re-index changed note")
	}
}

func (s *Service) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return s.watcher.Add(path)
	})
}

func (s *Service) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
