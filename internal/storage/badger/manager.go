package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/common"
	"github.com/recallhq/recall/internal/interfaces"
)

// Manager owns the Badger connection and the storage services built on it
type Manager struct {
	db            *BadgerDB
	vectorStorage interfaces.VectorStorage
	logger        arbor.ILogger
}

// NewManager creates a storage manager backed by BadgerDB
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize badger: %w", err)
	}

	return &Manager{
		db:            db,
		vectorStorage: NewVectorStorage(db, logger),
		logger:        logger,
	}, nil
}

// VectorStorage returns the vector storage service
func (m *Manager) VectorStorage() interfaces.VectorStorage {
	return m.vectorStorage
}

// Close closes the underlying database
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage manager")
	return m.db.Close()
}
