package backend

import (
	"context"
	"fmt"

	applog "spendwise/internal/log"
	"spendwise/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateSlot implements Factory.CreateSlot
func (f *DefaultFactory) CreateSlot(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileSlot(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteSlot(ctx, config)
	case MemoryBackend:
		return f.createMemorySlot(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileSlot(ctx context.Context, config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	slot, err := storage.NewFileSlot(dataDir, config.SlotName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file slot: %w", err)
	}

	f.logger.DebugContext(ctx, "Initialized file backend",
		applog.FieldBackend, config.Type.String(),
		applog.FieldSlot, config.SlotName,
		"path", slot.Path())

	return &Result{Slot: slot, Cleanup: slot.Close}, nil
}

func (f *DefaultFactory) createSQLiteSlot(ctx context.Context, config Config) (*Result, error) {
	slot, err := storage.NewSQLiteSlot(config.SQLiteDBPath, config.SlotName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
	}

	f.logger.DebugContext(ctx, "Initialized SQLite backend",
		applog.FieldBackend, config.Type.String(),
		applog.FieldSlot, config.SlotName,
		"db_path", config.SQLiteDBPath)

	return &Result{Slot: slot, Cleanup: slot.Close}, nil
}

func (f *DefaultFactory) createMemorySlot(ctx context.Context, config Config) (*Result, error) {
	f.logger.WarnContext(ctx, "Using memory backend, the ledger is lost on exit",
		applog.FieldBackend, config.Type.String(),
		applog.FieldSlot, config.SlotName)

	return &Result{Slot: storage.NewMemorySlot(), Cleanup: nil}, nil
}
