package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/bomgraph/internal/model"
)

// Config holds configuration for a Badger edge store.
type Config struct {
	// Path is the directory for Badger files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives Badger's internal log lines. Nil disables them.
	Logger *slog.Logger

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio before a value log file
	// is rewritten.
	GCDiscardRatio float64
}

// DefaultConfig returns the configuration for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store is a model.EdgeStore on top of Badger.
type Store struct {
	db     *badger.DB
	locks  *tenantLocks
	logger *slog.Logger

	stopGC chan struct{}
	gcDone chan struct{}
}

var _ model.EdgeStore = (*Store)(nil)

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens (or creates) a Badger edge store.
// Starts value log GC when cfg.GCInterval is positive and the store is on disk.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{db: db, locks: newTenantLocks(), logger: logger}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

// Close stops value log GC and closes the database.
func (s *Store) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.gcDone
		s.stopGC = nil
	}
	return s.db.Close()
}

// Update runs fn in a Badger read-write transaction scoped to tenantID while
// holding the tenant's write lock. An error from fn discards the transaction
// and is returned unchanged.
func (s *Store) Update(ctx context.Context, tenantID string, fn func(model.EdgeTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	tenantID = model.NormalizeID(tenantID)

	unlock := s.locks.lock(tenantID)
	defer unlock()

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(&edgeTxn{txn: txn, tenantID: tenantID}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// View runs fn in a read-only snapshot scoped to tenantID.
func (s *Store) View(ctx context.Context, tenantID string, fn func(model.EdgeReader) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin view: %w", err)
	}
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	return fn(&edgeTxn{txn: txn, tenantID: model.NormalizeID(tenantID)})
}

// Tenants returns every tenant that currently has an edge, sorted.
func (s *Store) Tenants(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	tenants := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := tenantPrefix()
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			tenants = append(tenants, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer close(s.gcDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite means nothing was worth collecting.
			err := s.db.RunValueLogGC(ratio)
			if err == nil {
				s.logger.Debug("badger value log GC completed")
			} else if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("badger value log GC error", slog.String("error", err.Error()))
			}
		}
	}
}
