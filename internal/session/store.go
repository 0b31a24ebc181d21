// Package session persists analysis sessions in an embedded Badger store.
// A session accumulates datasets across calls: the resolved symbol is set
// exactly once, and a failed fetch never clobbers data that an earlier
// fetch stored successfully.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/seenimoa/tickerlens/pkg/models"
)

// ErrSessionNotFound is returned when the session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrSymbolConflict is returned when a session that already resolved a
// symbol is asked to adopt a different one. Re-resolving to the same ticker
// is a no-op, not a conflict.
var ErrSymbolConflict = errors.New("session symbol already set")

// Store is a durable session store backed by badgerhold.
type Store struct {
	db     *badgerhold.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-session write locks
}

// Open opens (or creates) the store at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // badger's own logger is too chatty, slog covers it

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	logger.Debug("session store opened", "path", path)
	return &Store{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sessionLock returns the write lock for one session, creating it on first
// use. Writes to different sessions never contend.
func (s *Store) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create starts a new session for the given raw query.
func (s *Store) Create(ctx context.Context, query string) (*models.SessionRecord, error) {
	now := time.Now().UTC()
	record := &models.SessionRecord{
		ID:        uuid.NewString(),
		Query:     query,
		Datasets:  make(map[models.DatasetKind]models.DatasetResult),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Insert(record.ID, record); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.logger.Debug("session created", "session", record.ID, "query", query)
	return record, nil
}

// Get returns the session by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.SessionRecord, error) {
	var record models.SessionRecord
	if err := s.db.Get(id, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &record, nil
}

// SetSymbol records the resolved symbol and the resolution trail that led
// to it. A session's symbol is immutable once set: setting the same ticker
// again succeeds silently, a different ticker is ErrSymbolConflict.
func (s *Store) SetSymbol(ctx context.Context, id string, sym *models.Symbol, trail []string) error {
	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.Symbol != nil {
		if record.Symbol.Ticker == sym.Ticker {
			return nil
		}
		return fmt.Errorf("%w: %s (attempted %s)", ErrSymbolConflict, record.Symbol.Ticker, sym.Ticker)
	}

	record.Symbol = sym
	record.ResolutionTrail = trail
	record.UpdatedAt = time.Now().UTC()
	if err := s.db.Update(id, record); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	s.logger.Debug("session symbol set", "session", id, "ticker", sym.Ticker)
	return nil
}

// PutDataset stores one dataset result. A failure never overwrites a
// previously stored success for the same kind; the stale-but-good data wins
// and the failure is only logged. Successes always overwrite.
func (s *Store) PutDataset(ctx context.Context, id string, result models.DatasetResult) error {
	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing, ok := record.Datasets[result.Kind]; ok && existing.OK() && !result.OK() {
		s.logger.Warn("keeping stored dataset over failed refetch",
			"session", id,
			"kind", result.Kind,
			"stored_at", existing.FetchedAt)
		return nil
	}

	if record.Datasets == nil {
		record.Datasets = make(map[models.DatasetKind]models.DatasetResult)
	}
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now().UTC()
	}
	record.Datasets[result.Kind] = result
	record.UpdatedAt = time.Now().UTC()

	if err := s.db.Update(id, record); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// List returns sessions ordered by most recent activity.
func (s *Store) List(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("UpdatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.SessionRecord
	if err := s.db.Find(&records, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}
