package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/log"
	"github.com/Sriram-PR/webdumper/pkg/models"
	"github.com/Sriram-PR/webdumper/pkg/utils"
)

const (
	pageKeyPrefix = "page:"      // Prefix for page URL keys in DB
	visitedDBDir  = "visited_db" // Subdirectory name within stateDir for Badger DB files
)

// BadgerStore implements VisitedStore on an on-disk BadgerDB so the visited set
// of a large crawl does not have to fit in memory. Each run starts from an empty DB.
type BadgerStore struct {
	db       *badger.DB
	log      *logrus.Entry
	keyCount atomic.Int64 // Cached key count for O(1) GetVisitedCount
}

// NewBadgerStore wipes and opens the visited DB for host under stateDir.
func NewBadgerStore(stateDir, host string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(stateDir, utils.SanitizeFilename(host)+"_"+visitedDBDir)

	if err := os.RemoveAll(dbPath); err != nil {
		// Badger may still be able to open over leftovers
		logger.Errorf("Failed to remove existing state directory %s: %v", dbPath, err)
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %w", utils.ErrFilesystem, dbPath, err)
	}

	logger.Infof("Initializing visited URL database at: %s", dbPath)

	opts := badger.DefaultOptions(dbPath).
		WithLogger(log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %s: %w", utils.ErrDatabase, dbPath, err)
	}
	return &BadgerStore{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for transaction conflicts.
// Two claims racing on the same key make one of them fail with ErrConflict at commit;
// the retry then sees the winner's key and reports "already claimed".
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := 0; i < maxConflictRetries; i++ {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// TryClaim implements the VisitedStore interface
func (s *BadgerStore) TryClaim(url string) (bool, error) {
	key := []byte(pageKeyPrefix + url)
	value, err := json.Marshal(models.PageDBEntry{Status: models.PageStatusClaimed, LastAttempt: time.Now()})
	if err != nil {
		return false, fmt.Errorf("%w: encoding claim for '%s': %w", utils.ErrParsing, url, err)
	}

	var claimed bool
	err = s.dbUpdate(func(txn *badger.Txn) error {
		claimed = false // reset on conflict retry
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			if errSet := txn.SetEntry(badger.NewEntry(key, value)); errSet != nil {
				return errSet
			}
			claimed = true
			return nil
		}
		return errGet // nil when the key already exists
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in TryClaim: %v", err)
		return false, fmt.Errorf("%w: claiming page key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	if claimed {
		s.keyCount.Add(1)
	}
	return claimed, nil
}

// readEntry decodes the entry under key. A missing key yields (nil, nil).
func readEntry(txn *badger.Txn, key []byte) (*models.PageDBEntry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting page key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	var entry models.PageDBEntry
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: decoding page key '%s': %w", utils.ErrParsing, string(key), err)
	}
	return &entry, nil
}

// CheckPageStatus implements the VisitedStore interface
func (s *BadgerStore) CheckPageStatus(url string) (models.PageStatus, *models.PageDBEntry, error) {
	var entry *models.PageDBEntry
	err := s.db.View(func(txn *badger.Txn) error {
		var errRead error
		entry, errRead = readEntry(txn, []byte(pageKeyPrefix+url))
		return errRead
	})
	if err != nil {
		s.log.Errorf("DB View error in CheckPageStatus for '%s': %v", url, err)
		return models.PageStatusUnclaimed, nil, err
	}
	if entry == nil {
		return models.PageStatusUnclaimed, nil, nil
	}
	return entry.Status, entry, nil
}

// UpdatePageStatus implements the VisitedStore interface
func (s *BadgerStore) UpdatePageStatus(url string, entry *models.PageDBEntry) error {
	key := []byte(pageKeyPrefix + url)
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal PageDBEntry for key '%s': %w", utils.ErrParsing, string(key), err)
	}

	err = s.dbUpdate(func(txn *badger.Txn) error {
		current, errRead := readEntry(txn, key)
		if errRead != nil {
			return errRead
		}
		from := models.PageStatusUnclaimed
		if current != nil {
			from = current.Status
		}
		if !from.CanTransitionTo(entry.Status) {
			return fmt.Errorf("%w: '%s' %s -> %s", ErrInvalidTransition, url, from, entry.Status)
		}
		return txn.SetEntry(badger.NewEntry(key, entryBytes))
	})
	if errors.Is(err, ErrInvalidTransition) {
		return err
	}
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in UpdatePageStatus: %v", err)
		return fmt.Errorf("%w: failed setting page status for key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	s.log.Debugf("Updated page status for key '%s' to '%s'", string(key), entry.Status)
	return nil
}

// GetVisitedCount implements the VisitedStore interface.
// Returns the cached key count maintained by atomic increments on claims.
func (s *BadgerStore) GetVisitedCount() (int, error) {
	return int(s.keyCount.Load()), nil
}

// RunGC runs BadgerDB's value log garbage collection every interval until ctx is done.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.db.IsClosed() {
				s.log.Debug("DB GC: database closed, skipping cycle.")
				continue
			}
			var err error
			for err == nil {
				err = s.db.RunValueLogGC(0.5)
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Errorf("BadgerDB GC error: %v", err)
			}
		case <-ctx.Done():
			s.log.Debugf("Stopping BadgerDB GC: %v", ctx.Err())
			return
		}
	}
}

// WriteVisitedLog writes every claimed URL with its final status to filePath, one per line.
func (s *BadgerStore) WriteVisitedLog(ctx context.Context, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("%w: create visited log '%s': %w", utils.ErrFilesystem, filePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	var writeErr error
	written := 0

	iterErr := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(pageKeyPrefix)

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			url := string(bytes.TrimPrefix(item.KeyCopy(nil), prefix))

			status := models.PageStatusClaimed
			_ = item.Value(func(val []byte) error {
				var entry models.PageDBEntry
				if json.Unmarshal(val, &entry) == nil {
					status = entry.Status
				}
				return nil
			})

			if _, err := fmt.Fprintf(writer, "%s\t%s\n", url, status); err != nil && writeErr == nil {
				writeErr = err
			}
			written++
		}
		return nil
	})

	if flushErr := writer.Flush(); flushErr != nil && writeErr == nil {
		writeErr = flushErr
	}
	if iterErr != nil {
		return iterErr
	}
	if writeErr != nil {
		return fmt.Errorf("%w: writing visited log '%s': %w", utils.ErrFilesystem, filePath, writeErr)
	}
	s.log.Infof("Wrote %d URLs to visited log: %s", written, filePath)
	return nil
}

// Close implements the VisitedStore interface
func (s *BadgerStore) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: closing visited DB: %w", utils.ErrDatabase, err)
	}
	s.log.Debug("Visited DB closed.")
	return nil
}
