package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ReportCache stores rendered weekly reports in badger with a TTL.
// The cache is non-authoritative: a miss or a corrupt entry means the
// caller recomputes, it never means the report is unavailable.
type ReportCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *zap.Logger
}

func OpenReportCache(path string, ttl time.Duration, logger *zap.Logger) (*ReportCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open report cache: %w", err)
	}

	return &ReportCache{db: db, ttl: ttl, logger: logger}, nil
}

func (c *ReportCache) Close() error {
	return c.db.Close()
}

func reportKey(userID string, weekStart time.Time) []byte {
	return []byte("report:" + userID + ":" + weekStart.Format("2006-01-02"))
}

// Get returns the cached report for the user and week start, or
// (nil, nil) on a miss.
func (c *ReportCache) Get(userID string, weekStart time.Time) (*WeeklyReport, error) {
	var report *WeeklyReport
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reportKey(userID, weekStart))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var r WeeklyReport
			if err := json.Unmarshal(val, &r); err != nil {
				return err
			}
			report = &r
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		// Treat a decode failure as a miss; the entry will be
		// overwritten on the next Put.
		c.logger.Warn("report cache read failed", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return report, nil
}

// Put stores the report under its user and week start with the cache
// TTL.
func (c *ReportCache) Put(report *WeeklyReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(reportKey(report.UserID, report.Window.Start), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// Invalidate drops the cached report for one user and week, if any.
// Called when a reading inside the window is created or changed.
func (c *ReportCache) Invalidate(userID string, weekStart time.Time) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(reportKey(userID, weekStart))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
