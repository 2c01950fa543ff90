package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"
)

// visitRetention is how long page views are kept.
const visitRetention = 365 * 24 * time.Hour

// VisitStats are aggregate page-view counts. No per-visitor data leaves the
// database.
type VisitStats struct {
	TotalVisits    int64 `json:"total_visits"`
	UniqueVisitors int64 `json:"unique_visitors"`
	VisitsToday    int64 `json:"visits_today"`
	VisitsThisWeek int64 `json:"visits_this_week"`
}

// VisitLog is a privacy-conscious page-view log backed by sqlite. Raw IP
// addresses are never stored, only a salted hash.
type VisitLog struct {
	db     *sql.DB
	salt   string
	logger *slog.Logger
	now    func() time.Time

	pending sync.WaitGroup
}

// OpenVisitLog opens (or creates) the visit log at dsn and drops rows past
// the retention window.
func OpenVisitLog(ctx context.Context, dsn string, logger *slog.Logger) (*VisitLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open visit log: %w", err)
	}
	// sqlite serialises writers anyway; one connection also keeps
	// ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	v := &VisitLog{
		db:     db,
		salt:   newSalt(),
		logger: logger,
		now:    time.Now,
	}
	if err := v.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	removed, err := v.Cleanup(ctx, visitRetention)
	if err != nil {
		logger.Warn("visit log cleanup failed", "error", err)
	} else if removed > 0 {
		logger.Info("visit log cleanup", "removed", removed)
	}
	return v, nil
}

func (v *VisitLog) migrate(ctx context.Context) error {
	createVisits := `
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT,
		path TEXT,
		visited_at INTEGER NOT NULL
	)`
	if _, err := v.db.ExecContext(ctx, createVisits); err != nil {
		return fmt.Errorf("create visits table: %w", err)
	}

	createIndex := `CREATE INDEX IF NOT EXISTS visits_visited_at ON visits (visited_at)`
	if _, err := v.db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("create visits index: %w", err)
	}
	return nil
}

func newSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("generate visit salt: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// hashIP is stable per IP for the life of the process.
func (v *VisitLog) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + v.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores one page view.
func (v *VisitLog) Record(ctx context.Context, ip, userAgent, path string) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO visits (hashed_ip, user_agent, path, visited_at) VALUES (?, ?, ?, ?)`,
		v.hashIP(ip), userAgent, path, v.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Middleware records shell page loads in the background. Asset, API and
// fragment requests are ignored, as are clients sending "DNT: 1".
func (v *VisitLog) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" || c.Request.URL.Path != "/" || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, userAgent, path := c.ClientIP(), c.GetHeader("User-Agent"), c.Request.URL.Path
		v.pending.Add(1)
		go func() {
			defer v.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := v.Record(ctx, ip, userAgent, path); err != nil {
				v.logger.Error("error recording visit", "error", err)
			}
		}()
		c.Next()
	}
}

// Cleanup deletes visits older than maxAge and returns how many were removed.
func (v *VisitLog) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := v.now().Add(-maxAge).Unix()
	result, err := v.db.ExecContext(ctx, `DELETE FROM visits WHERE visited_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clean up visits: %w", err)
	}
	return result.RowsAffected()
}

// Stats returns aggregate counts. "Today" starts at UTC midnight.
func (v *VisitLog) Stats(ctx context.Context) (VisitStats, error) {
	now := v.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Unix()
	weekAgo := now.Add(-7 * 24 * time.Hour).Unix()

	var stats VisitStats
	err := v.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT hashed_ip),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0)
		FROM visits`, startOfDay, weekAgo,
	).Scan(&stats.TotalVisits, &stats.UniqueVisitors, &stats.VisitsToday, &stats.VisitsThisWeek)
	if err != nil {
		return VisitStats{}, fmt.Errorf("query visit stats: %w", err)
	}
	return stats, nil
}

// Close waits for in-flight writes and closes the database.
func (v *VisitLog) Close() error {
	v.pending.Wait()
	return v.db.Close()
}
