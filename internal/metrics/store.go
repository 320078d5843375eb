package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitmate/internal/metrics/metricsdb"
)

// GenerationMetric records the outcome of a single plan generation.
type GenerationMetric struct {
	UserID     int64
	Goals      string
	SlotConfig string
	Duration   int
	Success    bool
	Latency    time.Duration
	Timestamp  time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	queries *metricsdb.Queries
	db      *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		db:      db,
	}
}

// Record saves a metric to the database and updates the Prometheus collectors.
func (s *Store) Record(ctx context.Context, m GenerationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	ObserveGeneration(m.Success, m.Latency)

	var success int64
	if m.Success {
		success = 1
	}
	err := s.queries.InsertGenerationMetric(ctx, metricsdb.InsertGenerationMetricParams{
		UserID:     m.UserID,
		Goals:      m.Goals,
		SlotConfig: m.SlotConfig,
		Duration:   int64(m.Duration),
		Success:    success,
		LatencyMs:  m.Latency.Milliseconds(),
		RecordedAt: ts.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to record generation metric: %w", err)
	}
	return nil
}

// DailyUsage represents generation totals for a single day.
type DailyUsage struct {
	Date         string
	Generations  int
	Successes    int
	AvgLatencyMS int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).Unix()
	rows, err := s.queries.GetDailyUsage(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily usage: %w", err)
	}

	var results []DailyUsage
	for _, r := range rows {
		u := DailyUsage{
			Generations: int(r.Count),
		}

		if day, ok := r.Day.(string); ok {
			u.Date = day
		} else {
			u.Date = "Unknown"
		}

		if r.Sum.Valid {
			u.Successes = int(r.Sum.Float64)
		}
		if r.Avg.Valid {
			u.AvgLatencyMS = int(r.Avg.Float64)
		}

		results = append(results, u)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).Unix()
	n, err := s.queries.CleanupGenerationMetrics(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return n, nil
}
