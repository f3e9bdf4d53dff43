package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	pkgch "StockRank/pkg/clickhouse"
	applogger "StockRank/pkg/logger"
)

const barsTable = "daily_bars"

var barsSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_bars (
        date   Date,
        symbol LowCardinality(String),
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        volume Float64
    ) ENGINE = ReplacingMergeTree()
    PARTITION BY toYYYYMM(date)
    ORDER BY (symbol, date)`,
}

// CHBarStore persists and serves daily bars in ClickHouse. It backs
// both the ingest path (BarStore) and the selector's history reads
// (PriceHistory).
type CHBarStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) Init(ctx context.Context) error {
	for _, stmt := range barsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init bars schema: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) Store(ctx context.Context, bar *models.Bar) error {
	return s.StoreBatch(ctx, []*models.Bar{bar})
}

func (s *CHBarStore) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, b.Date, b.Symbol, b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (date, symbol, open, high, low, close, volume) VALUES %s",
			barsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse store_bars error",
					applogger.Int("count", end-start),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

// LoadHistory returns the daily bars for symbol in [from, to],
// ascending by date.
func (s *CHBarStore) LoadHistory(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error) {
	start := time.Now()
	const q = `
        SELECT date, symbol, open, high, low, close, volume
        FROM daily_bars FINAL
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_history query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	out := make(models.PriceSeries, 0, 512)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse load_history ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHBarStore) Close() error {
	return nil // Managed by pkg
}

var (
	_ domrepo.BarStore     = (*CHBarStore)(nil)
	_ domrepo.PriceHistory = (*CHBarStore)(nil)
)
