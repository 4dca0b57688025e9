package clv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"github.com/shopspring/decimal"

	"github.com/wagerlab/linehawk/pkg/edge"
)

// PostgresStore persists bet records in Postgres for the sync daemon.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects with the given DSN and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("clv: open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("clv: ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Migrate creates the bets table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bets (
			id                TEXT PRIMARY KEY,
			game_id           TEXT NOT NULL,
			league            TEXT NOT NULL,
			week              INT NOT NULL,
			side              TEXT NOT NULL,
			line_home         DOUBLE PRECISION NOT NULL,
			price             INT NOT NULL,
			stake_fraction    NUMERIC(8,6) NOT NULL,
			tier              TEXT NOT NULL,
			placed_at         TIMESTAMPTZ NOT NULL,
			closing_line_home DOUBLE PRECISION,
			closing_price     INT,
			closed_at         TIMESTAMPTZ,
			graded            BOOLEAN NOT NULL DEFAULT FALSE,
			clv_points        DOUBLE PRECISION,
			clv_cents         DOUBLE PRECISION,
			result            TEXT NOT NULL DEFAULT 'pending'
		);
		CREATE INDEX IF NOT EXISTS bets_league_week ON bets (league, week);
		CREATE INDEX IF NOT EXISTS bets_ungraded ON bets (league) WHERE NOT graded;
	`)
	if err != nil {
		return fmt.Errorf("clv: migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec *BetRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bets (id, game_id, league, week, side, line_home, price, stake_fraction, tier, placed_at, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.GameID, rec.League, rec.Week, string(rec.Side), rec.LineHome,
		rec.Price, rec.Stake.String(), rec.Tier, rec.PlacedAt, string(rec.Result))
	if err != nil {
		return fmt.Errorf("clv: insert bet %s: %w", rec.ID, err)
	}
	return nil
}

// Grade computes the CLV columns in-process and writes them in one
// statement guarded by the graded flag, so a concurrent sync cannot grade
// the same bet twice.
func (s *PostgresStore) Grade(ctx context.Context, id string, closeLineHome float64, closePrice int, closedAt time.Time) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := rec.Grade(closeLineHome, closePrice, closedAt); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bets
		SET closing_line_home = $2, closing_price = $3, closed_at = $4,
		    clv_points = $5, clv_cents = $6, graded = TRUE
		WHERE id = $1 AND NOT graded
	`, id, closeLineHome, closePrice, closedAt, rec.ClvPoints, rec.ClvCents)
	if err != nil {
		return fmt.Errorf("clv: grade bet %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("clv: bet %s already graded", id)
	}
	return nil
}

func (s *PostgresStore) Settle(ctx context.Context, id string, result Result) error {
	if result == ResultPending {
		return fmt.Errorf("clv: cannot settle bet %s back to pending", id)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE bets SET result = $2 WHERE id = $1`, id, string(result))
	if err != nil {
		return fmt.Errorf("clv: settle bet %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const betColumns = `id, game_id, league, week, side, line_home, price, stake_fraction, tier, placed_at,
	closing_line_home, closing_price, closed_at, graded, clv_points, clv_cents, result`

func (s *PostgresStore) Get(ctx context.Context, id string) (*BetRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id)
	rec, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

func (s *PostgresStore) List(ctx context.Context, league string, week int) ([]*BetRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE league = $1 AND week = $2
		ORDER BY placed_at
	`, league, week)
	if err != nil {
		return nil, fmt.Errorf("clv: list bets: %w", err)
	}
	defer rows.Close()
	return collectBets(rows)
}

func (s *PostgresStore) Ungraded(ctx context.Context, league string) ([]*BetRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE league = $1 AND NOT graded
		ORDER BY placed_at
	`, league)
	if err != nil {
		return nil, fmt.Errorf("clv: list ungraded bets: %w", err)
	}
	defer rows.Close()
	return collectBets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(row rowScanner) (*BetRecord, error) {
	var (
		rec       BetRecord
		side      string
		stake     string
		result    string
		closeLine sql.NullFloat64
		closeP    sql.NullInt64
		closedAt  sql.NullTime
		points    sql.NullFloat64
		cents     sql.NullFloat64
	)
	err := row.Scan(&rec.ID, &rec.GameID, &rec.League, &rec.Week, &side, &rec.LineHome,
		&rec.Price, &stake, &rec.Tier, &rec.PlacedAt,
		&closeLine, &closeP, &closedAt, &rec.Graded, &points, &cents, &result)
	if err != nil {
		return nil, err
	}
	rec.Side = edge.Side(side)
	rec.Result = Result(result)
	rec.Stake, err = decimal.NewFromString(stake)
	if err != nil {
		return nil, fmt.Errorf("clv: stake column: %w", err)
	}
	if closeLine.Valid {
		rec.ClosingLineHome = closeLine.Float64
	}
	if closeP.Valid {
		rec.ClosingPrice = int(closeP.Int64)
	}
	if closedAt.Valid {
		rec.ClosedAt = closedAt.Time
	}
	if points.Valid {
		rec.ClvPoints = points.Float64
	}
	if cents.Valid {
		rec.ClvCents = cents.Float64
	}
	return &rec, nil
}

func collectBets(rows *sql.Rows) ([]*BetRecord, error) {
	var out []*BetRecord
	for rows.Next() {
		rec, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
