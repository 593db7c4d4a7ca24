package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool used for clue rows.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresProvider persists clues in Postgres. The uid column is the primary
// key, so re-scraping an episode overwrites rows instead of duplicating them.
type PostgresProvider struct {
	pool  pgxPool
	table string
}

// NewPostgresProvider creates a Postgres-backed provider using the provided config.
func NewPostgresProvider(ctx context.Context, cfg PostgresConfig) (*PostgresProvider, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "clues"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresProvider{
		pool:  pool,
		table: table,
	}, nil
}

// NewPostgresProviderWithPool constructs a provider from an existing pool
// (primarily for testing).
func NewPostgresProviderWithPool(pool pgxPool, table string) (*PostgresProvider, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "clues"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresProvider{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (p *PostgresProvider) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}

// EnsureSchema creates the clue table and its season index if they are missing.
func (p *PostgresProvider) EnsureSchema(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return fmt.Errorf("postgres provider is not configured")
	}
	createTable := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	uid TEXT PRIMARY KEY,
	episode TEXT NOT NULL,
	season TEXT NOT NULL,
	air_date BIGINT,
	category TEXT NOT NULL,
	answer TEXT NOT NULL,
	text TEXT NOT NULL,
	dollar_value TEXT NOT NULL,
	order_number TEXT NOT NULL,
	dj BOOLEAN NOT NULL DEFAULT FALSE,
	triple_stumper BOOLEAN NOT NULL DEFAULT FALSE,
	clue_row TEXT NOT NULL DEFAULT '',
	contestant TEXT NOT NULL DEFAULT ''
)`, p.table)
	if _, err := p.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create clue table: %w", err)
	}
	createIndex := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_season ON %s (season)`, p.table, p.table)
	if _, err := p.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("create season index: %w", err)
	}
	return nil
}

// UpsertClue inserts a clue row, overwriting every column when the uid exists.
func (p *PostgresProvider) UpsertClue(ctx context.Context, clue crawler.Clue) error {
	if p == nil || p.pool == nil {
		return fmt.Errorf("postgres provider is not configured")
	}
	if clue.UID == "" {
		return fmt.Errorf("clue uid is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	uid,
	episode,
	season,
	air_date,
	category,
	answer,
	text,
	dollar_value,
	order_number,
	dj,
	triple_stumper,
	clue_row,
	contestant
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (uid) DO UPDATE SET
	episode = EXCLUDED.episode,
	season = EXCLUDED.season,
	air_date = EXCLUDED.air_date,
	category = EXCLUDED.category,
	answer = EXCLUDED.answer,
	text = EXCLUDED.text,
	dollar_value = EXCLUDED.dollar_value,
	order_number = EXCLUDED.order_number,
	dj = EXCLUDED.dj,
	triple_stumper = EXCLUDED.triple_stumper,
	clue_row = EXCLUDED.clue_row,
	contestant = EXCLUDED.contestant`, p.table)

	args := []any{
		clue.UID,
		clue.Episode,
		clue.Season,
		unixOrNil(clue.AirDate),
		clue.Category,
		clue.Answer,
		clue.Text,
		clue.DollarValue,
		clue.OrderNumber,
		clue.DoubleRound,
		clue.TripleStumper,
		clue.Row,
		clue.Contestant,
	}
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert clue %s: %w", clue.UID, err)
	}
	return nil
}

// SeasonNumbers returns the distinct season tokens with persisted clues.
func (p *PostgresProvider) SeasonNumbers(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT season FROM %s`, p.table)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query season numbers: %w", err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var season string
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("scan season number: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate season numbers: %w", err)
	}
	return seasons, nil
}

// EpisodeNumbers returns the distinct episode numbers persisted for a season.
func (p *PostgresProvider) EpisodeNumbers(ctx context.Context, season string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT episode FROM %s WHERE season = $1`, p.table)
	rows, err := p.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query episode numbers: %w", err)
	}
	defer rows.Close()

	var episodes []string
	for rows.Next() {
		var episode string
		if err := rows.Scan(&episode); err != nil {
			return nil, fmt.Errorf("scan episode number: %w", err)
		}
		episodes = append(episodes, episode)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episode numbers: %w", err)
	}
	return episodes, nil
}

// SeasonEpisodes returns the distinct (episode, air date) pairs for a season,
// newest first. The secondary episode sort keeps the output stable when air
// dates collide or are unknown.
func (p *PostgresProvider) SeasonEpisodes(ctx context.Context, season string) ([]EpisodeRow, error) {
	query := fmt.Sprintf(`
SELECT DISTINCT episode, air_date
FROM %s
WHERE season = $1
ORDER BY air_date DESC NULLS LAST, episode DESC`, p.table)
	rows, err := p.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query season episodes: %w", err)
	}
	defer rows.Close()

	var episodes []EpisodeRow
	for rows.Next() {
		var (
			row     EpisodeRow
			airDate *int64
		)
		if err := rows.Scan(&row.Episode, &airDate); err != nil {
			return nil, fmt.Errorf("scan season episode: %w", err)
		}
		row.AirDate = timeOrNil(airDate)
		episodes = append(episodes, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate season episodes: %w", err)
	}
	return episodes, nil
}

// SeasonClues returns every clue for a season in export order.
func (p *PostgresProvider) SeasonClues(ctx context.Context, season string) ([]crawler.Clue, error) {
	query := fmt.Sprintf(`
SELECT uid, episode, season, air_date, category, answer, text,
	dollar_value, order_number, dj, triple_stumper, clue_row, contestant
FROM %s
WHERE season = $1
ORDER BY air_date DESC NULLS LAST, episode DESC, order_number ASC, uid ASC`, p.table)
	rows, err := p.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query season clues: %w", err)
	}
	defer rows.Close()

	var clues []crawler.Clue
	for rows.Next() {
		var (
			clue    crawler.Clue
			airDate *int64
		)
		if err := rows.Scan(
			&clue.UID,
			&clue.Episode,
			&clue.Season,
			&airDate,
			&clue.Category,
			&clue.Answer,
			&clue.Text,
			&clue.DollarValue,
			&clue.OrderNumber,
			&clue.DoubleRound,
			&clue.TripleStumper,
			&clue.Row,
			&clue.Contestant,
		); err != nil {
			return nil, fmt.Errorf("scan season clue: %w", err)
		}
		clue.AirDate = timeOrNil(airDate)
		clues = append(clues, clue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate season clues: %w", err)
	}
	return clues, nil
}

// CountClues reports the total number of persisted clues.
func (p *PostgresProvider) CountClues(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, p.table)
	var count int64
	if err := p.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clues: %w", err)
	}
	return count, nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

func timeOrNil(unix *int64) *time.Time {
	if unix == nil {
		return nil
	}
	v := time.Unix(*unix, 0).UTC()
	return &v
}
