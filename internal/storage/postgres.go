package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/keyurgolani/BabyNest-sub006/internal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS babies (
	id            TEXT PRIMARY KEY,
	caregiver_id  TEXT NOT NULL,
	name          TEXT NOT NULL,
	date_of_birth TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS babies_caregiver_idx ON babies (caregiver_id);
CREATE TABLE IF NOT EXISTS sleep_sessions (
	id         TEXT PRIMARY KEY,
	baby_id    TEXT NOT NULL REFERENCES babies (id) ON DELETE CASCADE,
	start_time TIMESTAMPTZ NOT NULL,
	end_time   TIMESTAMPTZ NOT NULL,
	type       TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sleep_sessions_baby_start_idx ON sleep_sessions (baby_id, start_time DESC);
`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		logger.Errorf("failed to apply schema: %v", err)
		pool.Close()
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- BabyRepository ---
func (p *PostgresStorage) SaveBaby(ctx context.Context, baby *internal.Baby) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO babies (id, caregiver_id, name, date_of_birth, created_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, date_of_birth = EXCLUDED.date_of_birth`,
		baby.ID, baby.CaregiverID, baby.Name, nullTime(baby), baby.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to upsert baby: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetBaby(ctx context.Context, id string) (*internal.Baby, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, caregiver_id, name, date_of_birth, created_at FROM babies WHERE id = $1`, id)
	b, err := scanBaby(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to load baby %s: %v", id, err)
		return nil, err
	}
	return b, nil
}

func (p *PostgresStorage) ListBabies(ctx context.Context) ([]internal.Baby, error) {
	return p.queryBabies(ctx, `SELECT id, caregiver_id, name, date_of_birth, created_at FROM babies ORDER BY created_at`)
}

func (p *PostgresStorage) ListBabiesByCaregiver(ctx context.Context, caregiverID string) ([]internal.Baby, error) {
	return p.queryBabies(ctx, `SELECT id, caregiver_id, name, date_of_birth, created_at FROM babies WHERE caregiver_id = $1 ORDER BY created_at`, caregiverID)
}

func (p *PostgresStorage) queryBabies(ctx context.Context, sql string, args ...interface{}) ([]internal.Baby, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.logger.Errorf("failed to query babies: %v", err)
		return nil, err
	}
	defer rows.Close()

	babies := []internal.Baby{}
	for rows.Next() {
		b, err := scanBaby(rows)
		if err != nil {
			p.logger.Errorf("failed to scan baby: %v", err)
			return nil, err
		}
		babies = append(babies, *b)
	}
	return babies, rows.Err()
}

func scanBaby(row pgx.Row) (*internal.Baby, error) {
	var b internal.Baby
	var dob *time.Time
	if err := row.Scan(&b.ID, &b.CaregiverID, &b.Name, &dob, &b.CreatedAt); err != nil {
		return nil, err
	}
	if dob != nil {
		b.DateOfBirth = *dob
	}
	return &b, nil
}

func nullTime(b *internal.Baby) *time.Time {
	if b.DateOfBirth.IsZero() {
		return nil
	}
	return &b.DateOfBirth
}

// --- SleepSessionRepository ---
func (p *PostgresStorage) SaveSleepSession(ctx context.Context, s *internal.SleepSession) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO sleep_sessions (id, baby_id, start_time, end_time, type, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.BabyID, s.StartTime, s.EndTime, s.Type, s.Notes, s.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert sleep session: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListSleepSessions(ctx context.Context, babyID string) ([]internal.SleepSession, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, baby_id, start_time, end_time, type, notes, created_at FROM sleep_sessions WHERE baby_id = $1 ORDER BY start_time DESC`, babyID)
	if err != nil {
		p.logger.Errorf("failed to query sleep sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []internal.SleepSession{}
	for rows.Next() {
		var s internal.SleepSession
		if err := rows.Scan(&s.ID, &s.BabyID, &s.StartTime, &s.EndTime, &s.Type, &s.Notes, &s.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan sleep session: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

var _ BabyRepository = (*PostgresStorage)(nil)
var _ SleepSessionRepository = (*PostgresStorage)(nil)
