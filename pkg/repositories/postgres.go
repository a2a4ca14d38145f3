package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	scripts, err := migrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := conn.Exec(ctx, migration); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	participants, err := json.Marshal(result.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %v", err)
	}

	q := `
	INSERT INTO match_results (started_at, ended_at, winner, winner_name, ticks, participants)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id;
	`
	err = r.conn.QueryRow(ctx, q, result.StartedAt, result.EndedAt, result.Winner, result.WinnerName, result.Ticks, participants).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *PostgresRepository) GetMatchResult(ctx context.Context, id int64) (*models.MatchResult, error) {
	q := `
	SELECT id, started_at, ended_at, winner, winner_name, ticks, participants
	FROM match_results WHERE id = $1;
	`
	result, err := scanPostgresMatchResult(r.conn.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match result: %v", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	q := `
	SELECT id, started_at, ended_at, winner, winner_name, ticks, participants
	FROM match_results ORDER BY ended_at DESC, id DESC LIMIT $1;
	`
	rows, err := r.conn.Query(ctx, q, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		result, err := scanPostgresMatchResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %v", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match results: %v", err)
	}

	return results, nil
}

func scanPostgresMatchResult(row pgx.Row) (*models.MatchResult, error) {
	result := &models.MatchResult{}
	var participants []byte
	if err := row.Scan(&result.ID, &result.StartedAt, &result.EndedAt, &result.Winner, &result.WinnerName, &result.Ticks, &participants); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &result.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %v", err)
	}
	return result, nil
}
