package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// an in-memory database lives as long as its one connection
	db.SetMaxOpenConns(1)

	scripts, err := migrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	participants, err := json.Marshal(result.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %v", err)
	}

	q := `
	INSERT INTO match_results (started_at, ended_at, winner, winner_name, ticks, participants)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	res, err := r.db.ExecContext(ctx, q, result.StartedAt, result.EndedAt, result.Winner, result.WinnerName, result.Ticks, string(participants))
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get match result id: %v", err)
	}
	result.ID = id

	return nil
}

func (r *SQLiteRepository) GetMatchResult(ctx context.Context, id int64) (*models.MatchResult, error) {
	q := `
	SELECT id, started_at, ended_at, winner, winner_name, ticks, participants
	FROM match_results WHERE id = ?;
	`
	result, err := scanSQLiteMatchResult(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match result: %v", err)
	}

	return result, nil
}

func (r *SQLiteRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	q := `
	SELECT id, started_at, ended_at, winner, winner_name, ticks, participants
	FROM match_results ORDER BY ended_at DESC, id DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		result, err := scanSQLiteMatchResult(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMatchResult(row rowScanner) (*models.MatchResult, error) {
	result := &models.MatchResult{}
	var participants string
	if err := row.Scan(&result.ID, &result.StartedAt, &result.EndedAt, &result.Winner, &result.WinnerName, &result.Ticks, &participants); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(participants), &result.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %v", err)
	}
	return result, nil
}
