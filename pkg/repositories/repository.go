package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
)

// DefaultListLimit is used when ListMatchResults is called without a positive limit
const DefaultListLimit = 20

//go:embed migrations
var migrationsFS embed.FS

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=./mocks/repository_mock.go -package=mocks . Repository

type Repository interface {
	Close(ctx context.Context) error
	// SaveMatchResult stores a finished game and sets its ID.
	SaveMatchResult(ctx context.Context, result *models.MatchResult) error
	// GetMatchResult returns ErrNotFound when no result has the ID.
	GetMatchResult(ctx context.Context, id int64) (*models.MatchResult, error)
	// ListMatchResults returns the most recent results first.
	ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error)
}

// migrations returns the embedded migration scripts for a dialect in file name order.
func migrations(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	scripts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, err := fs.ReadFile(migrationsFS, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", entry.Name(), err)
		}
		scripts = append(scripts, string(b))
	}
	return scripts, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
