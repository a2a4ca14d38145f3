package workers

import (
	"context"

	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/repositories"
	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
)

type SaveMatchResultWorker struct {
	repository          repositories.Repository
	saveMatchResultChan <-chan *models.MatchResult
}

type NewSaveMatchResultWorkerOptions struct {
	Repository          repositories.Repository
	SaveMatchResultChan <-chan *models.MatchResult
}

// NewSaveMatchResultWorker creates a new SaveMatchResultWorker.
// The worker stores the results of finished games sent by the game loop.
func NewSaveMatchResultWorker(opts NewSaveMatchResultWorkerOptions) *SaveMatchResultWorker {
	return &SaveMatchResultWorker{
		repository:          opts.Repository,
		saveMatchResultChan: opts.SaveMatchResultChan,
	}
}

func (w *SaveMatchResultWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// results already handed over are still worth keeping
			w.drain()
			return
		case result := <-w.saveMatchResultChan:
			w.saveMatchResult(ctx, result)
		}
	}
}

func (w *SaveMatchResultWorker) drain() {
	for {
		select {
		case result := <-w.saveMatchResultChan:
			w.saveMatchResult(context.Background(), result)
		default:
			return
		}
	}
}

func (w *SaveMatchResultWorker) saveMatchResult(ctx context.Context, result *models.MatchResult) {
	if result == nil {
		return
	}
	if err := w.repository.SaveMatchResult(ctx, result); err != nil {
		log.Error("Failed to save match result: %v", err)
		return
	}
	log.Info("Saved match result %d", result.ID)
}
