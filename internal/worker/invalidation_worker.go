package worker

import (
	"context"

	"financeviz/internal/amqp"
	"financeviz/internal/cache"
	"financeviz/internal/log"
	"financeviz/internal/metrics"
)

// InvalidationWorker keeps the classification tree cache consistent with
// the stored documents and plans.
type InvalidationWorker struct {
	trees  *cache.Trees
	logger *log.StructuredLogger
}

func NewInvalidationWorker(trees *cache.Trees, logger *log.Logger) *InvalidationWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &InvalidationWorker{
		trees:  trees,
		logger: log.NewStructuredLogger(logger),
	}
}

// HandleDocumentUpdated drops the trees built from the changed input.
// Aggregated trees and texts are read per view and need no invalidation.
func (w *InvalidationWorker) HandleDocumentUpdated(ctx context.Context, msg *amqp.DocumentUpdatedMessage) error {
	metrics.DocumentUpdated(msg.Kind, msg.Year)

	invalidated := 0
	switch msg.Kind {
	case amqp.KindDocument, amqp.KindPlan:
		if w.trees == nil {
			break
		}
		if msg.Year == 0 {
			invalidated = w.trees.Size()
			w.trees.Purge()
		} else {
			invalidated = w.trees.Invalidate(msg.Year)
		}
	}

	w.logger.LogDocumentUpdated(ctx, msg.Kind, msg.Year, invalidated)
	return nil
}
