package workers

import (
	"context"
	"time"

	"video_ingest/internal/logger"
	"video_ingest/internal/reconcile"
)

// Auditor - часть reconcile.Auditor, нужная воркеру
type Auditor interface {
	Run(ctx context.Context) (*reconcile.Report, error)
}

// ReconcileWorker периодически сверяет хранилище с таблицей метаданных
// и логирует расхождения. Ничего не удаляет.
type ReconcileWorker struct {
	auditor  Auditor
	interval time.Duration
	reports  chan<- *reconcile.Report
}

func NewReconcileWorker(auditor Auditor, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{auditor: auditor, interval: interval}
}

// Start запускает фоновую сверку до отмены ctx
func (w *ReconcileWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *ReconcileWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reconcile worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReconcileWorker) runOnce(ctx context.Context) {
	report, err := w.auditor.Run(ctx)
	if err != nil {
		logger.CtxWithError(ctx, "Reconciliation failed", err)
		return
	}
	if !report.Clean() {
		logger.CtxWarn(ctx, "Object store and metadata are out of sync",
			"orphan_covers", report.OrphanCovers,
			"orphan_videos", report.OrphanVideos,
			"rows_missing_cover", report.DanglingCover,
			"rows_missing_video", report.DanglingVideo,
		)
	}
	if w.reports != nil {
		select {
		case w.reports <- report:
		default:
		}
	}
}
