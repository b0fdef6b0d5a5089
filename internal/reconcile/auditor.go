package reconcile

import (
	"context"
	"fmt"
	"sort"

	"video_ingest/internal/logger"
	"video_ingest/internal/repositories"
	"video_ingest/internal/storage"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Report - расхождения после частично неудачных загрузок.
// Orphan - объект без записи, dangling - запись без объекта.
type Report struct {
	Records       int      `json:"records"`
	CoverObjects  int      `json:"cover_objects"`
	VideoObjects  int      `json:"video_objects"`
	OrphanCovers  []string `json:"orphan_covers"`
	OrphanVideos  []string `json:"orphan_videos"`
	DanglingCover []string `json:"dangling_cover"`
	DanglingVideo []string `json:"dangling_video"`
}

// Clean - хранилища согласованы
func (r *Report) Clean() bool {
	return len(r.OrphanCovers) == 0 && len(r.OrphanVideos) == 0 &&
		len(r.DanglingCover) == 0 && len(r.DanglingVideo) == 0
}

// Auditor сверяет объектное хранилище с таблицей метаданных. Ничего не удаляет.
type Auditor struct {
	db    *gorm.DB
	repo  repositories.VideoRepository
	store storage.ObjectStore
	video string
	cover string
}

func NewAuditor(db *gorm.DB, repo repositories.VideoRepository, store storage.ObjectStore, videoBucket, coverBucket string) *Auditor {
	return &Auditor{
		db:    db,
		repo:  repo,
		store: store,
		video: videoBucket,
		cover: coverBucket,
	}
}

// Run параллельно читает оба бакета и записи метаданных и сравнивает их.
// Расхождения перепроверяются один раз: orphan-объекты по повторному чтению записей,
// dangling-записи через Exists. Загрузка, которая и после перепроверки
// находится между записью файлов и вставкой строки, попадет в orphan.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	var (
		coverKeys, videoKeys []string
		rows                 []repositories.StoredFilenames
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := a.store.ListKeys(gctx, a.cover)
		if err != nil {
			return fmt.Errorf("list %s: %w", a.cover, err)
		}
		coverKeys = keys
		return nil
	})
	g.Go(func() error {
		keys, err := a.store.ListKeys(gctx, a.video)
		if err != nil {
			return fmt.Errorf("list %s: %w", a.video, err)
		}
		videoKeys = keys
		return nil
	})
	g.Go(func() error {
		db := a.db
		if db != nil {
			db = db.WithContext(gctx)
		}
		r, err := a.repo.ListFilenames(db)
		if err != nil {
			return fmt.Errorf("list metadata: %w", err)
		}
		rows = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Records:      len(rows),
		CoverObjects: len(coverKeys),
		VideoObjects: len(videoKeys),
	}

	diff(report, rows, coverKeys, videoKeys)

	if !report.Clean() {
		if err := a.confirm(ctx, report, rows); err != nil {
			return nil, err
		}
	}

	logger.CtxInfo(ctx, "Reconciliation finished",
		"records", report.Records,
		"orphan_covers", len(report.OrphanCovers),
		"orphan_videos", len(report.OrphanVideos),
		"dangling_rows", len(report.DanglingCover)+len(report.DanglingVideo),
	)
	return report, nil
}

func diff(report *Report, rows []repositories.StoredFilenames, coverKeys, videoKeys []string) {
	coverRefs := make(map[string]bool, len(rows))
	videoRefs := make(map[string]bool, len(rows))
	for _, row := range rows {
		coverRefs[row.CoverFilename] = true
		videoRefs[row.VideoFilename] = true
	}
	coverSet := toSet(coverKeys)
	videoSet := toSet(videoKeys)

	report.OrphanCovers = missingFrom(coverKeys, coverRefs)
	report.OrphanVideos = missingFrom(videoKeys, videoRefs)
	for _, row := range rows {
		if !coverSet[row.CoverFilename] {
			report.DanglingCover = append(report.DanglingCover, row.ID)
		}
		if !videoSet[row.VideoFilename] {
			report.DanglingVideo = append(report.DanglingVideo, row.ID)
		}
	}
}

// confirm убирает расхождения от загрузок, завершившихся во время сверки
func (a *Auditor) confirm(ctx context.Context, report *Report, rows []repositories.StoredFilenames) error {
	if len(report.OrphanCovers) > 0 || len(report.OrphanVideos) > 0 {
		db := a.db
		if db != nil {
			db = db.WithContext(ctx)
		}
		fresh, err := a.repo.ListFilenames(db)
		if err != nil {
			return fmt.Errorf("list metadata: %w", err)
		}
		coverRefs := make(map[string]bool, len(fresh))
		videoRefs := make(map[string]bool, len(fresh))
		for _, row := range fresh {
			coverRefs[row.CoverFilename] = true
			videoRefs[row.VideoFilename] = true
		}
		report.OrphanCovers = missingFrom(report.OrphanCovers, coverRefs)
		report.OrphanVideos = missingFrom(report.OrphanVideos, videoRefs)
	}

	byID := make(map[string]repositories.StoredFilenames, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	var err error
	report.DanglingCover, err = a.stillMissing(ctx, a.cover, report.DanglingCover, byID, func(r repositories.StoredFilenames) string { return r.CoverFilename })
	if err != nil {
		return err
	}
	report.DanglingVideo, err = a.stillMissing(ctx, a.video, report.DanglingVideo, byID, func(r repositories.StoredFilenames) string { return r.VideoFilename })
	return err
}

func (a *Auditor) stillMissing(ctx context.Context, bucket string, ids []string, byID map[string]repositories.StoredFilenames, key func(repositories.StoredFilenames) string) ([]string, error) {
	var out []string
	for _, id := range ids {
		ok, err := a.store.Exists(ctx, bucket, key(byID[id]))
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", bucket, err)
		}
		if !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func missingFrom(keys []string, refs map[string]bool) []string {
	var out []string
	for _, k := range keys {
		if !refs[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
