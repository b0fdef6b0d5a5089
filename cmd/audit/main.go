package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"video_ingest/database"
	"video_ingest/internal/app"
	"video_ingest/internal/config"
	"video_ingest/internal/logger"
	"video_ingest/internal/reconcile"
	"video_ingest/internal/repositories"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		asJSON     bool
		failOnDiff bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare stored video files with the metadata table",
		Long: "List both buckets and the video_metadata table and report blobs without a row " +
			"and rows whose blobs are missing. Nothing is deleted.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.InitWithWriter(cfg.Server.Env, cmd.ErrOrStderr())

			db, err := database.Connect(cfg.Database.DSN)
			if err != nil {
				return err
			}
			store, err := app.NewObjectStore(cfg, nil)
			if err != nil {
				return err
			}

			auditor := reconcile.NewAuditor(db, repositories.NewVideoRepository(), store,
				cfg.Storage.VideoBucket, cfg.Storage.CoverBucket)
			report, err := auditor.Run(cmd.Context())
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}
			if failOnDiff && !report.Clean() {
				return fmt.Errorf("stores are inconsistent")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&failOnDiff, "fail-on-diff", false, "exit non-zero when inconsistencies are found")
	cmd.SetContext(context.Background())
	return cmd
}

func writeReport(w io.Writer, report *reconcile.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "records:        %d\n", report.Records)
	fmt.Fprintf(&b, "cover objects:  %d\n", report.CoverObjects)
	fmt.Fprintf(&b, "video objects:  %d\n", report.VideoObjects)
	section(&b, "orphan covers", report.OrphanCovers)
	section(&b, "orphan videos", report.OrphanVideos)
	section(&b, "rows missing cover", report.DanglingCover)
	section(&b, "rows missing video", report.DanglingVideo)
	if report.Clean() {
		b.WriteString("stores are consistent\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(b, "  %s\n", item)
	}
}
