package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/notifications"
	"marquee/internal/warmup"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and pre-populate the enrichment cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheWarmCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache counts and staleness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			stats, err := a.store.CacheStats(cmd.Context(), a.cfg.FreshnessWindow())
			if err != nil {
				return err
			}
			if ctx.wantsJSON(cmd) {
				return writeJSON(cmd, stats)
			}
			oldest := stats.OldestDate
			if oldest == "" {
				oldest = "-"
			}
			fmt.Fprintln(cmd.OutOrStdout(), keyValueTable([][2]string{
				{"Movies", strconv.Itoa(stats.Movies)},
				{"TV shows", strconv.Itoa(stats.TVShows)},
				{fmt.Sprintf("Stale (> %d days)", a.cfg.Pipeline.FreshnessDays), strconv.Itoa(stats.Stale)},
				{"Without IMDb id", strconv.Itoa(stats.NoIMDbID)},
				{"Oldest refresh", oldest},
			}))
			return nil
		},
	}
}

func newCacheWarmCommand(ctx *commandContext) *cobra.Command {
	var (
		kinds     []string
		genres    []string
		languages []string
		sorts     []string
		fromYear  int
		toYear    int
		pause     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Issue filter queries across genres, years and languages to fill the cache",
		Long: `Warm walks every combination of kind, genre, year, language and sort and
runs a filter recommendation for each, so later requests hit fresh cache rows.
Only one warm-up runs at a time; interrupting stops after the current query.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := warmup.Options{
				Genres:    genres,
				FromYear:  fromYear,
				ToYear:    toYear,
				Languages: languages,
				Pause:     pause,
			}
			for _, value := range kinds {
				kind, err := media.ParseKind(value)
				if err != nil {
					return err
				}
				opts.Kinds = append(opts.Kinds, kind)
			}
			for _, value := range sorts {
				sort, err := parseSort(value)
				if err != nil {
					return err
				}
				opts.Sorts = append(opts.Sorts, sort)
			}

			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			jsonOut := ctx.wantsJSON(cmd)
			if !jsonOut {
				errOut := cmd.ErrOrStderr()
				a.warmup.OnProgress(func(done, total int, combo warmup.Combination) {
					fmt.Fprintf(errOut, "[%d/%d] %s %s %d %s %s\n", done, total,
						combo.Kind, genreLabel(combo.Filters.GenreName), combo.Filters.MinReleaseYear,
						combo.Filters.OriginalLanguage, combo.Filters.SortBy)
				})
			}

			started := time.Now()
			report, err := a.warmup.Run(cmd.Context(), opts)
			if errors.Is(err, warmup.ErrAlreadyRunning) {
				return fmt.Errorf("another warm-up holds %s", a.cfg.WarmupLockPath())
			}
			if err != nil {
				// The run context may already be cancelled.
				if notifyErr := a.notifier.NotifyError(context.WithoutCancel(cmd.Context()), err, "cache warm"); notifyErr != nil {
					a.logger.Warn("warm-up failure notification failed", logging.Error(notifyErr))
				}
				return err
			}
			summary := notifications.WarmupSummary{
				Combinations: report.Combinations,
				Completed:    report.Completed,
				Failed:       report.Failed,
				Results:      report.Results,
				Cancelled:    report.Cancelled,
				Duration:     time.Since(started),
			}
			if err := a.notifier.NotifyWarmupCompleted(context.WithoutCancel(cmd.Context()), summary); err != nil {
				a.logger.Warn("warm-up notification failed", logging.Error(err))
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), keyValueTable([][2]string{
				{"Combinations", strconv.Itoa(report.Combinations)},
				{"Completed", strconv.Itoa(report.Completed)},
				{"Failed", strconv.Itoa(report.Failed)},
				{"Results", strconv.Itoa(report.Results)},
				{"Cancelled", strconv.FormatBool(report.Cancelled)},
			}))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Kinds to warm (default movie,tv)")
	cmd.Flags().StringSliceVar(&genres, "genres", nil, "Genre names (default every known genre)")
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "Original languages (default en,fr)")
	cmd.Flags().StringSliceVar(&sorts, "sorts", nil, "Orders: popularity, rating, votes (default all)")
	cmd.Flags().IntVar(&fromYear, "from", 0, "Earliest year (default 1980)")
	cmd.Flags().IntVar(&toYear, "to", 0, "Latest year (default current year)")
	cmd.Flags().DurationVar(&pause, "pause", 2*time.Second, "Pause between queries")
	return cmd
}

func genreLabel(name string) string {
	if name == "" {
		return "any"
	}
	return name
}
