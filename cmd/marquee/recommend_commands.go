package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/locale"
	"marquee/internal/media"
)

// requestFlags are shared by every recommendation command.
type requestFlags struct {
	kind   string
	lang   string
	userID int64
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "movie", "Media kind: movie or tv")
	cmd.Flags().StringVarP(&f.lang, "lang", "l", "en", "Output language: en or fr")
	cmd.Flags().Int64VarP(&f.userID, "user", "u", 0, "User whose seen/hidden lists apply")
}

func (f *requestFlags) resolve() (media.Kind, string, error) {
	kind, err := media.ParseKind(f.kind)
	if err != nil {
		return "", "", err
	}
	return kind, locale.Normalize(f.lang), nil
}

var sortAliases = map[string]string{
	"":           media.SortPopularity,
	"popularity": media.SortPopularity,
	"rating":     media.SortVoteAverage,
	"votes":      media.SortVoteCount,
}

func parseSort(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if sort, ok := sortAliases[value]; ok {
		return sort, nil
	}
	switch value {
	case media.SortPopularity, media.SortVoteAverage, media.SortVoteCount:
		return value, nil
	}
	return "", fmt.Errorf("unknown sort %q (use popularity, rating or votes)", value)
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var (
		req     requestFlags
		filters   media.Filters
		sortBy    string
		minRating float64
		minVotes  int64
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend titles by genre, rating, years and language",
		Example: `  marquee recommend --genre drama --min-rating 7 --min-votes 1000 --sort rating
  marquee recommend -k tv --genre comédie --from 2015 --language fr -l fr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, loc, err := req.resolve()
			if err != nil {
				return err
			}
			if filters.SortBy, err = parseSort(sortBy); err != nil {
				return err
			}
			if cmd.Flags().Changed("min-rating") {
				filters.MinIMDbRating = media.Ptr(minRating)
			}
			if cmd.Flags().Changed("min-votes") {
				filters.MinIMDbVotes = media.Ptr(minVotes)
			}
			if filters.OriginalLanguage != "" {
				code := locale.ISO2(filters.OriginalLanguage)
				if code == "" {
					return fmt.Errorf("unknown language %q", filters.OriginalLanguage)
				}
				filters.OriginalLanguage = code
			}
			if filters.MinReleaseYear > 0 && filters.MaxReleaseYear > 0 && filters.MinReleaseYear > filters.MaxReleaseYear {
				return errors.New("--from must not be after --to")
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			cards, err := a.recommend.ByFilters(cmd.Context(), req.userID, kind, filters, loc)
			if err != nil {
				return err
			}
			return ctx.printCards(cmd, cards)
		},
	}
	req.register(cmd)
	cmd.Flags().StringVarP(&filters.GenreName, "genre", "g", "", "Genre name in English or French")
	cmd.Flags().Float64Var(&minRating, "min-rating", 0, "Keep titles rated strictly above this IMDb rating")
	cmd.Flags().Int64Var(&minVotes, "min-votes", 0, "Keep titles with strictly more IMDb votes")
	cmd.Flags().IntVar(&filters.MinReleaseYear, "from", 0, "Earliest release year")
	cmd.Flags().IntVar(&filters.MaxReleaseYear, "to", 0, "Latest release year")
	cmd.Flags().StringVar(&filters.OriginalLanguage, "language", "", "Original language (code or name)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "popularity", "Order: popularity, rating or votes")
	return cmd
}

// newQueryCommands builds the commands that take free text.
func newQueryCommands(ctx *commandContext) []*cobra.Command {
	type queryCommand struct {
		use     string
		short   string
		example string
		run     func(a *app, cmd *cobra.Command, req requestFlags, kind media.Kind, loc, query string) ([]media.Card, error)
	}
	commands := []queryCommand{
		{
			use:     "similar <title>",
			short:   "Recommend titles similar to the one named",
			example: `  marquee similar "Get Out"`,
			run: func(a *app, cmd *cobra.Command, req requestFlags, kind media.Kind, loc, query string) ([]media.Card, error) {
				return a.recommend.Similar(cmd.Context(), req.userID, kind, query, loc)
			},
		},
		{
			use:     "title <title>",
			short:   "Look up one specific title",
			example: `  marquee title "the one with the spinning top dream heist"`,
			run: func(a *app, cmd *cobra.Command, _ requestFlags, kind media.Kind, loc, query string) ([]media.Card, error) {
				return a.recommend.ByTitle(cmd.Context(), kind, query, loc)
			},
		},
		{
			use:     "describe <mood or plot>",
			short:   "Recommend titles matching a free-form description",
			example: `  marquee describe -k tv "slow-burn nordic crime with bleak winters"`,
			run: func(a *app, cmd *cobra.Command, req requestFlags, kind media.Kind, loc, query string) ([]media.Card, error) {
				return a.recommend.FromDescription(cmd.Context(), req.userID, kind, query, loc)
			},
		},
	}

	cmds := make([]*cobra.Command, 0, len(commands))
	for _, s := range commands {
		var req requestFlags
		cmd := &cobra.Command{
			Use:     s.use,
			Short:   s.short,
			Example: s.example,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, loc, err := req.resolve()
				if err != nil {
					return err
				}
				a, err := ctx.ensureApp()
				if err != nil {
					return err
				}
				cards, err := s.run(a, cmd, req, kind, loc, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return ctx.printCards(cmd, cards)
			},
		}
		req.register(cmd)
		cmds = append(cmds, cmd)
	}
	return cmds
}
