package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/locale"
	"marquee/internal/media"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Mark titles as seen or hidden and list them",
	}
	statusCmd.AddCommand(newStatusSetCommand(ctx))
	statusCmd.AddCommand(newStatusListCommand(ctx))
	return statusCmd
}

func newStatusSetCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:     "set <kind> <tmdb-id> <status>",
		Short:   "Record a status for one title",
		Example: "  marquee status set movie 603 seen --user 7",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := media.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid tmdb id %q", args[1])
			}
			status, err := media.ParseStatus(args[2])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if err := a.store.SetStatus(cmd.Context(), userID, kind, id, status); err != nil {
				return err
			}
			if ctx.wantsJSON(cmd) {
				return writeJSON(cmd, map[string]any{"media_kind": kind, "tmdb_id": id, "status": status})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s %d as %s\n", kind, id, status)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "User id")
	return cmd
}

func newStatusListCommand(ctx *commandContext) *cobra.Command {
	var (
		userID int64
		lang   string
	)
	cmd := &cobra.Command{
		Use:   "list <kind> <status>",
		Short: "List titles recorded with a status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := media.ParseKind(args[0])
			if err != nil {
				return err
			}
			status, err := media.ParseStatus(args[1])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			ids, err := a.store.ListByStatus(cmd.Context(), userID, kind, status)
			if err != nil {
				return err
			}
			cards, err := a.recommend.Cards(cmd.Context(), kind, ids, locale.Normalize(lang))
			if err != nil {
				return err
			}
			return ctx.printCards(cmd, cards)
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "User id")
	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "Output language: en or fr")
	return cmd
}
