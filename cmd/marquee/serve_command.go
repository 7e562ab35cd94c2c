package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if bind != "" {
				a.cfg.Paths.APIBind = bind
			}
			server, err := api.NewServer(a.cfg, api.Dependencies{
				Recommender: a.recommend,
				Chat:        a.chat,
				Store:       a.store,
			}, a.logger)
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			if err := server.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", server.Addr())
			<-runCtx.Done()
			server.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind")
	return cmd
}
