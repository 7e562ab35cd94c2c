package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"marquee/internal/chat"
	"marquee/internal/logging"
	"marquee/internal/media"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	var (
		sessionID string
		req       requestFlags
	)
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the recommender",
		Long: `Start a conversation. With a message argument a single turn is sent and
the reply printed; without one an interactive prompt reads lines from stdin
until EOF or "exit".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind media.Kind
			if strings.TrimSpace(req.kind) != "" {
				parsed, err := media.ParseKind(req.kind)
				if err != nil {
					return err
				}
				kind = parsed
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			send := func(message string) error {
				reply, err := a.chat.Chat(cmd.Context(), chat.ChatRequest{
					SessionID: sessionID,
					UserID:    req.userID,
					Query:     message,
					Locale:    req.lang,
					MediaKind: kind,
				})
				if err != nil && !errors.Is(err, chat.ErrClassification) {
					return err
				}
				if err != nil {
					a.logger.Debug("chat classification failed", logging.Error(err))
				}
				if reply.MediaKind != "" {
					kind = reply.MediaKind
				}
				return ctx.printReply(cmd, reply)
			}

			if len(args) > 0 {
				return send(strings.Join(args, " "))
			}

			out := cmd.OutOrStdout()
			interactive := isTerminal(cmd.OutOrStdout()) && !ctx.jsonOutput()
			if interactive {
				fmt.Fprintf(out, "Session %s. Type \"exit\" to quit.\n", sessionID)
			}
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				if interactive {
					fmt.Fprint(out, "> ")
				}
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				if err := send(line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Resume an existing session")
	cmd.Flags().StringVarP(&req.kind, "kind", "k", "", "Preselect media kind: movie or tv")
	cmd.Flags().StringVarP(&req.lang, "lang", "l", "en", "Reply language: en or fr")
	cmd.Flags().Int64VarP(&req.userID, "user", "u", 0, "User whose seen/hidden lists apply")
	return cmd
}

func (c *commandContext) printReply(cmd *cobra.Command, reply chat.Reply) error {
	if reply.Results == nil {
		reply.Results = []media.Card{}
	}
	if c.wantsJSON(cmd) {
		return writeJSON(cmd, reply)
	}
	out := cmd.OutOrStdout()
	if reply.Message != "" {
		fmt.Fprintln(out, reply.Message)
	}
	if len(reply.Results) > 0 {
		fmt.Fprintln(out, cardTable(reply.Results))
	}
	return nil
}
