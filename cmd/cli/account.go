package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/TariqKichawele/Reflect/internal/client"
	"github.com/TariqKichawele/Reflect/internal/convert"
	"github.com/TariqKichawele/Reflect/internal/mood"
)

func (a *app) loginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token and sync the account",
		Long:  "login saves a token issued by the identity provider (or `reflect-server token`) and makes sure the server knows the user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" || token == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("need --token or a token on stdin")
				}
				token = strings.TrimSpace(line)
			}
			u, err := client.New(a.cfg.Client.ServerURL, token, nil).Sync(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.store.SaveToken(token); err != nil {
				return err
			}
			who := u.Email
			if u.Name != "" {
				who = u.Name
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("logged in"), who)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token ('-' = stdin)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func (a *app) quoteCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print the daily writing prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := a.publicAPI()
			if refresh {
				if err := api.RevalidateQuote(cmd.Context()); err != nil {
					return err
				}
			}
			q, err := api.Quote(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.New(color.Italic).Sprint(q))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached prompt first (requires login)")
	return cmd
}

func (a *app) moodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "List the moods an entry can have",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				printJSON(cmd.OutOrStdout(), mood.All())
				return nil
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("MOOD", "", "SCORE", "PROMPT")
			for _, m := range mood.All() {
				tbl.AddRow(m.ID, m.Emoji, m.Score, m.Prompt)
			}
			tbl.RightAlign(2)
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
}

func (a *app) draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft",
		Short: "Show the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api()
			if err != nil {
				return err
			}
			d, err := api.GetDraft(cmd.Context()).Unwrap()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if d == nil {
				fmt.Fprintln(w, "no draft")
				return nil
			}
			if a.jsonOut {
				printJSON(w, convert.ToDraft(*d))
				return nil
			}
			title := d.Title
			if title == "" {
				title = "(untitled)"
			}
			color.New(color.Bold).Fprintln(w, title)
			fmt.Fprintf(w, "%s  saved %s\n\n%s\n", moodLabel(d.Mood), d.UpdatedAt.Local().Format("2006-01-02 15:04"), d.Content)
			return nil
		},
	}
}
