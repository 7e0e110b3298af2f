// Command reflect is a CLI client for the Reflect journaling service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/client"
	"github.com/TariqKichawele/Reflect/internal/config"
	"github.com/TariqKichawele/Reflect/internal/localstore"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	cfgFile string
	verbose bool
	jsonOut bool

	cfg   *config.Config
	store *localstore.Store
	log   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "reflect",
		Short:             "Reflect journaling CLI",
		Long:              "reflect writes, edits and browses journal entries on a Reflect server.",
		PersistentPreRunE: a.setup,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log workflow details to stderr")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output in JSON format")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.quoteCmd(),
		a.moodsCmd(),
		a.listCmd(),
		a.showCmd(),
		a.writeCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.draftCmd(),
		a.collectionsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "reflect %s (%s)\n", version, buildDate)
			},
		},
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		return err
	}
	a.cfg = cfg
	a.store = localstore.Open(cfg.Client.DataDir)

	a.log = zap.NewNop()
	if a.verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			a.log = l
		}
	}
	return nil
}

// api returns a client carrying the stored token.
func (a *app) api() (*client.Client, error) {
	tok, err := a.store.Token()
	if err != nil {
		return nil, err
	}
	return client.New(a.cfg.Client.ServerURL, tok, nil), nil
}

// publicAPI is for endpoints that work without logging in.
func (a *app) publicAPI() *client.Client {
	tok, _ := a.store.Token()
	return client.New(a.cfg.Client.ServerURL, tok, nil)
}

// ---- utils ----

func readAll(in io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(p)
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold)
		red.Fprint(os.Stderr, "Error: ")
		fmt.Fprintln(os.Stderr, err)
		if client.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "run `reflect login` to sign in again")
		}
		os.Exit(1)
	}
}
