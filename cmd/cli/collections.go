package main

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/TariqKichawele/Reflect/internal/convert"
	"github.com/TariqKichawele/Reflect/internal/entryfile"
	"github.com/TariqKichawele/Reflect/internal/model"
)

func (a *app) collectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"col"},
		Short:   "List and manage collections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api()
			if err != nil {
				return err
			}
			cs, err := api.ListCollections(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOut {
				printJSON(w, convert.ToCollections(cs))
				return nil
			}
			if len(cs) == 0 {
				fmt.Fprintln(w, "no collections")
				return nil
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.MaxColWidth = 48
			tbl.AddRow("ID", "NAME", "DESCRIPTION")
			for _, c := range cs {
				tbl.AddRow(c.ID.String(), c.Name, c.Description)
			}
			fmt.Fprintln(w, tbl)
			return nil
		},
	}
	cmd.AddCommand(a.collectionCreateCmd(), a.collectionRmCmd())
	return cmd
}

func (a *app) collectionCreateCmd() *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api()
			if err != nil {
				return err
			}
			c, err := api.CreateCollection(cmd.Context(), model.CollectionInput{Name: args[0], Description: desc})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&desc, "description", "", "collection description")
	return cmd
}

func (a *app) collectionRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name|id>",
		Short: "Delete a collection; its entries become unorganized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cs, err := api.ListCollections(ctx)
			if err != nil {
				return err
			}
			ref, err := entryfile.ResolveCollection(args[0], cs)
			if err != nil {
				return err
			}
			if ref == "" {
				return fmt.Errorf("%q is not a collection", args[0])
			}
			id := uuid.FromStringOrNil(ref)
			if err := api.DeleteCollection(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
			return nil
		},
	}
}
