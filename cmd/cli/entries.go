package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gofrs/uuid/v5"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/TariqKichawele/Reflect/internal/client"
	"github.com/TariqKichawele/Reflect/internal/composer"
	"github.com/TariqKichawele/Reflect/internal/convert"
	"github.com/TariqKichawele/Reflect/internal/entryfile"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
)

func moodColor(score int) *color.Color {
	switch {
	case score >= 7:
		return color.New(color.FgGreen)
	case score >= 4:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func moodLabel(id string) string {
	m, ok := mood.ByID(id)
	if !ok {
		return id
	}
	return moodColor(m.Score).Sprintf("%s %s", m.Emoji, m.Label)
}

func collectionLabel(e model.Entry) string {
	if e.Collection != nil {
		return e.Collection.Name
	}
	if e.CollectionID != nil {
		return e.CollectionID.String()
	}
	return color.New(color.Faint).Sprint(model.Unorganized)
}

func renderEntries(w io.Writer, vs []model.EntryView) {
	if len(vs) == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow("ID", "DATE", "MOOD", "SCORE", "TITLE", "COLLECTION")
	for _, v := range vs {
		tbl.AddRow(
			v.ID.String(),
			v.CreatedAt.Local().Format("2006-01-02 15:04"),
			moodLabel(v.Mood),
			v.MoodScore,
			v.Title,
			collectionLabel(v.Entry),
		)
	}
	tbl.RightAlign(3)
	fmt.Fprintln(w, tbl)
}

func parseEntryID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad entry id %q", s)
	}
	return id, nil
}

func (a *app) listCmd() *cobra.Command {
	var coll, order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Example: `  reflect list
  reflect list --collection unorganized
  reflect list --collection Work --order asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.api()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			f := model.EntryFilter{}
			if f.Order, err = model.ParseOrder(order); err != nil {
				return err
			}
			ref := coll
			if ref != "" && !strings.EqualFold(ref, model.Unorganized) {
				cs, err := api.ListCollections(ctx)
				if err != nil {
					return err
				}
				if ref, err = entryfile.ResolveCollection(ref, cs); err != nil {
					return err
				}
			}
			if f.Collection, err = model.ParseCollectionFilter(strings.ToLower(ref)); err != nil {
				return err
			}

			vs, err := api.ListEntries(ctx, f).Unwrap()
			if err != nil {
				return err
			}
			if a.jsonOut {
				printJSON(cmd.OutOrStdout(), convert.ToEntryViews(vs))
				return nil
			}
			renderEntries(cmd.OutOrStdout(), vs)
			return nil
		},
	}
	cmd.Flags().StringVar(&coll, "collection", "", `collection name or id, or "unorganized"`)
	cmd.Flags().StringVar(&order, "order", "desc", "creation order (asc|desc)")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			api, err := a.api()
			if err != nil {
				return err
			}
			v, err := api.GetEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case a.jsonOut:
				printJSON(w, convert.ToEntryView(*v))
			case markdown:
				name := ""
				if v.Collection != nil {
					name = v.Collection.Name
				}
				return entryfile.Render(w, v.Entry, name)
			default:
				color.New(color.Bold).Fprintln(w, v.Title)
				fmt.Fprintf(w, "%s  %s  %s\n", v.CreatedAt.Local().Format(time.RFC1123), moodLabel(v.Mood), collectionLabel(v.Entry))
				if v.MoodImageURL != "" {
					fmt.Fprintln(w, color.New(color.Faint).Sprint(v.MoodImageURL))
				}
				fmt.Fprintf(w, "\n%s\n", v.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print as an editable markdown file")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			api, err := a.api()
			if err != nil {
				return err
			}
			if err := api.DeleteEntry(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
			return nil
		},
	}
}

// composeFlags override values read from a file.
type composeFlags struct {
	file       string
	title      string
	content    string
	mood       string
	collection string
	draftOnly  bool
}

func (f *composeFlags) bind(cmd *cobra.Command, withDraft bool) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "markdown file with front matter ('-' = stdin)")
	cmd.Flags().StringVar(&f.title, "title", "", "entry title")
	cmd.Flags().StringVar(&f.content, "content", "", "entry text")
	cmd.Flags().StringVar(&f.mood, "mood", "", "mood, e.g. happy")
	cmd.Flags().StringVar(&f.collection, "collection", "", `collection name or id, "unorganized", or "new:NAME"`)
	if withDraft {
		cmd.Flags().BoolVar(&f.draftOnly, "draft", false, "save as draft instead of publishing")
	}
}

func (f *composeFlags) doc(in io.Reader) (entryfile.Doc, error) {
	var d entryfile.Doc
	if f.file != "" {
		b, err := readAll(in, f.file)
		if err != nil {
			return d, err
		}
		if d, err = entryfile.Parse(strings.NewReader(string(b))); err != nil {
			return d, err
		}
	}
	if f.title != "" {
		d.Title = f.title
	}
	if f.content != "" {
		d.Content = f.content
	}
	if f.mood != "" {
		d.Mood = f.mood
	}
	if f.collection != "" {
		d.Collection = f.collection
	}
	return d, nil
}

// apply copies the non-empty parts of d into the form. A collection that
// does not exist yet is created through the side-flow.
func apply(ctx context.Context, w io.Writer, c *composer.Composer, d entryfile.Doc) error {
	if d.Title != "" {
		if err := c.SetTitle(d.Title); err != nil {
			return err
		}
	}
	if d.Content != "" {
		if err := c.SetContent(d.Content); err != nil {
			return err
		}
	}
	if d.Mood != "" {
		err := c.SetMood(ctx, d.Mood)
		switch {
		case errors.Is(err, composer.ErrNoPreview):
			fmt.Fprintln(w, color.YellowString("%v", err))
		case err != nil:
			return err
		}
		if u := c.MoodImage(); u != "" {
			fmt.Fprintln(w, color.New(color.Faint).Sprint("mood image ", u))
		}
	}
	if d.Collection == "" {
		return nil
	}
	if strings.HasPrefix(d.Collection, composer.NewCollectionOption+":") {
		name := strings.TrimSpace(strings.TrimPrefix(d.Collection, composer.NewCollectionOption+":"))
		if err := c.SetCollection(composer.NewCollectionOption); err != nil {
			return err
		}
		col, err := c.CreateCollection(ctx, model.CollectionInput{Name: name})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "created collection", col.Name)
		return nil
	}
	if err := c.LoadCollections(ctx); err != nil {
		return err
	}
	id, err := entryfile.ResolveCollection(d.Collection, c.Collections())
	if err != nil {
		return err
	}
	return c.SetCollection(id)
}

func (a *app) writeCmd() *cobra.Command {
	var f composeFlags
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write a new entry, resuming the saved draft",
		Example: `  reflect write --title "Monday" --mood tired --content "long day"
  reflect write -f today.md
  reflect write --title "half done" --draft
  reflect write -f today.md --collection "new:Wins"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.doc(cmd.InOrStdin())
			if err != nil {
				return err
			}
			api, err := a.api()
			if err != nil {
				return err
			}
			return a.compose(cmd, api, composer.NavContext{}, d, f.draftOnly)
		},
	}
	f.bind(cmd, true)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var f composeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update an existing entry",
		Example: `  reflect show <id> --markdown > e.md && $EDITOR e.md && reflect edit <id> -f e.md
  reflect edit <id> --mood grateful`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseEntryID(args[0]); err != nil {
				return err
			}
			d, err := f.doc(cmd.InOrStdin())
			if err != nil {
				return err
			}
			api, err := a.api()
			if err != nil {
				return err
			}
			return a.compose(cmd, api, composer.NavContext{EditID: args[0]}, d, false)
		},
	}
	f.bind(cmd, false)
	return cmd
}

func (a *app) compose(cmd *cobra.Command, api *client.Client, nav composer.NavContext, d entryfile.Doc, draftOnly bool) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	c := composer.New(api, a.store, a.log)

	if err := c.Start(ctx, nav); err != nil {
		return err
	}
	if nav.EditID == "" && c.Fields() != (composer.Fields{}) {
		fmt.Fprintln(w, "resuming draft", fmt.Sprintf("%q", c.Fields().Title))
	}
	if err := apply(ctx, w, c, d); err != nil {
		return err
	}

	if draftOnly {
		err := c.SaveDraft(ctx)
		if errors.Is(err, composer.ErrNoChanges) {
			fmt.Fprintln(w, "draft unchanged")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, color.GreenString("draft saved"))
		return nil
	}

	e, err := c.Publish(ctx)
	if errors.Is(err, composer.ErrNoChanges) {
		fmt.Fprintln(w, "nothing to publish")
		return nil
	}
	if err != nil {
		return err
	}
	if a.jsonOut {
		printJSON(w, convert.ToEntry(*e))
		return nil
	}
	if nav.EditID != "" {
		fmt.Fprintln(w, color.GreenString("updated"), e.ID)
		return nil
	}
	fmt.Fprintln(w, color.GreenString("published"), e.ID, "in", c.Redirect())
	return nil
}
