// Package entryfile reads and writes entries as markdown with YAML front matter:
//
//	---
//	title: Monday
//	mood: tired
//	collection: Work
//	---
//
//	Long day.
package entryfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/TariqKichawele/Reflect/internal/model"
)

// Doc is a parsed entry file. Collection is a collection name or id as
// typed by the user; empty means unorganized.
type Doc struct {
	Title      string
	Mood       string
	Collection string
	Content    string
}

type frontMatter struct {
	Title      string `yaml:"title"`
	Mood       string `yaml:"mood"`
	Collection string `yaml:"collection"`
}

func Parse(r io.Reader) (Doc, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(r, &fm)
	if err != nil {
		return Doc{}, fmt.Errorf("parsing front-matter: %w", err)
	}
	return Doc{
		Title:      strings.TrimSpace(fm.Title),
		Mood:       strings.TrimSpace(fm.Mood),
		Collection: strings.TrimSpace(fm.Collection),
		Content:    strings.TrimSpace(string(body)),
	}, nil
}

// Render writes e back in the same format; collectionName may be empty.
func Render(w io.Writer, e model.Entry, collectionName string) error {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", e.Title)
	fmt.Fprintf(&b, "mood: %s\n", e.Mood)
	if collectionName != "" {
		fmt.Fprintf(&b, "collection: %q\n", collectionName)
	}
	b.WriteString("---\n\n")
	b.WriteString(e.Content)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ResolveCollection maps a name or id from a file to a collection id.
// Names match case-insensitively; "" and "unorganized" mean no collection.
func ResolveCollection(ref string, cs []model.Collection) (string, error) {
	if ref == "" || strings.EqualFold(ref, model.Unorganized) {
		return "", nil
	}
	for _, c := range cs {
		if c.ID.String() == ref || strings.EqualFold(c.Name, ref) {
			return c.ID.String(), nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", ref)
}
