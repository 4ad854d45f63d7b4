package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:     "prompts",
	Aliases: []string{"prompt", "p"},
	Short:   "Browse and edit prompts",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.prompts.Load(cmd.Context()); err != nil {
				return err
			}
			fav, err := a.favorites(cmd.Context(), favorites.Prompts)
			if err != nil {
				return err
			}

			items := a.prompts.Items()
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}

			rows := make([][]string, 0, len(items))
			for _, p := range items {
				rows = append(rows, []string{
					p.ID.String(),
					mark(fav.Has(p.ID)),
					string(p.Category),
					string(p.Complexity),
					truncate(p.Title, 40),
				})
			}
			if err := table(cmd.OutOrStdout(), []string{"ID", "FAV", "CATEGORY", "COMPLEXITY", "TITLE"}, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d prompts (%s)\n", len(items), a.prompts.Source())
			return nil
		})
	},
}

var promptsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.prompts.Load(cmd.Context()); err != nil {
				return err
			}
			p, err := a.prompts.Find(catalog.ID(args[0]))
			if err != nil {
				return err
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}

			out := cmd.OutOrStdout()
			printField(out, "Title", p.Title)
			printField(out, "Category", string(p.Category))
			printField(out, "Complexity", string(p.Complexity))
			printField(out, "Description", p.Desc)
			printField(out, "Tags", tagList(p.Tags))
			fmt.Fprintf(out, "\n%s\n", p.Prompt)
			return nil
		})
	},
}

var promptsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a prompt",
	Example: `  gallery prompts add --title "Summarize" --prompt "Summarize this:" --category writing
  gallery prompts add --title "Logo" --prompt "minimal logo" --category mj --tag design:purple`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		title, _ := f.GetString("title")
		text, _ := f.GetString("prompt")
		desc, _ := f.GetString("desc")
		category, _ := f.GetString("category")
		complexity, _ := f.GetString("complexity")
		tagArgs, _ := f.GetStringArray("tag")

		tags, err := parseTags(tagArgs)
		if err != nil {
			return err
		}

		cmdData := prompts.CreateCommand{
			Title:      title,
			Desc:       desc,
			Prompt:     text,
			Category:   prompts.Category(category),
			Complexity: catalog.Complexity(complexity),
			Tags:       tags,
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.prompts.Load(cmd.Context()); err != nil {
				return err
			}
			p, err := a.prompts.Add(cmd.Context(), cmdData, a.owner.ID.String())
			if err != nil {
				return err
			}
			printSuccess("Created prompt %s", p.ID)
			return nil
		})
	},
}

var promptsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var update prompts.UpdateCommand
		f := cmd.Flags()

		if f.Changed("title") {
			v, _ := f.GetString("title")
			update.Title = &v
		}
		if f.Changed("prompt") {
			v, _ := f.GetString("prompt")
			update.Prompt = &v
		}
		if f.Changed("desc") {
			v, _ := f.GetString("desc")
			update.Desc = &v
		}
		if f.Changed("category") {
			v, _ := f.GetString("category")
			c := prompts.Category(v)
			update.Category = &c
		}
		if f.Changed("complexity") {
			v, _ := f.GetString("complexity")
			c := catalog.Complexity(v)
			update.Complexity = &c
		}
		if f.Changed("tag") {
			v, _ := f.GetStringArray("tag")
			tags, err := parseTags(v)
			if err != nil {
				return err
			}
			if tags == nil {
				tags = []catalog.Tag{}
			}
			update.Tags = &tags
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.prompts.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.prompts.Update(cmd.Context(), catalog.ID(args[0]), update); err != nil {
				return err
			}
			printSuccess("Updated prompt %s", args[0])
			return nil
		})
	},
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete prompts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.prompts.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.prompts.Delete(cmd.Context(), toIDs(args)); err != nil {
				return err
			}
			printSuccess("Deleted %d prompt(s)", len(args))
			return nil
		})
	},
}

var promptsFavCmd = &cobra.Command{
	Use:   "fav <id>",
	Short: "Toggle a prompt as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return toggleFavorite(cmd, a, favorites.Prompts, catalog.ID(args[0]))
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{promptsAddCmd, promptsEditCmd} {
		c.Flags().String("title", "", "prompt title")
		c.Flags().String("prompt", "", "prompt text")
		c.Flags().String("desc", "", "short description")
		c.Flags().String("category", "", "code, mj, writing, roleplay, business or custom")
		c.Flags().String("complexity", "", "beginner, intermediate or advanced")
		c.Flags().StringArray("tag", nil, "tag as text:color (repeatable, at most 4)")
	}

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsViewCmd)
	promptsCmd.AddCommand(promptsAddCmd)
	promptsCmd.AddCommand(promptsEditCmd)
	promptsCmd.AddCommand(promptsDeleteCmd)
	promptsCmd.AddCommand(promptsFavCmd)
}

// parseTags reads text:color pairs. Color defaults to blue.
func parseTags(args []string) ([]catalog.Tag, error) {
	if len(args) == 0 {
		return nil, nil
	}

	tags := make([]catalog.Tag, 0, len(args))
	for _, arg := range args {
		text, color, found := strings.Cut(arg, ":")
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("invalid tag %q", arg)
		}
		if !found || color == "" {
			color = "blue"
		}
		tags = append(tags, catalog.Tag{Text: text, Color: strings.TrimSpace(color)})
	}
	return tags, nil
}

func tagList(tags []catalog.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.Text
	}
	return strings.Join(parts, ", ")
}

func toIDs(args []string) []catalog.ID {
	ids := make([]catalog.ID, len(args))
	for i, a := range args {
		ids[i] = catalog.ID(a)
	}
	return ids
}
