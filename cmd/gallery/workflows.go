package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/formatting"
)

var workflowsCmd = &cobra.Command{
	Use:     "workflows",
	Aliases: []string{"workflow", "wf"},
	Short:   "Browse, edit and download workflows",
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			fav, err := a.favorites(cmd.Context(), favorites.Workflows)
			if err != nil {
				return err
			}

			items := a.workflows.Items()
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}

			rows := make([][]string, 0, len(items))
			for _, w := range items {
				rows = append(rows, []string{
					w.ID.String(),
					mark(fav.Has(w.ID)),
					string(w.Category),
					strconv.FormatInt(w.Views, 10),
					strconv.FormatInt(w.Downloads, 10),
					truncate(w.Title, 40),
				})
			}
			if err := table(cmd.OutOrStdout(), []string{"ID", "FAV", "CATEGORY", "VIEWS", "DOWNLOADS", "TITLE"}, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d workflows (%s)\n", len(items), a.workflows.Source())
			return nil
		})
	},
}

// workflowsViewCmd shows a workflow and counts the view.
var workflowsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := catalog.ID(args[0])

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			if _, err := a.workflows.Find(id); err != nil {
				return err
			}
			if _, err := a.workflows.IncrementViews(cmd.Context(), id); err != nil {
				printWarning("view not counted: %v", err)
			}

			w, err := a.workflows.Find(id)
			if err != nil {
				return err
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), w)
			}

			out := cmd.OutOrStdout()
			printField(out, "Title", w.Title)
			printField(out, "Category", string(w.Category))
			printField(out, "Complexity", string(w.Complexity))
			printField(out, "Views", strconv.FormatInt(w.Views, 10))
			printField(out, "Downloads", strconv.FormatInt(w.Downloads, 10))
			if w.Author != nil {
				printField(out, "Author", w.Author.Name)
			}
			printField(out, "Download URL", w.DownloadURL)
			for _, img := range w.Images {
				printField(out, "Image", img)
			}
			fmt.Fprintf(out, "\n%s\n", w.Description)
			if w.Detail != "" {
				fmt.Fprintf(out, "\n%s\n", w.Detail)
			}
			return nil
		})
	},
}

var workflowsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a workflow",
	Example: `  gallery workflows add --title "Daily digest" --description "Mail a summary" --category n8n --file digest.json
  gallery workflows add --title "Upscale" --description "4x upscale" --category comfyui --image https://example.com/a.png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		title, _ := f.GetString("title")
		description, _ := f.GetString("description")
		detail, _ := f.GetString("detail")
		category, _ := f.GetString("category")
		complexity, _ := f.GetString("complexity")
		images, _ := f.GetStringArray("image")
		downloadURL, _ := f.GetString("download-url")
		file, _ := f.GetString("file")

		payload, err := readPayload(file)
		if err != nil {
			return err
		}

		create := workflows.CreateCommand{
			Title:        title,
			Description:  description,
			Detail:       detail,
			Category:     workflows.Category(category),
			Complexity:   catalog.Complexity(complexity),
			Images:       images,
			WorkflowJSON: payload,
			DownloadURL:  downloadURL,
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			w, err := a.workflows.Add(cmd.Context(), create, a.owner.ID.String())
			if err != nil {
				return err
			}
			printSuccess("Created workflow %s", w.ID)
			return nil
		})
	},
}

var workflowsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var update workflows.UpdateCommand
		f := cmd.Flags()

		str := func(name string) *string {
			if !f.Changed(name) {
				return nil
			}
			v, _ := f.GetString(name)
			return &v
		}

		update.Title = str("title")
		update.Description = str("description")
		update.Detail = str("detail")
		update.DownloadURL = str("download-url")
		if v := str("category"); v != nil {
			c := workflows.Category(*v)
			update.Category = &c
		}
		if v := str("complexity"); v != nil {
			c := catalog.Complexity(*v)
			update.Complexity = &c
		}
		if f.Changed("image") {
			images, _ := f.GetStringArray("image")
			update.Images = &images
		}
		if v := str("file"); v != nil {
			payload, err := readPayload(*v)
			if err != nil {
				return err
			}
			update.WorkflowJSON = &payload
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.workflows.Update(cmd.Context(), catalog.ID(args[0]), update); err != nil {
				return err
			}
			printSuccess("Updated workflow %s", args[0])
			return nil
		})
	},
}

var workflowsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete workflows and their counters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.workflows.Delete(cmd.Context(), toIDs(args)); err != nil {
				return err
			}
			printSuccess("Deleted %d workflow(s)", len(args))
			return nil
		})
	},
}

var workflowsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Save the workflow JSON and count the download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			data, name, err := a.workflows.Download(cmd.Context(), catalog.ID(args[0]))
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			printSuccess("Saved %s", filepath.Clean(output))
			return nil
		})
	},
}

var workflowsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import workflows from a JSON array",
	Long: `Import workflows from a file holding a JSON array of workflow objects
(title, description, category, detail, images, workflowJson, downloadUrl).
The array may sit inside a markdown code fence. Items without a category are
filed under "other".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		cmds, err := formatting.Parse[[]workflows.CreateCommand](string(data))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			n, err := a.workflows.Import(cmd.Context(), cmds, a.owner.ID.String())
			if err != nil {
				return err
			}
			printSuccess("Imported %d of %d workflow(s)", n, len(cmds))
			return nil
		})
	},
}

var workflowsStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Show view and download counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			w, err := a.workflows.Find(catalog.ID(args[0]))
			if err != nil {
				return err
			}

			stats := map[string]any{
				"views":     w.Views,
				"downloads": w.Downloads,
				"source":    a.workflows.Source(),
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			printField(out, "Views", strconv.FormatInt(w.Views, 10))
			printField(out, "Downloads", strconv.FormatInt(w.Downloads, 10))
			printField(out, "Source", string(a.workflows.Source()))
			return nil
		})
	},
}

var workflowsFavCmd = &cobra.Command{
	Use:   "fav <id>",
	Short: "Toggle a workflow as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return toggleFavorite(cmd, a, favorites.Workflows, catalog.ID(args[0]))
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{workflowsAddCmd, workflowsEditCmd} {
		c.Flags().String("title", "", "workflow title")
		c.Flags().String("description", "", "one-line description")
		c.Flags().String("detail", "", "long markdown description")
		c.Flags().String("category", "", "n8n, comfyui, dify or other")
		c.Flags().String("complexity", "", "beginner, intermediate or advanced")
		c.Flags().StringArray("image", nil, "preview image URL (repeatable, at most 4)")
		c.Flags().String("download-url", "", "external download link")
		c.Flags().String("file", "", "workflow JSON file to attach")
	}
	workflowsDownloadCmd.Flags().StringP("output", "o", "", `output file ("-" for stdout)`)

	workflowsCmd.AddCommand(workflowsListCmd)
	workflowsCmd.AddCommand(workflowsViewCmd)
	workflowsCmd.AddCommand(workflowsAddCmd)
	workflowsCmd.AddCommand(workflowsEditCmd)
	workflowsCmd.AddCommand(workflowsDeleteCmd)
	workflowsCmd.AddCommand(workflowsDownloadCmd)
	workflowsCmd.AddCommand(workflowsImportCmd)
	workflowsCmd.AddCommand(workflowsStatsCmd)
	workflowsCmd.AddCommand(workflowsFavCmd)
}

// readPayload loads a workflow JSON file, unwrapping a markdown code fence
// when present. An empty path yields no payload.
func readPayload(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := formatting.ExtractJSON(string(data))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func toggleFavorite(cmd *cobra.Command, a *app, kind favorites.Kind, id catalog.ID) error {
	fav, err := a.favorites(cmd.Context(), kind)
	if err != nil {
		return err
	}
	added, err := fav.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}
	if added {
		printSuccess("Added %s to favorites", id)
	} else {
		printSuccess("Removed %s from favorites", id)
	}
	return nil
}
