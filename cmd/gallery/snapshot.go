package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/gallery/pkg/formatting"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export the server catalog to blob storage",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			remote, err := a.requireRemote()
			if err != nil {
				return err
			}
			info, err := remote.CreateSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			printSuccess("Snapshot %s (%s, %d prompts, %d workflows)", info.Key, info.SizeText, info.Prompts, info.Workflows)
			return nil
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(cmd.Context(), func(a *app) error {
			remote, err := a.requireRemote()
			if err != nil {
				return err
			}
			blobs, err := remote.ListSnapshots(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), blobs)
			}

			rows := make([][]string, 0, len(blobs))
			for _, b := range blobs {
				rows = append(rows, []string{
					b.Key,
					formatting.FormatBytes(b.Size, 1),
					b.LastModified.Local().Format("2006-01-02 15:04"),
				})
			}
			return table(cmd.OutOrStdout(), []string{"KEY", "SIZE", "MODIFIED"}, rows)
		})
	},
}

var snapshotGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Download a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		key := args[0]

		return withApp(cmd.Context(), func(a *app) error {
			remote, err := a.requireRemote()
			if err != nil {
				return err
			}

			if output == "-" {
				return remote.DownloadSnapshot(cmd.Context(), key, cmd.OutOrStdout())
			}
			if output == "" {
				output = path.Base(key)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := remote.DownloadSnapshot(cmd.Context(), key, f); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Saved %s", output)
			return nil
		})
	},
}

func init() {
	snapshotListCmd.Flags().Int("limit", 0, "maximum snapshots to list (0 for the server default)")
	snapshotGetCmd.Flags().StringP("output", "o", "", `output file ("-" for stdout)`)

	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotGetCmd)
}
