package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/neutrobox/automaker/pkg/contextlog"
	"github.com/neutrobox/automaker/pkg/feature"
)

func newListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the project's features and their statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(flags)
			if err != nil {
				return err
			}

			store := feature.NewStore(cfg.ProjectDir)
			ctxLog := contextlog.New(cfg.ProjectDir)
			features := store.Load()
			if len(features) == 0 {
				fmt.Println("No features found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tDESCRIPTION")
			for _, f := range features {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Status, f.Category, truncate(f.Description, 60))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			next := feature.SelectNext(features)
			if next != nil {
				fmt.Printf("\nNext up: %s\n", next.ID)
				if transcript, err := ctxLog.Read(next.ID); err == nil && transcript != "" {
					fmt.Println("(has prior session progress; run will resume it)")
				}
			}
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
