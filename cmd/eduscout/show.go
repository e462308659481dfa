package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aihorizon/eduscout/internal/config"
	"github.com/aihorizon/eduscout/internal/storage/sqlite"
)

var showCmd = &cobra.Command{
	Use:   "show [topic]",
	Short: "Show stored results for a topic, or list stored topics",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()

		if len(args) == 0 {
			topics, err := store.Topics(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if len(topics) == 0 {
				fmt.Println("No stored topics.")
				return
			}
			for _, t := range topics {
				fmt.Println(t)
			}
			return
		}

		topic := args[0]
		results, err := store.GetResults(ctx, topic)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(results) == 0 {
			fmt.Printf("No stored results for %q.\n", topic)
			return
		}

		bold := color.New(color.Bold)
		green := color.New(color.FgGreen)
		_, _ = bold.Printf("Stored results for %q (discovered %s)\n\n",
			topic, results[0].DiscoveredAt.Format("2006-01-02 15:04 MST"))
		for i, r := range results {
			_, _ = green.Printf("%2d. [%.3f] ", i+1, r.QualityScore)
			fmt.Printf("%s\n    %s\n", r.Resource.Title, r.Resource.URL)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
