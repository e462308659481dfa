package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aihorizon/eduscout/internal/config"
	"github.com/aihorizon/eduscout/internal/discovery"
	"github.com/aihorizon/eduscout/internal/logger"
	"github.com/aihorizon/eduscout/internal/storage/sqlite"
	"github.com/aihorizon/eduscout/internal/types"
)

var (
	discoverTypes  string
	discoverDryRun bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <topic>",
	Short: "Discover and rank resources for a topic",
	Long: `Run the discovery pipeline for a topic and print the ranked results.

Results are persisted to the local database unless --dry-run is given.

Examples:
  eduscout discover "incident response"
  eduscout discover "threat hunting" --types=video,course
  eduscout discover "zero trust" --dry-run`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		topic := args[0]
		ctx := context.Background()

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		log := logger.New(cfg.LogLevel, cfg.PrettyLog)
		defer func() { _ = log.Sync() }()

		opts := []discovery.Option{}
		if !discoverDryRun {
			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
				os.Exit(1)
			}
			defer func() { _ = store.Close() }()
			opts = append(opts, discovery.WithStore(store))
		}

		engine, err := discovery.NewEngine(cfg, log, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		categories, err := parseTypes(discoverTypes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := engine.Discover(ctx, topic, categories)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printResult(result)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVar(&discoverTypes, "types", "", "Comma-separated resource types (default: video,course,documentation,tool)")
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "Skip persisting results to the database")
}

// parseTypes converts a comma-separated flag value to resource types
func parseTypes(flag string) ([]types.ResourceType, error) {
	if flag == "" {
		return nil, nil
	}

	var out []types.ResourceType
	for _, raw := range strings.Split(flag, ",") {
		rt := types.ResourceType(strings.TrimSpace(raw))
		if !rt.IsValid() {
			return nil, fmt.Errorf("unknown resource type %q (valid: video, course, documentation, tool, book, article)", raw)
		}
		out = append(out, rt)
	}
	return out, nil
}

func printResult(result *discovery.Result) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	_, _ = bold.Printf("Discovery results for %q\n", result.Topic)
	fmt.Printf("  Run %s, %v elapsed\n\n", result.RunID, result.FinishedAt.Sub(result.StartedAt).Round(10*time.Millisecond))

	if len(result.Resources) == 0 {
		_, _ = yellow.Println("No resources found.")
		return
	}

	for i, r := range result.Resources {
		_, _ = green.Printf("%2d. [%.3f] ", i+1, r.QualityScore)
		_, _ = bold.Println(r.Resource.Title)
		_, _ = cyan.Printf("    %s\n", r.Resource.URL)
		fmt.Printf("    %s on %s\n", r.Resource.ResourceType, r.Resource.SourcePlatform)
		if r.Resource.Description != "" {
			fmt.Printf("    %s\n", r.Resource.Description)
		}
	}

	fmt.Println()
	for _, c := range result.Categories {
		fmt.Printf("  %-14s %d prompts, %d candidates, %d search failures\n",
			c.Category+":", c.Prompts, c.Candidates, c.SearchFailures)
	}
	if result.Duplicates > 0 {
		fmt.Printf("  %d duplicate URLs removed\n", result.Duplicates)
	}
}
