// eduscout discovers and quality-ranks educational resources for a topic.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "eduscout",
	Short: "Discover and rank educational resources for a topic",
	Long: `eduscout searches for educational content (videos, courses, documentation,
tools) on a topic, scores each result for educational quality, and returns a
deduplicated, score-ranked list.

Search uses the Perplexity API (EDUSCOUT_PERPLEXITY_API_KEY, required).
Scoring uses Anthropic or OpenAI when a key is configured, and falls back to
a deterministic heuristic otherwise.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (env vars take precedence)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
