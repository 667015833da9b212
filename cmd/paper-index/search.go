// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <topic...>",
	Short: "Search arXiv for a topic and save the results",
	Long: `Search queries arXiv for papers on a topic and merges them into
<paper-dir>/<topic>/papers_info.json. Papers already saved for the topic are
kept; new ones are appended. The entry IDs of the returned papers are
printed one per line, in the order arXiv returned them. The path of the
saved file is logged at info level on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if cmd.Flags().Changed("max-results") && maxResults < 1 {
		return fmt.Errorf("--max-results must be at least 1")
	}

	topic := strings.Join(args, " ")
	summary, err := env.lib.SearchAndPersist(cmd.Context(), topic, maxResults)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, id := range summary.IDs {
		fmt.Fprintln(out, id)
	}
	return nil
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "number of papers to request (default from config, 5)")

	rootCmd.AddCommand(searchCmd)
}
