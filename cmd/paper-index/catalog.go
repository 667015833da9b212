// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-index/internal/catalog"
	"github.com/pdiddy/paper-index/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain and query the SQLite catalog of saved papers",
	Long: `Catalog indexes every topic store into a SQLite database so saved
papers can be filtered by text, topic, and publication date. The topic
stores remain authoritative; run "catalog rebuild" after searching.`,
}

var catalogRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the catalog from the topic stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Open(env.cfg.Catalog.Path)
		if err != nil {
			return err
		}
		defer c.Close()

		summary, err := c.Rebuild(cmd.Context(), env.lib)
		if err != nil {
			return err
		}
		env.log.Info("catalog rebuilt",
			"path", c.Path(),
			"topics", summary.Topics,
			"papers", summary.Papers,
			"skipped", summary.Skipped,
			"no_id", summary.NoID,
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d paper(s) from %d topic(s)", summary.Papers, summary.Topics)
		if summary.Skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d malformed topic(s)", summary.Skipped)
		}
		if summary.NoID > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d record(s) without an entry_id", summary.NoID)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Filter catalog entries by text, topic, and date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	var f catalog.Filter
	if len(args) == 1 {
		f.Term = args[0]
	}
	f.Topic, _ = cmd.Flags().GetString("topic")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if since, _ := cmd.Flags().GetString("since"); since != "" {
		t, err := time.Parse(types.PublishedDateLayout, since)
		if err != nil {
			return fmt.Errorf("parsing --since %q: expected YYYY-MM-DD", since)
		}
		f.Since = t
	}

	c, err := catalog.Open(env.cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Search(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-10s  %-20s  %-50s  %s\n", "Published", "Topic", "Title", "Entry ID")
	fmt.Fprintln(out, strings.Repeat("-", 120))
	for _, e := range entries {
		fmt.Fprintf(out, "%-10s  %-20s  %-50s  %s\n",
			e.Record.PublishedDate, truncate(e.Topic, 20), truncate(e.Record.Title, 50), e.Record.EntryID)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	catalogSearchCmd.Flags().String("topic", "", "restrict to one topic")
	catalogSearchCmd.Flags().String("since", "", "earliest publication date (YYYY-MM-DD)")
	catalogSearchCmd.Flags().Int("limit", 20, "maximum number of results (0 for no limit)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogCmd.AddCommand(catalogRebuildCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}
