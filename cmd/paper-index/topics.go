// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List and export saved topics",
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topic stores with their paper counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := env.lib.Topics()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(topics) == 0 {
			fmt.Fprintln(out, "No topics saved.")
			return nil
		}

		fmt.Fprintf(out, "%-40s  %6s  %s\n", "Topic", "Papers", "Status")
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range topics {
			status := "ok"
			if t.Malformed {
				status = "malformed"
			}
			fmt.Fprintf(out, "%-40s  %6d  %s\n", t.Key, len(t.Records), status)
		}
		return nil
	},
}

var topicsExportCmd = &cobra.Command{
	Use:   "export <topic...>",
	Short: "Write a topic's records to stdout as JSON or YAML",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return env.lib.Export(strings.Join(args, " "), format, cmd.OutOrStdout())
	},
}

func init() {
	topicsExportCmd.Flags().String("format", "json", "output format: json or yaml")

	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsExportCmd)
	rootCmd.AddCommand(topicsCmd)
}
