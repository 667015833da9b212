// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-index/internal/tools"
)

var extractCmd = &cobra.Command{
	Use:   "extract <entry_id>",
	Short: "Print the saved record for an entry ID",
	Long: `Extract scans every topic store under the paper directory and prints
the first record whose entry_id matches, as indented JSON with its keys as
stored. If no topic has
the paper, a not-found message is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := env.lib.Lookup(args[0])
		if err != nil {
			return err
		}
		if !res.Found() {
			fmt.Fprintln(cmd.OutOrStdout(), res.NotFoundMessage())
			return nil
		}
		env.log.Debug("paper found", "entry_id", res.EntryID, "topic", res.Topic)
		fmt.Fprintln(cmd.OutOrStdout(), tools.Format(res.Raw))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
