// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-index/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run tools by name and describe their schemas",
	Long: `Tools exposes the dispatcher that agents use to call paper-index
operations by name. Known tools are search_papers and extract_info
(aliases searchAndPersist and lookup).`,
}

var toolsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Execute a tool with JSON arguments",
	Long: `Run executes the named tool with the arguments given in --args as a
JSON object and prints the formatted result.

  paper-index tools run search_papers --args '{"topic": "graph neural networks"}'
  paper-index tools run extract_info --args '{"paper_id": "http://arxiv.org/abs/2101.00001v1"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runTool,
}

func runTool(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("args")

	var toolArgs map[string]any
	if strings.TrimSpace(raw) != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&toolArgs); err != nil {
			return fmt.Errorf("parsing --args: %w", err)
		}
	}
	normalizeNumbers(toolArgs)

	d := tools.NewDispatcher(env.lib, env.cfg.MaxResults)
	out, err := d.Execute(cmd.Context(), args[0], toolArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// normalizeNumbers turns json.Number values into int64 when integral and
// float64 otherwise, so argument decoding sees plain Go numbers.
func normalizeNumbers(m map[string]any) {
	for k, v := range m {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			m[k] = i
		} else if f, err := n.Float64(); err == nil {
			m[k] = f
		}
	}
}

var toolsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the tool schemas as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tools.Schemas())
	},
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tool names and aliases",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range tools.Aliases() {
			canonical, _ := tools.Resolve(name)
			if string(canonical) == name {
				fmt.Fprintln(cmd.OutOrStdout(), name)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", name, canonical)
		}
	},
}

func init() {
	toolsRunCmd.Flags().String("args", "", "tool arguments as a JSON object")

	toolsCmd.AddCommand(toolsRunCmd)
	toolsCmd.AddCommand(toolsSchemaCmd)
	toolsCmd.AddCommand(toolsListCmd)
	rootCmd.AddCommand(toolsCmd)
}
