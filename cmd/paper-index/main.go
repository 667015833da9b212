// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-index CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-index/internal/config"
	"github.com/pdiddy/paper-index/internal/library"
	"github.com/pdiddy/paper-index/internal/logging"
	"github.com/pdiddy/paper-index/internal/search"
	"github.com/pdiddy/paper-index/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// env holds state built once per invocation in PersistentPreRunE.
var env struct {
	cfg types.Config
	log *slog.Logger
	lib *library.Library
}

// rootCmd is the base command for the paper-index CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-index",
	Short: "Search arXiv and keep per-topic paper records on disk",
	Long: `paper-index searches arXiv for a research topic and saves the matching
papers to <paper-dir>/<topic>/papers_info.json. Saved records can be looked
up by entry ID, listed and exported per topic, indexed into a SQLite catalog,
or driven by name through the tool dispatcher.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: setup reads rootCmd's persistent flags.
	rootCmd.PersistentPreRunE = setup
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-index.yaml or ~/.config/paper-index/config.yaml)")
	pf.String("paper-dir", "", "directory holding topic stores (default \".\")")
	pf.String("log-level", "", "log level: debug, info, warn, error (default \"info\")")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	pf := rootCmd.PersistentFlags()
	cfgFile, _ := pf.GetString("config")
	v, used, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("paper_dir", pf.Lookup("paper-dir")); err != nil {
		return err
	}
	if err := v.BindPFlag("log_level", pf.Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, os.Stderr)
	if used != "" {
		log.Debug("using config file", "path", used)
	}

	env.cfg = cfg
	env.log = log
	env.lib = library.New(cfg.PaperDir,
		library.WithSearcher(search.NewArxiv(cfg.Arxiv, nil)),
		library.WithLogger(log),
		library.WithDefaultMaxResults(cfg.MaxResults),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
