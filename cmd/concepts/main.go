// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the concepts CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/concepts/internal/logger"
	"github.com/pdiddy/concepts/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// log is the process logger, built from log.mode before any subcommand runs.
var log = logger.Nop()

// rootCmd is the base command for the concepts CLI.
var rootCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Validate, index, search, and serve a concept catalog",
	Long: `concepts manages a catalog of concept entries written as markdown files with
YAML frontmatter. Entries are grouped by category, searched through a SQLite
full-text index, and served with a search/filter state that stays in sync with
the page URL (?q= and ?cat=).

Subcommands: validate, index, search, browse, export, theme, serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(viper.GetString("log.mode"))
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./concepts.yaml or ~/.config/concepts/concepts.yaml)")
	flags.String("content-dir", "content/concepts", "directory containing concept markdown files")
	flags.String("schema", string(types.SchemaPermissive), "frontmatter schema: permissive or strict")
	flags.String("index-dir", "index", "directory holding concepts.db and exports")
	flags.String("log-mode", "dev", "logger mode: dev or prod")

	bindFlag("content.dir", "content-dir")
	bindFlag("content.schema", "schema")
	bindFlag("index.dir", "index-dir")
	bindFlag("log.mode", "log-mode")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("concepts")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "concepts"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("CONCEPTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
