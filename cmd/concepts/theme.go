package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/concepts/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Print the theme tokens as CSS or Tailwind config",
	Long: `Theme renders the design tokens, optionally overlaid with theme.file, as CSS
custom properties (--format css) or as a Tailwind darkMode/theme.extend
fragment (--format tailwind).`,
	RunE: runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	tokens, err := theme.Load(cfg.Theme.File)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "css", "":
		data = []byte(tokens.CSS())
	case "tailwind":
		data, err = tokens.TailwindJSON()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use css or tailwind", format)
	}

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintln(os.Stderr, "Wrote", out)
	return nil
}

func init() {
	themeCmd.Flags().String("format", "css", "output format: css or tailwind")
	themeCmd.Flags().String("out", "", "write to this file instead of stdout")
	themeCmd.Flags().String("file", "", "theme token override file (YAML)")

	if err := viper.BindPFlag("theme.file", themeCmd.Flags().Lookup("file")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(themeCmd)
}
