// Package main provides the pubgen CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// quiet suppresses progress output
var quiet bool

// DefaultConfigFile is the configuration file used when --config is absent.
const DefaultConfigFile = "buildconfig.toml"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubgen",
	Short: "Build static-site publication bundles from a BibTeX file",
	Long: `pubgen creates the directory structure and markdown files for the
"publication" section of a Hugo Academic website from a BibTeX file.

Each configured publication gets a front-matter file, a citation snippet
for the site's cite button, and optionally a featured image. An aggregate
mode collects all publications into one grouped document instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		// A .env next to the config can carry PUBGEN_CONFIG and friends.
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not print additional information while building")
	rootCmd.Version = Version
}

// configPath resolves the configuration file path: the --config flag wins,
// then PUBGEN_CONFIG, then the default.
func configPath(flagValue string, changed bool) string {
	if changed {
		return flagValue
	}
	if p := os.Getenv("PUBGEN_CONFIG"); p != "" {
		return p
	}
	return flagValue
}
