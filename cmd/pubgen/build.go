package main

import (
	"github.com/spf13/cobra"

	"github.com/jpmattern/pubgen/internal/site"
)

var (
	buildConfigFile string
	buildBibtexFile string
)

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildConfigFile, "config", DefaultConfigFile, "Configuration file specifying the publications to build")
	buildCmd.Flags().StringVar(&buildBibtexFile, "bibtex", "", "BibTeX file to read (default: the file named in the configuration)")
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build all configured publication bundles",
	Long: `Build reads the bibliography, resolves every configured publication
against its overrides, and writes one directory per publication (or a
single aggregate document, depending on the configured mode).`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := configPath(buildConfigFile, cmd.Flags().Changed("config"))
	cfg := mustLoadConfig(path, buildBibtexFile)

	builder := site.New(cfg, site.WithLogf(verbosef))
	recs, err := builder.Run()
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	verbosef("built %d publications into %q", len(recs), cfg.BuildDir)
	return nil
}
