package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"

	"github.com/jpmattern/pubgen/internal/site"
)

var (
	previewConfigFile string
	previewBibtexFile string
	previewOutput     string
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewConfigFile, "config", DefaultConfigFile, "Configuration file naming the publication")
	previewCmd.Flags().StringVar(&previewBibtexFile, "bibtex", "", "BibTeX file to read (default: the file named in the configuration)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Write the HTML to a file instead of stdout")
}

var previewCmd = &cobra.Command{
	Use:   "preview KEY",
	Short: "Render one resolved publication as HTML",
	Long: `Preview resolves a single publication and renders its title, venue,
and abstract markdown to HTML for quick inspection.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := configPath(previewConfigFile, cmd.Flags().Changed("config"))
	cfg := mustLoadConfig(path, previewBibtexFile)

	key := args[0]
	if _, ok := cfg.Publications[key]; !ok {
		exitWithError(ExitError, "no publication %q in configuration", key)
	}

	rec, _, err := site.New(cfg).Resolve(key)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", rec.Title)
	fmt.Fprintf(&md, "*%s*\n\n", strings.Join(rec.Authors, ", "))
	fmt.Fprintf(&md, "%s (%s)\n\n", rec.Publication, rec.Date)
	fmt.Fprintf(&md, "%s\n", rec.Abstract)

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &html); err != nil {
		exitWithError(ExitError, "rendering markdown: %v", err)
	}

	if previewOutput != "" {
		if err := os.WriteFile(previewOutput, html.Bytes(), 0644); err != nil {
			exitWithError(ExitError, "writing %q: %v", previewOutput, err)
		}
		verbosef("wrote preview to %q", previewOutput)
		return nil
	}
	fmt.Print(html.String())
	return nil
}
