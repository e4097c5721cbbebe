package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpmattern/pubgen/internal/doiverify"
	"github.com/jpmattern/pubgen/internal/site"
)

var (
	verifyConfigFile string
	verifyBibtexFile string
	verifyTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyConfigFile, "config", DefaultConfigFile, "Configuration file to verify against")
	verifyCmd.Flags().StringVar(&verifyBibtexFile, "bibtex", "", "BibTeX file to read (default: the file named in the configuration)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "Overall timeout for DOI resolution")
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that every publication's DOI resolves",
	Long: `Verify resolves each configured publication, then checks its DOI
against doi.org. Requests are rate limited.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := configPath(verifyConfigFile, cmd.Flags().Changed("config"))
	cfg := mustLoadConfig(path, verifyBibtexFile)

	builder := site.New(cfg)
	client := doiverify.NewClient()

	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	broken := 0
	keys := builder.Keys()
	for _, key := range keys {
		rec, _, err := builder.Resolve(key)
		if err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}

		result, err := client.Resolve(ctx, rec.DOI)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if result.Resolvable {
			verbosef("%s: DOI %q resolves (%d)", key, rec.DOI, result.Status)
		} else {
			broken++
			fmt.Printf("  [WARN] %s: DOI %q does not resolve (%d)\n", key, rec.DOI, result.Status)
		}
	}

	if broken > 0 {
		exitWithError(ExitDataError, "%d of %d DOIs do not resolve", broken, len(keys))
	}
	fmt.Printf("%d DOIs verified\n", len(keys))
	return nil
}
