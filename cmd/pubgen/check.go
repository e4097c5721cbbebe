package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpmattern/pubgen/internal/bibtex"
	"github.com/jpmattern/pubgen/internal/publication"
	"github.com/jpmattern/pubgen/internal/site"
)

var (
	checkConfigFile string
	checkBibtexFile string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkConfigFile, "config", DefaultConfigFile, "Configuration file to check")
	checkCmd.Flags().StringVar(&checkBibtexFile, "bibtex", "", "BibTeX file to read (default: the file named in the configuration)")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every configured publication resolves",
	Long: `Check resolves every configured publication against the bibliography
without writing any output, and reports the publications that would fail
a build.`,
	RunE: runCheck,
}

// checkIssue is one problem found during check.
type checkIssue struct {
	Key    string
	Type   string
	Detail string
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := configPath(checkConfigFile, cmd.Flags().Changed("config"))
	cfg := mustLoadConfig(path, checkBibtexFile)

	builder := site.New(cfg)
	var issues []checkIssue
	keys := builder.Keys()
	for _, key := range keys {
		_, _, err := builder.Resolve(key)
		if err == nil {
			continue
		}
		issues = append(issues, checkIssue{
			Key:    key,
			Type:   issueType(err),
			Detail: err.Error(),
		})
	}

	if len(issues) == 0 {
		fmt.Printf("Configuration check: OK\n\n%d publications checked\n", len(keys))
		return nil
	}

	fmt.Printf("Configuration check: %d issues found\n\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  [%s] %s\n         %s\n\n", issue.Type, issue.Key, issue.Detail)
	}
	fmt.Printf("%d publications checked\n", len(keys))
	exitWithError(ExitDataError, "%d of %d publications would fail a build", len(issues), len(keys))
	return nil
}

func issueType(err error) string {
	var notFound *bibtex.NotFoundError
	if errors.As(err, &notFound) {
		return "missing_entry"
	}
	var malformed *bibtex.MalformedError
	if errors.As(err, &malformed) {
		return "malformed_entry"
	}
	var missingField *publication.MissingFieldError
	if errors.As(err, &missingField) {
		return "missing_field"
	}
	return "error"
}
