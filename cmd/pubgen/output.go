package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jpmattern/pubgen/internal/bibtex"
	"github.com/jpmattern/pubgen/internal/config"
	"github.com/jpmattern/pubgen/internal/publication"
)

// verbosef prints a progress line unless --quiet was given.
func verbosef(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Printf(" - "+format+"\n", args...)
}

// exitWithError prints an error to stderr and exits with the given code.
func exitWithError(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}

// exitCodeFor maps the error taxonomy to exit codes.
func exitCodeFor(err error) int {
	var keyErr *config.KeyError
	if errors.As(err, &keyErr) {
		return ExitConfigError
	}
	var notFound *bibtex.NotFoundError
	var malformed *bibtex.MalformedError
	var missingField *publication.MissingFieldError
	if errors.As(err, &notFound) || errors.As(err, &malformed) || errors.As(err, &missingField) {
		return ExitDataError
	}
	return ExitError
}

// mustLoadConfig loads the configuration or exits. An optional bibliography
// path overrides the configured one.
func mustLoadConfig(path, bibtexOverride string) *config.Config {
	verbosef("reading configuration file %q", path)
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if bibtexOverride != "" {
		cfg.BibtexFile = bibtexOverride
	}
	return cfg
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
