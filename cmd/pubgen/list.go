package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpmattern/pubgen/internal/index"
)

// ListTitleMaxLen truncates titles in list output.
const ListTitleMaxLen = 60

var listConfigFile string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listConfigFile, "config", DefaultConfigFile, "Configuration file naming the build directory")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List publications from the build index",
	Long:  `List shows the publications recorded in the build index of the last build.`,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	path := configPath(listConfigFile, cmd.Flags().Changed("config"))
	cfg := mustLoadConfig(path, "")

	dbPath := index.Path(cfg.BuildDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		exitWithError(ExitError, "no build index at %q (run \"pubgen build\" first)", dbPath)
	}

	db, err := index.Open(dbPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer db.Close()

	rows, err := db.List()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	for _, row := range rows {
		date := row.Date
		if len(date) > 10 {
			date = date[:10]
		}
		fmt.Printf("%s  %s\n", date, row.Key)
		fmt.Printf("            %s\n", truncateString(row.Title, ListTitleMaxLen))
		fmt.Printf("            %s  doi:%s\n\n", strings.Join(row.Authors, ", "), row.DOI)
	}
	fmt.Printf("%d publications\n", len(rows))
	return nil
}
