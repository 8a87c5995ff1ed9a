package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"financeviz/internal/cli"
)

var showYear int

var showCmd = &cobra.Command{
	Use:   "show <element-id>",
	Short: "Print the view of one finance element as JSON",
	Example: `  financeviz show DF --year 2021
  financeviz show M52-DF-F5`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVar(&showYear, "year", 0, "exploration year (default: latest year with data)")
}

func runShow(cmd *cobra.Command, args []string) error {
	result, err := cli.OpenBackend(cmd.Context(), logger, appConfig)
	if err != nil {
		return err
	}
	defer result.Cleanup()

	explorer, err := cli.NewExplorer(logger, appConfig, result.Backend, nil)
	if err != nil {
		return err
	}
	view, err := explorer.ElementView(cmd.Context(), args[0], showYear)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
