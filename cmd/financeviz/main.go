package main

import (
	"os"

	"github.com/spf13/cobra"

	"financeviz/internal/cli"
	"financeviz/internal/config"
	"financeviz/internal/log"
)

var (
	appConfig *config.Config
	logger    *log.Logger

	rootCmd = &cobra.Command{
		Use:   "financeviz",
		Short: "Explore a local authority's budget element by element",
		Long: `financeviz serves and prints the views of budget elements: their
amounts across years, their breakdown into children and their place in the
aggregated and M52 hierarchies.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			logger = cli.SetupLogger(os.Getenv("LOG_LEVEL"))
			cfg, err := cli.LoadAndValidateConfig(logger)
			if err != nil {
				return err
			}
			appConfig = cfg
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, showCmd, importCmd, syncTextsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
