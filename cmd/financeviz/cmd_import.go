package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"financeviz/internal/cli"
	"financeviz/internal/log"
	"financeviz/internal/services"
	"financeviz/internal/source/google"
	"financeviz/internal/source/memory"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Copy a budget data directory into the configured store",
	Long: `import reads <directory>/<year>/{aggregated,document,plan}.json and
<directory>/texts.json and stores them. Each stored input is announced on
AMQP when configured, so running servers drop their cached trees.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var syncTextsCmd = &cobra.Command{
	Use:   "sync-texts",
	Short: "Replace the stored element texts with the Google Sheets texts",
	Args:  cobra.NoArgs,
	RunE:  runSyncTexts,
}

func newImporter(cmd *cobra.Command) (*services.Importer, func() error, error) {
	result, err := cli.OpenBackend(cmd.Context(), logger, appConfig)
	if err != nil {
		return nil, nil, err
	}
	var publisher services.UpdatePublisher
	if result.Publisher != nil {
		publisher = result.Publisher
	}
	return services.NewImporter(result.Backend, publisher), result.Cleanup, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	from, err := memory.NewFromDir(args[0])
	if err != nil {
		return err
	}
	importer, cleanup, err := newImporter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := importer.Import(cmd.Context(), from)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err, log.FieldOperation, log.OpImport)
		return err
	}
	logger.Info("Import complete",
		log.FieldOperation, log.OpImport,
		"years", res.Years,
		"aggregated", res.Aggregated,
		"documents", res.Documents,
		"plans", res.Plans,
		"texts", res.Texts)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d years (%d aggregated, %d documents, %d plans, %d texts)\n",
		len(res.Years), res.Aggregated, res.Documents, res.Plans, res.Texts)
	return nil
}

func runSyncTexts(cmd *cobra.Command, args []string) error {
	if !appConfig.HasGoogleTexts() {
		return fmt.Errorf("sync-texts needs GOOGLE_SPREADSHEET_ID")
	}
	sheets, err := google.New(cmd.Context(), appConfig.GoogleSpreadsheetID, appConfig.GoogleTextsSheetName)
	if err != nil {
		return err
	}
	importer, cleanup, err := newImporter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := importer.SyncTexts(cmd.Context(), sheets)
	if err != nil {
		logger.Error("Texts sync failed", log.FieldError, err, log.FieldOperation, log.OpSync)
		return err
	}
	logger.Info("Texts synced", log.FieldOperation, log.OpSync, "texts", n)
	fmt.Fprintf(cmd.OutOrStdout(), "synced %d texts\n", n)
	return nil
}
