package export

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"echoscribe/internal/app/output/export"
	"echoscribe/internal/app/repository/sqlite"
	"echoscribe/internal/config"
)

var outputFilePath string

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")

	Cmd.MarkFlagRequired("outputFilePath")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the run history to excel",
	Long: `Export the run history to excel

- One row per processed source with status, failed stage, and output location`,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := config.FromEnv()
		if err != nil {
			log.Fatalf("Failed to load settings: %v\n", err)
		}

		db := sqlite.NewSQLiteDB(settings.DatabasePath)
		defer db.Close()

		runs, err := db.GetAll()
		if err != nil {
			log.Fatal(err)
		}

		if err := export.RunsToExcel(runs, outputFilePath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
	},
}
