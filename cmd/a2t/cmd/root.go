package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"echoscribe/cmd/a2t/cmd/export"
	"echoscribe/cmd/a2t/cmd/process"
	"echoscribe/cmd/a2t/cmd/serve"
	"echoscribe/cmd/a2t/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a2t",
	Short: "An application for turning audio into speaker-attributed transcripts",
	Long: `An application for turning audio into speaker-attributed transcripts.
- Point a2t at a podcast feed, an episode page, a direct audio URL, or a local file
- The audio is transcribed and diarized, then each transcript span is attributed to a speaker
- Every run is recorded to sqlite so batches can skip already-processed sources.`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(process.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
