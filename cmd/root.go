package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "magnus",
	Short: "Company knowledge bot with document retrieval and chat",
	Long: `MAGnus loads a company knowledge base from cloud or local storage,
ranks the documents relevant to each question, and answers over a chat
interface backed by a hosted language model. Answers are restricted to
the content of the loaded documents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".magnus.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
