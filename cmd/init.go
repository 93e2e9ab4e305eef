package cmd

import (
	"github.com/spf13/cobra"

	"github.com/magroup/magnus/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize magnus configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the connector, LLM provider, and server, and writes a .magnus.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
