package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aknsr/linecap/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize linecap configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the LLM provider and LINE channel credentials and generates a .linecap.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
