package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "linecap",
	Short: "LINE chatbot that turns chat messages into structured records",
	Long: `Linecap runs a LINE Messaging API bot that listens to group and
one-on-one chats, extracts tasks, schedules, contacts and memos from
natural-language messages using an LLM, and saves them as structured
records after a short confirmation dialogue.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".linecap.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
